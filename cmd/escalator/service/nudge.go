package service

import (
	"context"
	"fmt"
	"time"

	"github.com/careline/engine/common/clients"
	"github.com/careline/engine/common/config"
	"github.com/careline/engine/common/logger"
	"github.com/careline/engine/common/metrics"
	"github.com/careline/engine/common/window"
)

// NudgeService reminds members themselves once their inactivity crosses the
// nudge threshold. The reminder repeats on a fixed period while the member
// stays inactive, at most once per period.
type NudgeService struct {
	members MemberStore
	push    PushSender
	cfg     config.EscalationConfig
	metrics metrics.Provider
	log     *logger.Logger
	now     func() time.Time
}

// NewNudgeService creates a new nudge tier service
func NewNudgeService(members MemberStore, push PushSender, cfg config.EscalationConfig, m metrics.Provider, log *logger.Logger) *NudgeService {
	return &NudgeService{
		members: members,
		push:    push,
		cfg:     cfg,
		metrics: m,
		log:     log.WithJob(TierNudge),
		now:     time.Now,
	}
}

// Run executes one nudge tier invocation
func (s *NudgeService) Run(ctx context.Context) (*TierSummary, error) {
	now := s.now()
	summary := &TierSummary{Job: TierNudge}

	floor := now.Add(-s.cfg.NudgeThreshold)
	candidates, err := s.members.ListInactiveWithToken(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("list nudge candidates: %w", err)
	}
	summary.Candidates = len(candidates)

	hours := int(s.cfg.NudgeThreshold.Hours())

	var batch []clients.PushMessage
	for _, member := range candidates {
		if !window.InRecurringWindow(now, member.LastSeenAt, s.cfg.NudgeThreshold, s.cfg.NudgeRepeat, s.cfg.NudgeTolerance) {
			continue
		}

		batch = append(batch, clients.PushMessage{
			To:    *member.PushToken,
			Title: "Time to check in",
			Body:  fmt.Sprintf("It's been over %d hours since your last check-in. Tap to let everyone know you're okay.", hours),
			Data:  map[string]any{"type": "nudge"},
		})
	}
	summary.Matched = len(batch)

	if err := s.push.SendBatch(ctx, batch); err != nil {
		// Best-effort delivery: log and count, do not abort the invocation
		s.log.Error("nudge push batch failed", "error", err, "batch_size", len(batch))
		s.metrics.IncNotificationFailures(TierNudge, "push")
		return summary, nil
	}

	summary.Sent = len(batch)
	s.metrics.IncNotificationsSent(TierNudge, "push", len(batch))

	s.log.Info("nudge tier complete",
		"candidates", summary.Candidates,
		"sent", summary.Sent)

	return summary, nil
}
