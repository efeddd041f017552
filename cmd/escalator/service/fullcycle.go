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

// FullCycleService repeats the member-facing reminder with urgent framing as
// inactivity crosses the full 24h mark. The tolerance is sized just above
// the tight invocation period so each crossing is caught exactly once.
type FullCycleService struct {
	members MemberStore
	push    PushSender
	cfg     config.EscalationConfig
	metrics metrics.Provider
	log     *logger.Logger
	now     func() time.Time
}

// NewFullCycleService creates a new full-cycle push escalation service
func NewFullCycleService(members MemberStore, push PushSender, cfg config.EscalationConfig, m metrics.Provider, log *logger.Logger) *FullCycleService {
	return &FullCycleService{
		members: members,
		push:    push,
		cfg:     cfg,
		metrics: m,
		log:     log.WithJob(TierFullCycle),
		now:     time.Now,
	}
}

// Run executes one full-cycle tier invocation
func (s *FullCycleService) Run(ctx context.Context) (*TierSummary, error) {
	now := s.now()
	summary := &TierSummary{Job: TierFullCycle}

	floor := now.Add(-s.cfg.FullCycleThreshold)
	candidates, err := s.members.ListInactiveWithToken(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("list full-cycle candidates: %w", err)
	}
	summary.Candidates = len(candidates)

	hours := int(s.cfg.FullCycleThreshold.Hours())

	var batch []clients.PushMessage
	for _, member := range candidates {
		if !window.InWindow(now, member.LastSeenAt, s.cfg.FullCycleThreshold, s.cfg.FullCycleTolerance) {
			continue
		}

		batch = append(batch, clients.PushMessage{
			To:    *member.PushToken,
			Title: "Please check in now",
			Body:  fmt.Sprintf("You have been inactive for %d hours. If you don't check in soon, your emergency contacts will be notified by SMS.", hours),
			Data:  map[string]any{"type": "full_cycle_escalation"},
		})
	}
	summary.Matched = len(batch)

	if err := s.push.SendBatch(ctx, batch); err != nil {
		s.log.Error("full-cycle push batch failed", "error", err, "batch_size", len(batch))
		s.metrics.IncNotificationFailures(TierFullCycle, "push")
		return summary, nil
	}

	summary.Sent = len(batch)
	s.metrics.IncNotificationsSent(TierFullCycle, "push", len(batch))

	s.log.Info("full-cycle tier complete",
		"candidates", summary.Candidates,
		"sent", summary.Sent)

	return summary, nil
}
