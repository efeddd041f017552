package service

import (
	"context"
	"fmt"
	"time"

	"github.com/careline/engine/common/cache"
	"github.com/careline/engine/common/clients"
	"github.com/careline/engine/common/config"
	"github.com/careline/engine/common/logger"
	"github.com/careline/engine/common/metrics"
	"github.com/careline/engine/common/models"
	"github.com/careline/engine/common/window"
)

// managerTokenTTL bounds how stale a cached manager token can be. Tokens
// change rarely (app reinstall, permission toggle); a short TTL keeps the
// repeated per-candidate lookups cheap without risking long-stale delivery.
const managerTokenTTL = 5 * time.Minute

// HalfCycleService alerts a member's manager once inactivity crosses half of
// the member's configured alert cycle. The window is bounded so each episode
// produces a single alert as the half-cycle mark is crossed.
type HalfCycleService struct {
	members MemberStore
	push    PushSender
	cache   cache.Cache
	cfg     config.EscalationConfig
	metrics metrics.Provider
	log     *logger.Logger
	now     func() time.Time
}

// NewHalfCycleService creates a new half-cycle manager alert service
func NewHalfCycleService(members MemberStore, push PushSender, tokenCache cache.Cache, cfg config.EscalationConfig, m metrics.Provider, log *logger.Logger) *HalfCycleService {
	return &HalfCycleService{
		members: members,
		push:    push,
		cache:   tokenCache,
		cfg:     cfg,
		metrics: m,
		log:     log.WithJob(TierHalfCycle),
		now:     time.Now,
	}
}

// Run executes one half-cycle tier invocation
func (s *HalfCycleService) Run(ctx context.Context) (*TierSummary, error) {
	now := s.now()
	summary := &TierSummary{Job: TierHalfCycle}

	// Store-level prefilter at the minimum possible half cycle; the exact
	// per-member threshold is applied below since alertCycle varies.
	floor := now.Add(-s.cfg.HalfCycleFloor)
	candidates, err := s.members.ListInactiveManaged(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("list half-cycle candidates: %w", err)
	}
	summary.Candidates = len(candidates)

	var batch []clients.PushMessage
	for _, member := range candidates {
		threshold := member.HalfCycle(s.cfg.DefaultAlertCycle)
		if !window.InWindow(now, member.LastSeenAt, threshold, s.cfg.HalfCycleTolerance) {
			continue
		}
		summary.Matched++

		token, err := s.managerToken(ctx, member)
		if err != nil {
			return nil, err
		}
		if token == "" {
			// Manager never granted notification permission; skip silently
			continue
		}

		hours := int(window.Elapsed(now, member.LastSeenAt).Hours())
		batch = append(batch, clients.PushMessage{
			To:    token,
			Title: fmt.Sprintf("%s has been quiet", member.DisplayName),
			Body:  fmt.Sprintf("%s has not checked in for %d hours. Consider reaching out.", member.DisplayName, hours),
			Data: map[string]any{
				"type":      "half_cycle_alert",
				"member_id": member.ID.String(),
			},
		})
	}

	if err := s.push.SendBatch(ctx, batch); err != nil {
		s.log.Error("half-cycle push batch failed", "error", err, "batch_size", len(batch))
		s.metrics.IncNotificationFailures(TierHalfCycle, "push")
		return summary, nil
	}

	summary.Sent = len(batch)
	s.metrics.IncNotificationsSent(TierHalfCycle, "push", len(batch))

	s.log.Info("half-cycle tier complete",
		"candidates", summary.Candidates,
		"matched", summary.Matched,
		"sent", summary.Sent)

	return summary, nil
}

// managerToken resolves the manager's push token through the short-TTL cache.
// An empty cached value is authoritative: "manager has no token".
func (s *HalfCycleService) managerToken(ctx context.Context, member *models.Member) (string, error) {
	key := "manager_token:" + member.ManagerID.String()

	if s.cache != nil {
		if val, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return string(val), nil
		}
	}

	token, err := s.members.ManagerPushToken(ctx, *member.ManagerID)
	if err != nil {
		return "", fmt.Errorf("resolve manager token: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, []byte(token), managerTokenTTL)
	}

	return token, nil
}
