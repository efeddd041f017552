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

// EmergencyService notifies every emergency contact by SMS once inactivity
// crosses the member's full alert cycle. Idempotency comes from the
// last_sms_sent_at ledger marker, not from a timing window: the tier fires
// at most once per inactivity episode no matter how far past the threshold
// the member drifts.
type EmergencyService struct {
	members MemberStore
	sms     SMSSender
	cfg     config.EscalationConfig
	metrics metrics.Provider
	log     *logger.Logger
	now     func() time.Time
}

// NewEmergencyService creates a new emergency SMS escalation service
func NewEmergencyService(members MemberStore, sms SMSSender, cfg config.EscalationConfig, m metrics.Provider, log *logger.Logger) *EmergencyService {
	return &EmergencyService{
		members: members,
		sms:     sms,
		cfg:     cfg,
		metrics: m,
		log:     log.WithJob(TierEmergency),
		now:     time.Now,
	}
}

// Run executes one emergency tier invocation.
//
// Candidates are processed sequentially: the idempotency marker is persisted
// immediately after a member's fan-out succeeds, so a crash mid-batch
// re-sends only to members not yet flagged. The marker is written only when
// at least one contact send succeeded; a fully failed fan-out stays eligible
// for the next tick.
func (s *EmergencyService) Run(ctx context.Context) (*TierSummary, error) {
	now := s.now()
	summary := &TierSummary{Job: TierEmergency}

	floor := now.Add(-s.cfg.EmergencyFloor)
	candidates, err := s.members.ListInactive(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("list emergency candidates: %w", err)
	}
	summary.Candidates = len(candidates)

	for _, member := range candidates {
		cycle := member.AlertCycle(s.cfg.DefaultAlertCycle)
		if !window.InWindow(now, member.LastSeenAt, cycle, 0) {
			continue
		}
		if !member.SMSPending() {
			continue
		}

		contacts := member.EmergencyContacts()
		if len(contacts) == 0 {
			s.log.Warn("member past alert cycle with no emergency contacts",
				"member_id", member.ID.String())
			continue
		}
		summary.Matched++

		hours := int(window.Elapsed(now, member.LastSeenAt).Hours())
		text := fmt.Sprintf(
			"%s has not checked in for %d hours. This is an automated safety escalation. Please try to reach them.",
			member.DisplayName, hours)

		sentAny := false
		for _, contact := range contacts {
			err := s.sms.Send(ctx, clients.SMSMessage{To: contact, Text: text})
			if err != nil {
				// One failed contact must not block the rest of the
				// fan-out or the next member
				s.log.Error("emergency sms failed",
					"member_id", member.ID.String(),
					"error", err)
				s.metrics.IncNotificationFailures(TierEmergency, "sms")
				continue
			}
			sentAny = true
			summary.Sent++
			s.metrics.IncNotificationsSent(TierEmergency, "sms", 1)
		}

		if !sentAny {
			continue
		}

		if err := s.members.MarkSMSSent(ctx, member.ID, now); err != nil {
			// Ledger write failure aborts the invocation; members already
			// flagged are safe, the rest retry next tick (at-least-once).
			return nil, fmt.Errorf("mark sms sent for %s: %w", member.ID, err)
		}
	}

	s.log.Info("emergency tier complete",
		"candidates", summary.Candidates,
		"matched", summary.Matched,
		"sent", summary.Sent)

	return summary, nil
}
