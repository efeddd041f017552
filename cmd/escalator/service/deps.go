package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careline/engine/common/clients"
	"github.com/careline/engine/common/models"
)

// MemberStore is the activity-ledger surface the tier jobs consume
type MemberStore interface {
	ListInactive(ctx context.Context, floor time.Time) ([]*models.Member, error)
	ListInactiveWithToken(ctx context.Context, floor time.Time) ([]*models.Member, error)
	ListInactiveManaged(ctx context.Context, floor time.Time) ([]*models.Member, error)
	ManagerPushToken(ctx context.Context, managerID uuid.UUID) (string, error)
	MarkSMSSent(ctx context.Context, memberID uuid.UUID, at time.Time) error
}

// CheckInStore is the check-in history surface the retention sweeper consumes
type CheckInStore interface {
	ListExpired(ctx context.Context, cutoff time.Time, premium bool) ([]*models.CheckInLog, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// PushSender delivers a batch of push notifications
type PushSender interface {
	SendBatch(ctx context.Context, messages []clients.PushMessage) error
}

// SMSSender delivers a single SMS per call
type SMSSender interface {
	Send(ctx context.Context, msg clients.SMSMessage) error
}

// MediaStore deletes proof media from object storage
type MediaStore interface {
	PathFromPublicURL(url string) string
	DeleteBatch(ctx context.Context, paths []string) error
}

// TierSummary is the JSON result of one escalation tier invocation
type TierSummary struct {
	Job        string `json:"job"`
	Candidates int    `json:"candidates"`
	Matched    int    `json:"matched"`
	Sent       int    `json:"sent"`
}

// SweepSummary is the JSON result of one retention sweep
type SweepSummary struct {
	Job          string              `json:"job"`
	RowsDeleted  int                 `json:"rows_deleted"`
	MediaDeleted int                 `json:"media_deleted"`
	PerClass     map[string]int      `json:"per_class"`
}

// Tier label values used in logs and metrics
const (
	TierNudge     = "nudge"
	TierHalfCycle = "half_cycle"
	TierFullCycle = "full_cycle"
	TierEmergency = "emergency"
	JobRetention  = "retention"
)
