package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careline/engine/common/config"
	"github.com/careline/engine/common/models"
)

func retentionConfig() config.RetentionConfig {
	return config.RetentionConfig{StandardMonths: 3, PremiumMonths: 12}
}

func checkInLog(age time.Duration, now time.Time, proofURL string) *models.CheckInLog {
	log := &models.CheckInLog{
		ID:          uuid.New(),
		MemberID:    uuid.New(),
		CreatedAt:   now.Add(-age),
		CheckInType: "tap",
	}
	if proofURL != "" {
		log.ProofURL = &proofURL
	}
	return log
}

func TestRetention_SweepsPerClassCutoffs(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	// 100 days: expired for standard, retained for premium.
	oldStandard := checkInLog(100*24*time.Hour, now, "")
	freshStandard := checkInLog(30*24*time.Hour, now, "")
	oldPremium := checkInLog(100*24*time.Hour, now, "")
	ancientPremium := checkInLog(400*24*time.Hour, now, "")

	store := &mockCheckInStore{
		standard: []*models.CheckInLog{oldStandard, freshStandard},
		premium:  []*models.CheckInLog{oldPremium, ancientPremium},
	}
	media := &mockMedia{}

	svc := NewRetentionService(store, media, retentionConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RowsDeleted)
	assert.Equal(t, 1, summary.PerClass["standard"])
	assert.Equal(t, 1, summary.PerClass["premium"])

	require.Len(t, store.deleted, 2)
	assert.Equal(t, []uuid.UUID{oldStandard.ID}, store.deleted[0])
	assert.Equal(t, []uuid.UUID{ancientPremium.ID}, store.deleted[1])
}

func TestRetention_BoundaryRowIsRetained(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	exact := &models.CheckInLog{
		ID:        uuid.New(),
		MemberID:  uuid.New(),
		CreatedAt: now.AddDate(0, -3, 0), // exactly at the cutoff
	}

	store := &mockCheckInStore{standard: []*models.CheckInLog{exact}}

	svc := NewRetentionService(store, &mockMedia{}, retentionConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RowsDeleted, "strict inequality at the boundary")
}

func TestRetention_DeletesMediaBeforeRows(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	withProof := checkInLog(100*24*time.Hour, now, testCDNPrefix+"proofs/a.jpg")
	foreignProof := checkInLog(100*24*time.Hour, now, "https://elsewhere.example.com/b.jpg")
	noProof := checkInLog(100*24*time.Hour, now, "")

	store := &mockCheckInStore{standard: []*models.CheckInLog{withProof, foreignProof, noProof}}
	media := &mockMedia{}

	svc := NewRetentionService(store, media, retentionConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RowsDeleted)
	assert.Equal(t, 1, summary.MediaDeleted, "only URLs with the known prefix map to storage paths")
	require.Len(t, media.batches, 1)
	assert.Equal(t, []string{"proofs/a.jpg"}, media.batches[0])
}

func TestRetention_StorageFailureDoesNotBlockRowDeletion(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	withProof := checkInLog(100*24*time.Hour, now, testCDNPrefix+"proofs/a.jpg")
	store := &mockCheckInStore{standard: []*models.CheckInLog{withProof}}
	media := &mockMedia{err: errors.New("storage unavailable")}

	svc := NewRetentionService(store, media, retentionConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.RowsDeleted)
	assert.Equal(t, 0, summary.MediaDeleted)
	require.Len(t, store.deleted, 1)
}

func TestRetention_EmptySweepIsNoOp(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	store := &mockCheckInStore{}
	media := &mockMedia{}

	svc := NewRetentionService(store, media, retentionConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RowsDeleted)
	assert.Empty(t, store.deleted)
	assert.Empty(t, media.batches)
}

func TestRetention_LedgerFailureAborts(t *testing.T) {
	store := &mockCheckInStore{listErr: errors.New("store unavailable")}

	svc := NewRetentionService(store, &mockMedia{}, retentionConfig(), noopMetrics(), testLogger())

	_, err := svc.Run(context.Background())
	assert.Error(t, err)
}
