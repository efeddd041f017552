package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNudge_FiresInsideFirstWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	store := newMockMemberStore(
		member(now.Add(-24*time.Hour-5*time.Minute)), // inside window
		member(now.Add(-23*time.Hour)),               // not yet inactive long enough
		member(now.Add(-30*time.Hour)),               // between repeats, quiet
	)
	push := &mockPush{}

	svc := NewNudgeService(store, push, testConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Candidates, "prefilter keeps only members past the threshold")
	assert.Equal(t, 1, summary.Sent)

	messages := push.all()
	require.Len(t, messages, 1)
	assert.Equal(t, "ExponentPushToken[member]", messages[0].To)
	assert.Contains(t, messages[0].Body, "24 hours")
}

func TestNudge_RepeatsOncePerDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// 72h inactive puts the member exactly at the third daily repeat.
	store := newMockMemberStore(member(now.Add(-72*time.Hour - time.Minute)))
	push := &mockPush{}

	svc := NewNudgeService(store, push, testConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
}

func TestNudge_SkipsMembersWithoutToken(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	quiet := member(now.Add(-24*time.Hour - 5*time.Minute))
	quiet.PushToken = nil
	store := newMockMemberStore(quiet)
	push := &mockPush{}

	svc := NewNudgeService(store, push, testConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Candidates)
	assert.Empty(t, push.batches)
}

func TestNudge_LedgerFailureAborts(t *testing.T) {
	store := newMockMemberStore()
	store.listErr = errors.New("store unavailable")

	svc := NewNudgeService(store, &mockPush{}, testConfig(), noopMetrics(), testLogger())

	_, err := svc.Run(context.Background())
	assert.Error(t, err)
}

func TestNudge_PushFailureDoesNotAbort(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	store := newMockMemberStore(member(now.Add(-24*time.Hour - 5*time.Minute)))
	push := &mockPush{err: errors.New("gateway down")}

	svc := NewNudgeService(store, push, testConfig(), noopMetrics(), testLogger())
	svc.now = func() time.Time { return now }

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 0, summary.Sent)
}
