package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careline/engine/common/clients"
	"github.com/careline/engine/common/config"
	"github.com/careline/engine/common/logger"
	"github.com/careline/engine/common/metrics"
	"github.com/careline/engine/common/models"
)

func testConfig() config.EscalationConfig {
	return config.EscalationConfig{
		NudgeThreshold:     24 * time.Hour,
		NudgeRepeat:        24 * time.Hour,
		NudgeTolerance:     15 * time.Minute,
		HalfCycleTolerance: 15 * time.Minute,
		HalfCycleFloor:     12 * time.Hour,
		FullCycleThreshold: 24 * time.Hour,
		FullCycleTolerance: 6 * time.Minute,
		DefaultAlertCycle:  48 * time.Hour,
		EmergencyFloor:     24 * time.Hour,
	}
}

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

func noopMetrics() metrics.Provider {
	return metrics.NewProvider(false)
}

// mockMemberStore is an in-memory activity ledger
type mockMemberStore struct {
	members      []*models.Member
	tokens       map[uuid.UUID]string
	marked       map[uuid.UUID]time.Time
	listErr      error
	markErr      error
	tokenLookups int
}

func newMockMemberStore(members ...*models.Member) *mockMemberStore {
	return &mockMemberStore{
		members: members,
		tokens:  make(map[uuid.UUID]string),
		marked:  make(map[uuid.UUID]time.Time),
	}
}

func (m *mockMemberStore) ListInactive(ctx context.Context, floor time.Time) ([]*models.Member, error) {
	return m.filter(floor, func(*models.Member) bool { return true })
}

func (m *mockMemberStore) ListInactiveWithToken(ctx context.Context, floor time.Time) ([]*models.Member, error) {
	return m.filter(floor, func(member *models.Member) bool { return member.PushToken != nil })
}

func (m *mockMemberStore) ListInactiveManaged(ctx context.Context, floor time.Time) ([]*models.Member, error) {
	return m.filter(floor, func(member *models.Member) bool { return member.ManagerID != nil })
}

func (m *mockMemberStore) filter(floor time.Time, keep func(*models.Member) bool) ([]*models.Member, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.Member
	for _, member := range m.members {
		if member.LastSeenAt.Before(floor) && keep(member) {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *mockMemberStore) ManagerPushToken(ctx context.Context, managerID uuid.UUID) (string, error) {
	m.tokenLookups++
	return m.tokens[managerID], nil
}

func (m *mockMemberStore) MarkSMSSent(ctx context.Context, memberID uuid.UUID, at time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.marked[memberID] = at
	return nil
}

// mockPush records push batches
type mockPush struct {
	batches [][]clients.PushMessage
	err     error
}

func (m *mockPush) SendBatch(ctx context.Context, messages []clients.PushMessage) error {
	if len(messages) == 0 {
		return nil
	}
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, messages)
	return nil
}

func (m *mockPush) all() []clients.PushMessage {
	var out []clients.PushMessage
	for _, batch := range m.batches {
		out = append(out, batch...)
	}
	return out
}

// mockSMS records individual sends and can fail selected destinations
type mockSMS struct {
	sent    []clients.SMSMessage
	failFor map[string]error
}

func newMockSMS() *mockSMS {
	return &mockSMS{failFor: make(map[string]error)}
}

func (m *mockSMS) Send(ctx context.Context, msg clients.SMSMessage) error {
	if err, ok := m.failFor[msg.To]; ok {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// mockCheckInStore is an in-memory check-in history keyed by owner class
type mockCheckInStore struct {
	standard []*models.CheckInLog
	premium  []*models.CheckInLog
	deleted  [][]uuid.UUID
	listErr  error
}

func (m *mockCheckInStore) ListExpired(ctx context.Context, cutoff time.Time, premium bool) ([]*models.CheckInLog, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	source := m.standard
	if premium {
		source = m.premium
	}
	var out []*models.CheckInLog
	for _, log := range source {
		if log.CreatedAt.Before(cutoff) {
			out = append(out, log)
		}
	}
	return out, nil
}

func (m *mockCheckInStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) > 0 {
		m.deleted = append(m.deleted, ids)
	}
	return nil
}

// mockMedia strips a fixed CDN prefix and records delete batches
type mockMedia struct {
	batches [][]string
	err     error
}

const testCDNPrefix = "https://cdn.test/media/"

func (m *mockMedia) PathFromPublicURL(url string) string {
	if !strings.HasPrefix(url, testCDNPrefix) {
		return ""
	}
	return strings.TrimPrefix(url, testCDNPrefix)
}

func (m *mockMedia) DeleteBatch(ctx context.Context, paths []string) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, paths)
	return nil
}

// Test data helpers

func member(lastSeen time.Time) *models.Member {
	token := "ExponentPushToken[member]"
	return &models.Member{
		ID:          uuid.New(),
		Role:        models.RoleMember,
		DisplayName: "Alex",
		LastSeenAt:  lastSeen,
		PushToken:   &token,
	}
}

func managedMember(lastSeen time.Time, managerID uuid.UUID) *models.Member {
	m := member(lastSeen)
	m.ManagerID = &managerID
	return m
}
