package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/careline/engine/common/db"
	"github.com/careline/engine/common/models"
)

// memberColumns is the escalation-relevant projection of the users table
const memberColumns = `id, role, display_name, manager_id, last_seen_at, settings, push_token, last_sms_sent_at, is_premium`

// MemberRepository handles database operations against the activity ledger
type MemberRepository struct {
	db *db.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(database *db.DB) *MemberRepository {
	return &MemberRepository{db: database}
}

// ListInactive retrieves members whose last_seen_at is older than the floor.
// The floor is a coarse store-level prefilter; per-member window matching
// happens in the tier services.
func (r *MemberRepository) ListInactive(ctx context.Context, floor time.Time) ([]*models.Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE role = $1 AND last_seen_at < $2
		ORDER BY last_seen_at
	`, memberColumns)

	return r.list(ctx, query, models.RoleMember, floor)
}

// ListInactiveWithToken retrieves inactive members that can receive push
// notifications
func (r *MemberRepository) ListInactiveWithToken(ctx context.Context, floor time.Time) ([]*models.Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE role = $1 AND last_seen_at < $2 AND push_token IS NOT NULL
		ORDER BY last_seen_at
	`, memberColumns)

	return r.list(ctx, query, models.RoleMember, floor)
}

// ListInactiveManaged retrieves inactive members that have a supervising
// manager to alert
func (r *MemberRepository) ListInactiveManaged(ctx context.Context, floor time.Time) ([]*models.Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE role = $1 AND last_seen_at < $2 AND manager_id IS NOT NULL
		ORDER BY last_seen_at
	`, memberColumns)

	return r.list(ctx, query, models.RoleMember, floor)
}

// ManagerPushToken resolves a manager's push token. Returns empty string
// without error when the manager does not exist or carries no token, so
// callers can skip silently.
func (r *MemberRepository) ManagerPushToken(ctx context.Context, managerID uuid.UUID) (string, error) {
	query := `
		SELECT push_token
		FROM users
		WHERE id = $1
	`

	var token *string
	err := r.db.QueryRow(ctx, query, managerID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve manager push token: %w", err)
	}

	if token == nil {
		return "", nil
	}
	return *token, nil
}

// MarkSMSSent persists the emergency-tier idempotency marker for a member
func (r *MemberRepository) MarkSMSSent(ctx context.Context, memberID uuid.UUID, at time.Time) error {
	query := `
		UPDATE users
		SET last_sms_sent_at = $2
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, memberID, at)
	if err != nil {
		return fmt.Errorf("failed to mark sms sent: %w", err)
	}

	return nil
}

// UpdatePushToken replaces a user's push delivery address. A nil token
// clears it (permission revoked or app uninstalled).
func (r *MemberRepository) UpdatePushToken(ctx context.Context, userID uuid.UUID, token *string) error {
	query := `
		UPDATE users
		SET push_token = $2
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}

	return nil
}

// SetPremium updates a member's subscription class
func (r *MemberRepository) SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error {
	query := `
		UPDATE users
		SET is_premium = $2
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, userID, premium)
	if err != nil {
		return fmt.Errorf("failed to update premium flag: %w", err)
	}

	return nil
}

func (r *MemberRepository) list(ctx context.Context, query string, args ...any) ([]*models.Member, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		err := rows.Scan(
			&member.ID,
			&member.Role,
			&member.DisplayName,
			&member.ManagerID,
			&member.LastSeenAt,
			&member.Settings,
			&member.PushToken,
			&member.LastSMSSentAt,
			&member.IsPremium,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}
