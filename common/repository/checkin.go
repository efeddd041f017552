package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careline/engine/common/db"
	"github.com/careline/engine/common/models"
)

// CheckInLogRepository handles database operations for check-in history
type CheckInLogRepository struct {
	db *db.DB
}

// NewCheckInLogRepository creates a new check-in log repository
func NewCheckInLogRepository(database *db.DB) *CheckInLogRepository {
	return &CheckInLogRepository{db: database}
}

// Create inserts a new check-in log entry
func (r *CheckInLogRepository) Create(ctx context.Context, log *models.CheckInLog) error {
	query := `
		INSERT INTO check_in_logs (id, member_id, created_at, check_in_type, proof_url)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		log.ID,
		log.MemberID,
		log.CreatedAt,
		log.CheckInType,
		log.ProofURL,
	)

	if err != nil {
		return fmt.Errorf("failed to create check-in log: %w", err)
	}

	return nil
}

// ListRecent retrieves a member's check-in history, newest first
func (r *CheckInLogRepository) ListRecent(ctx context.Context, memberID uuid.UUID, limit int) ([]*models.CheckInLog, error) {
	query := `
		SELECT id, member_id, created_at, check_in_type, proof_url
		FROM check_in_logs
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return r.list(ctx, query, memberID, limit)
}

// ListExpired retrieves check-in logs owned by members of the given
// subscription class with created_at strictly older than the cutoff
func (r *CheckInLogRepository) ListExpired(ctx context.Context, cutoff time.Time, premium bool) ([]*models.CheckInLog, error) {
	query := `
		SELECT l.id, l.member_id, l.created_at, l.check_in_type, l.proof_url
		FROM check_in_logs l
		JOIN users u ON u.id = l.member_id
		WHERE u.is_premium = $1 AND l.created_at < $2
		ORDER BY l.created_at
	`

	return r.list(ctx, query, premium, cutoff)
}

// DeleteByIDs removes check-in logs in a single batch
func (r *CheckInLogRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		DELETE FROM check_in_logs
		WHERE id = ANY($1)
	`

	_, err := r.db.Exec(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to delete check-in logs: %w", err)
	}

	return nil
}

func (r *CheckInLogRepository) list(ctx context.Context, query string, args ...any) ([]*models.CheckInLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-in logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.CheckInLog
	for rows.Next() {
		log := &models.CheckInLog{}
		err := rows.Scan(
			&log.ID,
			&log.MemberID,
			&log.CreatedAt,
			&log.CheckInType,
			&log.ProofURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check-in logs: %w", err)
	}

	return logs, nil
}
