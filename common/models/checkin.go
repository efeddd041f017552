package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckInLog represents one confirmed check-in event
// Maps to: check_in_logs table
type CheckInLog struct {
	ID uuid.UUID `db:"id" json:"id"`

	MemberID uuid.UUID `db:"member_id" json:"member_id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Free-form method tag ("tap", "photo", ...)
	CheckInType string `db:"check_in_type" json:"check_in_type"`

	// Optional public URL of the attached proof media
	ProofURL *string `db:"proof_url" json:"proof_url,omitempty"`
}
