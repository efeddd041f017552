package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents the account role in the users table
type Role string

const (
	RoleMember  Role = "member"
	RoleManager Role = "manager"
)

// ContactList is an ordered list of emergency contact phone numbers.
// Historical records stored a single scalar number instead of a list, so the
// JSON shape is heterogeneous; decoding normalizes both shapes to a list and
// this is the only place that normalization happens.
type ContactList []string

// UnmarshalJSON accepts either a JSON string or a JSON array of strings
func (c *ContactList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = normalizeContacts(list)
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = normalizeContacts([]string{single})
		return nil
	}

	return fmt.Errorf("emergency_contacts: expected string or array, got %s", string(data))
}

// normalizeContacts trims entries and drops empties, preserving order
func normalizeContacts(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// MemberSettings is the per-member escalation configuration stored in the
// users.settings jsonb column. The mobile client writes it; the engine only
// reads it.
type MemberSettings struct {
	// AlertCycle is the full escalation cycle in hours (48/72/96 in the
	// client UI). Zero or absent means the default applies.
	AlertCycle int `json:"alertCycle,omitempty"`

	EmergencyContacts ContactList `json:"emergency_contacts,omitempty"`
}

// Member represents a monitored account and its escalation-relevant state
// Maps to: users table
type Member struct {
	ID uuid.UUID `db:"id" json:"id"`

	Role Role `db:"role" json:"role"`

	// Display name used in manager and emergency-contact messages
	DisplayName string `db:"display_name" json:"display_name"`

	// Supervising account; a lookup reference, not an ownership relation
	ManagerID *uuid.UUID `db:"manager_id" json:"manager_id,omitempty"`

	// Single source of truth for activity; advanced only by the check-in
	// action
	LastSeenAt time.Time `db:"last_seen_at" json:"last_seen_at"`

	Settings MemberSettings `db:"settings" json:"settings"`

	// Opaque push delivery address; nil when the member never granted
	// notification permission
	PushToken *string `db:"push_token" json:"push_token,omitempty"`

	// Idempotency marker for the emergency SMS tier. Nil or older than
	// LastSeenAt means no SMS has fired for the current inactivity episode.
	LastSMSSentAt *time.Time `db:"last_sms_sent_at" json:"last_sms_sent_at,omitempty"`

	IsPremium bool `db:"is_premium" json:"is_premium"`
}

// AlertCycle returns the member's configured escalation cycle, falling back
// to the given default when unset
func (m *Member) AlertCycle(def time.Duration) time.Duration {
	if m.Settings.AlertCycle > 0 {
		return time.Duration(m.Settings.AlertCycle) * time.Hour
	}
	return def
}

// HalfCycle returns half the member's escalation cycle, the manager-alert
// threshold
func (m *Member) HalfCycle(def time.Duration) time.Duration {
	return m.AlertCycle(def) / 2
}

// EmergencyContacts returns the member's normalized contact list
func (m *Member) EmergencyContacts() []string {
	return m.Settings.EmergencyContacts
}

// SMSPending reports whether the emergency tier may still fire for the
// current inactivity episode: the marker is unset or predates the episode.
func (m *Member) SMSPending() bool {
	return m.LastSMSSentAt == nil || m.LastSMSSentAt.Before(m.LastSeenAt)
}
