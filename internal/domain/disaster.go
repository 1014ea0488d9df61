package domain

import "time"

// AuditAction identifies the kind of mutation recorded in an audit event.
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
)

// UnknownUser is recorded when a mutation carries no acting user id.
const UnknownUser = "unknown"

// AuditEvent is a single immutable entry in a disaster's audit trail.
type AuditEvent struct {
	Action    AuditAction `json:"action"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// Disaster is a coordinated disaster record.
type Disaster struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	LocationName string       `json:"location_name"`
	Description  string       `json:"description"`
	Tags         []string     `json:"tags"`
	OwnerID      string       `json:"owner_id"`
	AuditTrail   []AuditEvent `json:"audit_trail"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewAuditEvent builds a timestamped audit event for the given action.
// An empty userID falls back to [UnknownUser].
func NewAuditEvent(action AuditAction, userID string) AuditEvent {
	if userID == "" {
		userID = UnknownUser
	}
	return AuditEvent{
		Action:    action,
		UserID:    userID,
		Timestamp: clock.Now().UTC(),
	}
}

// AppendAudit returns a new trail with event appended. The input slice is
// never mutated, so callers holding the old trail keep a stable view.
func AppendAudit(trail []AuditEvent, event AuditEvent) []AuditEvent {
	out := make([]AuditEvent, len(trail), len(trail)+1)
	copy(out, trail)
	return append(out, event)
}
