package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/easyevent/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCreated      EventType = "event_created"
	EventSubmitted    EventType = "event_submitted"
	EventApproved     EventType = "event_approved"
	EventPublished    EventType = "event_published"
	EventDeleted      EventType = "event_deleted"
	EnrollmentCreated EventType = "enrollment_created"
	EnrollmentRemoved EventType = "enrollment_removed"
	UserBanned        EventType = "user_banned"
	UserUnbanned      EventType = "user_unbanned"
	UserRoleChanged   EventType = "user_role_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh identifier and timestamp.
func New(eventType EventType, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// EventLifecyclePayload payload for event lifecycle transitions.
type EventLifecyclePayload struct {
	EventID   string             `json:"event_id"`
	Title     string             `json:"title"`
	OldStatus domain.EventStatus `json:"old_status,omitempty"`
	NewStatus domain.EventStatus `json:"new_status,omitempty"`
}

// EnrollmentPayload payload.
type EnrollmentPayload struct {
	EnrollmentID  string  `json:"enrollment_id"`
	EventID       string  `json:"event_id"`
	UserID        string  `json:"user_id"`
	AttendeeCount int     `json:"attendee_count"`
	PaymentAmount float64 `json:"payment_amount,omitempty"`
}

// ModerationPayload payload.
type ModerationPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role,omitempty"`
	Reason string      `json:"reason,omitempty"`
}
