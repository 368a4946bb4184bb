package domain

import "time"

// EventType enumerates how an event is held.
type EventType string

const (
	EventTypePhysical EventType = "PHYSICAL"
	EventTypeOnline   EventType = "ONLINE"
	EventTypeHybrid   EventType = "HYBRID"
)

// Valid reports whether the event type is a known value.
func (t EventType) Valid() bool {
	switch t {
	case EventTypePhysical, EventTypeOnline, EventTypeHybrid:
		return true
	}
	return false
}

// EventStatus enumerates lifecycle states for events.
type EventStatus string

const (
	EventStatusDraft           EventStatus = "DRAFT"
	EventStatusPendingApproval EventStatus = "PENDING_APPROVAL"
	EventStatusApproved        EventStatus = "APPROVED"
	EventStatusPublished       EventStatus = "PUBLISHED"
)

// transitions is the lifecycle table. Soft deletion is an overlay flag,
// not a state: a deleted event rejects every transition.
var transitions = map[EventStatus]map[EventStatus]bool{
	EventStatusDraft: {
		EventStatusPendingApproval: true,
		EventStatusApproved:        true, // admins may approve without a submit step
	},
	EventStatusPendingApproval: {
		EventStatusApproved: true,
	},
	EventStatusApproved: {
		EventStatusPublished: true,
	},
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another.
func CanTransition(from, to EventStatus) bool {
	return transitions[from][to]
}

// Event is the aggregate for platform events.
type Event struct {
	ID               string
	Title            string
	Description      string
	Type             EventType
	CategoryID       string
	StartDate        time.Time
	StartTime        string
	EndDate          time.Time
	EndTime          string
	Location         string
	Address          string
	Price            float64
	MaxAttendees     int
	TicketsAvailable int
	AttendeeCount    int
	CreatedBy        string
	Status           EventStatus
	ApprovedBy       *string
	ApprovedAt       *time.Time
	IsDeleted        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsApproved reports whether the event passed admin approval.
func (e *Event) IsApproved() bool {
	return e.Status == EventStatusApproved || e.Status == EventStatusPublished
}

// IsPublished reports whether the event was published by its owner.
func (e *Event) IsPublished() bool {
	return e.Status == EventStatusPublished
}

// PubliclyVisible reports whether attendees can see and enroll in the event.
func (e *Event) PubliclyVisible() bool {
	return !e.IsDeleted && e.Status == EventStatusPublished
}

// OwnedBy reports whether the given user created the event.
func (e *Event) OwnedBy(userID string) bool {
	return e.CreatedBy == userID
}
