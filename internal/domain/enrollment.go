package domain

import "time"

// EnrollmentStatus enumerates lifecycle states for enrollments.
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusConfirmed EnrollmentStatus = "CONFIRMED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Valid reports whether the enrollment status is a known value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusConfirmed, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus enumerates payment bookkeeping states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// Valid reports whether the payment status is a known value.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusCompleted
}

// Enrollment links a user to an event. It is an independent join entity:
// removing it must decrement the owning event's attendee counter in the
// same transaction.
type Enrollment struct {
	ID            string
	UserID        string
	EventID       string
	Status        EnrollmentStatus
	PaymentStatus PaymentStatus
	PaymentAmount float64
	TicketType    string
	EnrolledAt    time.Time
	UpdatedAt     time.Time
}

// Active reports whether the enrollment still occupies a seat.
func (e *Enrollment) Active() bool {
	return e.Status != EnrollmentStatusCancelled
}

// EnrolledEvent is the joined projection returned to attendees.
type EnrolledEvent struct {
	Enrollment Enrollment
	Event      Event
}
