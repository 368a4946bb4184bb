package dto

import (
	"time"

	"github.com/spec-kit/easyevent/internal/domain"
)

// EnrollRequest payload for enrolling in an event.
type EnrollRequest struct {
	PaymentAmount float64 `json:"paymentAmount" validate:"gte=0"`
	TicketType    string  `json:"ticketType" validate:"omitempty,max=64"`
}

// EnrollmentUpdateRequest payload for administrative corrections.
type EnrollmentUpdateRequest struct {
	Status        string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED"`
	PaymentStatus string `json:"paymentStatus" validate:"required,oneof=PENDING COMPLETED"`
}

// EnrollmentResponse is the API projection of an enrollment.
type EnrollmentResponse struct {
	ID            string                  `json:"id"`
	UserID        string                  `json:"userId"`
	EventID       string                  `json:"eventId"`
	Status        domain.EnrollmentStatus `json:"status"`
	PaymentStatus domain.PaymentStatus    `json:"paymentStatus"`
	PaymentAmount float64                 `json:"paymentAmount"`
	TicketType    string                  `json:"ticketType"`
	EnrolledAt    time.Time               `json:"enrollmentDate"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// NewEnrollmentResponse maps a domain enrollment.
func NewEnrollmentResponse(enrollment *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:            enrollment.ID,
		UserID:        enrollment.UserID,
		EventID:       enrollment.EventID,
		Status:        enrollment.Status,
		PaymentStatus: enrollment.PaymentStatus,
		PaymentAmount: enrollment.PaymentAmount,
		TicketType:    enrollment.TicketType,
		EnrolledAt:    enrollment.EnrolledAt,
		UpdatedAt:     enrollment.UpdatedAt,
	}
}

// EnrolledEventResponse joins an enrollment with its event.
type EnrolledEventResponse struct {
	Enrollment EnrollmentResponse `json:"enrollment"`
	Event      EventResponse      `json:"event"`
}

// NewEnrolledEventResponses maps joined projections.
func NewEnrolledEventResponses(list []domain.EnrolledEvent) []EnrolledEventResponse {
	items := make([]EnrolledEventResponse, 0, len(list))
	for i := range list {
		items = append(items, EnrolledEventResponse{
			Enrollment: NewEnrollmentResponse(&list[i].Enrollment),
			Event:      NewEventResponse(&list[i].Event),
		})
	}
	return items
}
