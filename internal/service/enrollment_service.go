package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/easyevent/internal/domain"
	"github.com/spec-kit/easyevent/internal/events"
	"github.com/spec-kit/easyevent/internal/repository"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

const defaultTicketType = "GENERAL"

// EnrollmentService owns the user-event relationship and its capacity
// accounting. It reads events through the event repository but never
// bypasses lifecycle invariants: only publicly visible events accept
// enrollments.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	eventsRepo  repository.EventRepository
	dispatcher  events.Dispatcher
}

// EnrollmentDependencies bundles requirements for the enrollment service.
type EnrollmentDependencies struct {
	EnrollmentRepo repository.EnrollmentRepository
	EventRepo      repository.EventRepository
	Dispatcher     events.Dispatcher
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(deps EnrollmentDependencies) *EnrollmentService {
	return &EnrollmentService{
		enrollments: deps.EnrollmentRepo,
		eventsRepo:  deps.EventRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Enroll registers the user for an event. The enrollment row and the
// event's counters commit in one repository transaction; a failed attempt
// leaves both untouched.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, eventID string, paymentAmount float64, ticketType string) (*domain.Enrollment, error) {
	if paymentAmount < 0 {
		return nil, apperrors.NewValidationError("payment amount must not be negative", nil)
	}

	event, err := s.eventsRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event")
		}
		return nil, err
	}
	if !event.PubliclyVisible() {
		return nil, apperrors.NewNotFound("event")
	}
	if event.AttendeeCount >= event.MaxAttendees {
		return nil, apperrors.NewEventFull()
	}

	if _, err := s.enrollments.GetActiveByUserAndEvent(ctx, userID, eventID); err == nil {
		return nil, apperrors.NewAlreadyEnrolled()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	status := domain.EnrollmentStatusPending
	payment := domain.PaymentStatusPending
	if paymentAmount >= event.Price {
		status = domain.EnrollmentStatusConfirmed
		payment = domain.PaymentStatusCompleted
	}
	if strings.TrimSpace(ticketType) == "" {
		ticketType = defaultTicketType
	}

	enrollment := &domain.Enrollment{
		UserID:        userID,
		EventID:       eventID,
		Status:        status,
		PaymentStatus: payment,
		PaymentAmount: paymentAmount,
		TicketType:    ticketType,
	}
	if err := s.enrollments.Enroll(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventFull):
			return nil, apperrors.NewEventFull()
		case errors.Is(err, repository.ErrAlreadyEnrolled):
			return nil, apperrors.NewAlreadyEnrolled()
		}
		return nil, err
	}

	s.publish(ctx, events.EnrollmentCreated, userID, events.EnrollmentPayload{
		EnrollmentID:  enrollment.ID,
		EventID:       eventID,
		UserID:        userID,
		AttendeeCount: event.AttendeeCount + 1,
		PaymentAmount: paymentAmount,
	})
	return enrollment, nil
}

// Remove cancels the caller's enrollment and releases the seat.
func (s *EnrollmentService) Remove(ctx context.Context, enrollmentID, userID string) error {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("enrollment")
		}
		return err
	}
	if enrollment.UserID != userID {
		// hide other users' enrollments entirely
		return apperrors.NewNotFound("enrollment")
	}

	if err := s.enrollments.Remove(ctx, enrollmentID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("enrollment")
		}
		return err
	}

	s.publish(ctx, events.EnrollmentRemoved, userID, events.EnrollmentPayload{
		EnrollmentID: enrollmentID,
		EventID:      enrollment.EventID,
		UserID:       userID,
	})
	return nil
}

// UpdateStatus is an administrative correction of status and payment
// bookkeeping; it never touches the attendee counter.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, enrollmentID string, status domain.EnrollmentStatus, payment domain.PaymentStatus) (*domain.Enrollment, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid enrollment status", map[string]any{"status": status})
	}
	if !payment.Valid() {
		return nil, apperrors.NewValidationError("invalid payment status", map[string]any{"paymentStatus": payment})
	}

	enrollment, err := s.enrollments.UpdateStatus(ctx, enrollmentID, status, payment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("enrollment")
		}
		return nil, err
	}
	return enrollment, nil
}

// ListForUser returns the caller's enrollments joined with their events,
// ordered by event start date.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]domain.EnrolledEvent, error) {
	return s.enrollments.ListForUser(ctx, userID)
}

func (s *EnrollmentService) publish(ctx context.Context, eventType events.EventType, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.New(eventType, actorID, payload))
}
