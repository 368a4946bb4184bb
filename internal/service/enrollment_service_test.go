package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/spec-kit/easyevent/internal/domain"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

type enrollmentFixture struct {
	svc       *EnrollmentService
	events    *eventFixture
	enrollRep *fakeEnrollmentRepo
}

func newEnrollmentFixture(t *testing.T, maxAttendees int) (*enrollmentFixture, *domain.Event) {
	t.Helper()
	events := newEventFixture()

	input := validEventInput()
	input.MaxAttendees = maxAttendees
	event, err := events.svc.Create(context.Background(), organizer, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	publishEvent(t, events, event.ID)

	svc := NewEnrollmentService(EnrollmentDependencies{
		EnrollmentRepo: events.eventRepo.enrollments,
		EventRepo:      events.eventRepo,
		Dispatcher:     events.dispatcher,
	})
	return &enrollmentFixture{svc: svc, events: events, enrollRep: events.eventRepo.enrollments}, event
}

func (f *enrollmentFixture) attendeeCount(t *testing.T, eventID string) int {
	t.Helper()
	event, err := f.events.eventRepo.GetByID(context.Background(), eventID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return event.AttendeeCount
}

func TestEnrollConfirmsWhenPaymentCoversPrice(t *testing.T) {
	f, event := newEnrollmentFixture(t, 10)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, "user-a", event.ID, 25, "")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.Status != domain.EnrollmentStatusConfirmed {
		t.Errorf("status = %s, want %s", enrollment.Status, domain.EnrollmentStatusConfirmed)
	}
	if enrollment.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("payment = %s, want %s", enrollment.PaymentStatus, domain.PaymentStatusCompleted)
	}
	if enrollment.TicketType != "GENERAL" {
		t.Errorf("ticketType = %q, want GENERAL", enrollment.TicketType)
	}
	if got := f.attendeeCount(t, event.ID); got != 1 {
		t.Errorf("attendeeCount = %d, want 1", got)
	}
}

func TestEnrollStaysPendingOnPartialPayment(t *testing.T) {
	f, event := newEnrollmentFixture(t, 10)

	enrollment, err := f.svc.Enroll(context.Background(), "user-a", event.ID, 10, "VIP")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.Status != domain.EnrollmentStatusPending {
		t.Errorf("status = %s, want %s", enrollment.Status, domain.EnrollmentStatusPending)
	}
	if enrollment.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("payment = %s, want %s", enrollment.PaymentStatus, domain.PaymentStatusPending)
	}
	if enrollment.TicketType != "VIP" {
		t.Errorf("ticketType = %q, want VIP", enrollment.TicketType)
	}
}

func TestEnrollRejectsDuplicates(t *testing.T) {
	f, event := newEnrollmentFixture(t, 10)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, "user-a", event.ID, 25, ""); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}
	if _, err := f.svc.Enroll(ctx, "user-a", event.ID, 25, ""); !apperrors.IsCode(err, "ALREADY_ENROLLED") {
		t.Fatalf("err = %v, want ALREADY_ENROLLED", err)
	}
	if got := f.attendeeCount(t, event.ID); got != 1 {
		t.Errorf("attendeeCount = %d, want 1", got)
	}
}

func TestEnrollRejectsInvisibleEvents(t *testing.T) {
	events := newEventFixture()
	draft := events.mustCreate(t, organizer)
	svc := NewEnrollmentService(EnrollmentDependencies{
		EnrollmentRepo: events.eventRepo.enrollments,
		EventRepo:      events.eventRepo,
	})

	if _, err := svc.Enroll(context.Background(), "user-a", draft.ID, 25, ""); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("enroll in draft: err = %v, want NOT_FOUND", err)
	}
}

// A full event rejects new enrollments until a seat frees up, and the
// freed seat is immediately claimable.
func TestCapacityReleaseCycle(t *testing.T) {
	f, event := newEnrollmentFixture(t, 2)
	ctx := context.Background()

	first, err := f.svc.Enroll(ctx, "user-a", event.ID, 25, "")
	if err != nil {
		t.Fatalf("enroll A: %v", err)
	}
	if _, err := f.svc.Enroll(ctx, "user-b", event.ID, 25, ""); err != nil {
		t.Fatalf("enroll B: %v", err)
	}
	if _, err := f.svc.Enroll(ctx, "user-c", event.ID, 25, ""); !apperrors.IsCode(err, "EVENT_FULL") {
		t.Fatalf("enroll C on full event: err = %v, want EVENT_FULL", err)
	}
	if got := f.attendeeCount(t, event.ID); got != 2 {
		t.Fatalf("attendeeCount = %d, want 2", got)
	}

	if err := f.svc.Remove(ctx, first.ID, "user-a"); err != nil {
		t.Fatalf("remove A: %v", err)
	}
	if got := f.attendeeCount(t, event.ID); got != 1 {
		t.Fatalf("attendeeCount after removal = %d, want 1", got)
	}

	if _, err := f.svc.Enroll(ctx, "user-c", event.ID, 25, ""); err != nil {
		t.Fatalf("enroll C after seat freed: %v", err)
	}
	if got := f.attendeeCount(t, event.ID); got != 2 {
		t.Fatalf("attendeeCount = %d, want 2", got)
	}
}

// Concurrent enrollments never oversell: exactly maxAttendees succeed.
func TestConcurrentEnrollmentRespectsCapacity(t *testing.T) {
	const capacity = 5
	const contenders = 20
	f, event := newEnrollmentFixture(t, capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	errCh := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.svc.Enroll(ctx, userID, event.ID, 25, "")
			errCh <- err
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()
	close(errCh)

	succeeded, full := 0, 0
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsCode(err, "EVENT_FULL"):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != capacity {
		t.Errorf("succeeded = %d, want %d", succeeded, capacity)
	}
	if full != contenders-capacity {
		t.Errorf("rejected = %d, want %d", full, contenders-capacity)
	}
	if got := f.attendeeCount(t, event.ID); got != capacity {
		t.Errorf("attendeeCount = %d, want %d", got, capacity)
	}
}

func TestRemoveHidesOtherUsersEnrollments(t *testing.T) {
	f, event := newEnrollmentFixture(t, 10)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, "user-a", event.ID, 25, "")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if err := f.svc.Remove(ctx, enrollment.ID, "user-b"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("remove by stranger: err = %v, want NOT_FOUND", err)
	}
	if got := f.attendeeCount(t, event.ID); got != 1 {
		t.Errorf("attendeeCount = %d, want 1", got)
	}
}

func TestUpdateStatusLeavesCounterAlone(t *testing.T) {
	f, event := newEnrollmentFixture(t, 10)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, "user-a", event.ID, 10, "")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	updated, err := f.svc.UpdateStatus(ctx, enrollment.ID, domain.EnrollmentStatusConfirmed, domain.PaymentStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.EnrollmentStatusConfirmed || updated.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("updated = %s/%s", updated.Status, updated.PaymentStatus)
	}
	if got := f.attendeeCount(t, event.ID); got != 1 {
		t.Errorf("attendeeCount = %d, want 1", got)
	}

	if _, err := f.svc.UpdateStatus(ctx, enrollment.ID, "UNKNOWN", domain.PaymentStatusPending); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("invalid status: err = %v, want VALIDATION_FAILED", err)
	}
}

func TestListForUser(t *testing.T) {
	f, event := newEnrollmentFixture(t, 10)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, "user-a", event.ID, 25, ""); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := f.svc.Enroll(ctx, "user-b", event.ID, 25, ""); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	listed, err := f.svc.ListForUser(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("len = %d, want 1", len(listed))
	}
	if listed[0].Enrollment.UserID != "user-a" || listed[0].Event.ID != event.ID {
		t.Errorf("listed = %+v", listed[0])
	}
}
