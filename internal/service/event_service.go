package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/easyevent/internal/auth"
	"github.com/spec-kit/easyevent/internal/domain"
	"github.com/spec-kit/easyevent/internal/events"
	"github.com/spec-kit/easyevent/internal/persistence"
	"github.com/spec-kit/easyevent/internal/repository"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

const (
	cacheKeyUpcoming = "events:public:upcoming"
	cacheKeyPast     = "events:public:past"
)

// EventService coordinates the event lifecycle.
type EventService struct {
	events     repository.EventRepository
	categories repository.CategoryRepository
	cache      *persistence.ListingCache
	dispatcher events.Dispatcher
}

// EventDependencies bundles requirements for the event service.
type EventDependencies struct {
	EventRepo    repository.EventRepository
	CategoryRepo repository.CategoryRepository
	Cache        *persistence.ListingCache
	Dispatcher   events.Dispatcher
}

// EventInput describes create/update payloads after boundary validation.
type EventInput struct {
	Title        string
	Description  string
	Type         domain.EventType
	CategoryID   string
	StartDate    time.Time
	StartTime    string
	EndDate      time.Time
	EndTime      string
	Location     string
	Address      string
	Price        float64
	MaxAttendees int
}

// ReconcileResult compares the denormalized counter with the derived count.
type ReconcileResult struct {
	EventID       string `json:"event_id"`
	AttendeeCount int    `json:"attendee_count"`
	DerivedCount  int    `json:"derived_count"`
	Consistent    bool   `json:"consistent"`
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		events:     deps.EventRepo,
		categories: deps.CategoryRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// Create inserts a new event in draft state with a full ticket allocation.
func (s *EventService) Create(ctx context.Context, actor *domain.User, input EventInput) (*domain.Event, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Type:             input.Type,
		CategoryID:       input.CategoryID,
		StartDate:        input.StartDate,
		StartTime:        input.StartTime,
		EndDate:          input.EndDate,
		EndTime:          input.EndTime,
		Location:         input.Location,
		Address:          input.Address,
		Price:            input.Price,
		MaxAttendees:     input.MaxAttendees,
		TicketsAvailable: input.MaxAttendees,
		CreatedBy:        actor.ID,
		Status:           domain.EventStatusDraft,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventCreated, actor.ID, events.EventLifecyclePayload{
		EventID:   event.ID,
		Title:     event.Title,
		NewStatus: event.Status,
	})
	return event, nil
}

// Update overwrites mutable fields. Only the owner or an admin may update,
// and capacity may not shrink below the seats already taken.
func (s *EventService) Update(ctx context.Context, actor *domain.User, eventID string, input EventInput) (*domain.Event, error) {
	event, err := s.getMutable(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}
	if input.MaxAttendees < event.AttendeeCount {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("max attendees cannot be below current attendee count (%d)", event.AttendeeCount), nil)
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Description = strings.TrimSpace(input.Description)
	event.Type = input.Type
	event.CategoryID = input.CategoryID
	event.StartDate = input.StartDate
	event.StartTime = input.StartTime
	event.EndDate = input.EndDate
	event.EndTime = input.EndTime
	event.Location = input.Location
	event.Address = input.Address
	event.Price = input.Price
	event.MaxAttendees = input.MaxAttendees
	event.TicketsAvailable = input.MaxAttendees

	if err := s.events.Update(ctx, event); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event")
		}
		return nil, err
	}

	s.invalidateListings(ctx)
	return s.events.GetByID(ctx, event.ID)
}

// Submit moves a draft into the approval queue.
func (s *EventService) Submit(ctx context.Context, actor *domain.User, eventID string) (*domain.Event, error) {
	event, err := s.getMutable(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, event, domain.EventStatusPendingApproval, nil); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventSubmitted, actor.ID, events.EventLifecyclePayload{
		EventID:   event.ID,
		Title:     event.Title,
		OldStatus: event.Status,
		NewStatus: domain.EventStatusPendingApproval,
	})
	return s.events.GetByID(ctx, event.ID)
}

// Approve records admin approval. Route-level gating restricts callers to
// admins; ownership plays no part here.
func (s *EventService) Approve(ctx context.Context, actor *domain.User, eventID string) (*domain.Event, error) {
	event, err := s.getExisting(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, event, domain.EventStatusApproved, &actor.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventApproved, actor.ID, events.EventLifecyclePayload{
		EventID:   event.ID,
		Title:     event.Title,
		OldStatus: event.Status,
		NewStatus: domain.EventStatusApproved,
	})
	return s.events.GetByID(ctx, event.ID)
}

// Publish makes an approved event publicly visible. Publishing an
// unapproved event is rejected by the transition table.
func (s *EventService) Publish(ctx context.Context, actor *domain.User, eventID string) (*domain.Event, error) {
	event, err := s.getMutable(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, event, domain.EventStatusPublished, nil); err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)
	s.publish(ctx, events.EventPublished, actor.ID, events.EventLifecyclePayload{
		EventID:   event.ID,
		Title:     event.Title,
		OldStatus: event.Status,
		NewStatus: domain.EventStatusPublished,
	})
	return s.events.GetByID(ctx, event.ID)
}

// Delete soft-deletes the event, preserving enrollment history.
func (s *EventService) Delete(ctx context.Context, actor *domain.User, eventID string) error {
	event, err := s.getMutable(ctx, actor, eventID)
	if err != nil {
		return err
	}
	if err := s.events.SoftDelete(ctx, event.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("event")
		}
		return err
	}
	s.invalidateListings(ctx)
	s.publish(ctx, events.EventDeleted, actor.ID, events.EventLifecyclePayload{
		EventID: event.ID,
		Title:   event.Title,
	})
	return nil
}

// Get returns an event. Events that are not publicly visible are only
// shown to their owner or an admin; everyone else sees a 404 so drafts
// and deleted events leak nothing.
func (s *EventService) Get(ctx context.Context, actor *domain.User, eventID string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event")
		}
		return nil, err
	}
	if event.PubliclyVisible() {
		return event, nil
	}
	if actor != nil && !event.IsDeleted && (actor.IsAdmin() || event.OwnedBy(actor.ID)) {
		return event, nil
	}
	return nil, apperrors.NewNotFound("event")
}

// ListPublicUpcoming returns published future events, cache-first.
func (s *EventService) ListPublicUpcoming(ctx context.Context) ([]domain.Event, error) {
	return s.listPublic(ctx, true)
}

// ListPublicPast returns published past events, cache-first.
func (s *EventService) ListPublicPast(ctx context.Context) ([]domain.Event, error) {
	return s.listPublic(ctx, false)
}

// ListVisible returns published events for authenticated browsing.
func (s *EventService) ListVisible(ctx context.Context, page, limit int) ([]domain.Event, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.events.ListVisible(ctx, limit, (page-1)*limit)
}

// ListByOrganizer returns the caller's own events, drafts included.
func (s *EventService) ListByOrganizer(ctx context.Context, actor *domain.User) ([]domain.Event, error) {
	return s.events.ListByOrganizer(ctx, actor.ID)
}

// Reconcile compares the denormalized attendee counter against the derived
// count over active enrollments.
func (s *EventService) Reconcile(ctx context.Context, eventID string) (*ReconcileResult, error) {
	event, err := s.getExisting(ctx, eventID)
	if err != nil {
		return nil, err
	}
	derived, err := s.events.CountActiveEnrollments(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{
		EventID:       event.ID,
		AttendeeCount: event.AttendeeCount,
		DerivedCount:  derived,
		Consistent:    event.AttendeeCount == derived,
	}, nil
}

func (s *EventService) listPublic(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	key := cacheKeyPast
	if upcoming {
		key = cacheKeyUpcoming
	}
	if payload, ok := s.cache.Get(ctx, key); ok {
		var cached []domain.Event
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}

	listed, err := s.events.ListPublic(ctx, upcoming)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(listed); err == nil {
		s.cache.Set(ctx, key, payload)
	}
	return listed, nil
}

// getExisting loads a non-deleted event or reports 404.
func (s *EventService) getExisting(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event")
		}
		return nil, err
	}
	if event.IsDeleted {
		return nil, apperrors.NewNotFound("event")
	}
	return event, nil
}

// getMutable loads the event and enforces owner-or-admin access.
func (s *EventService) getMutable(ctx context.Context, actor *domain.User, eventID string) (*domain.Event, error) {
	event, err := s.getExisting(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor, nil, &event.CreatedBy); err != nil {
		return nil, err
	}
	return event, nil
}

// transition applies a lifecycle move. The domain table rejects it up
// front; the guarded repository update re-checks the source state so a
// racing transition loses cleanly instead of overwriting.
func (s *EventService) transition(ctx context.Context, event *domain.Event, to domain.EventStatus, approverID *string) error {
	if !domain.CanTransition(event.Status, to) {
		return apperrors.NewInvalidTransition(
			fmt.Sprintf("cannot move event from %s to %s", event.Status, to))
	}

	var err error
	if approverID != nil {
		err = s.events.Approve(ctx, event.ID, *approverID, event.Status)
	} else {
		err = s.events.UpdateStatus(ctx, event.ID, to, event.Status)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidTransition("event state changed concurrently")
		}
		return err
	}
	return nil
}

func (s *EventService) validateInput(ctx context.Context, input EventInput) error {
	details := map[string]any{}
	if len(strings.TrimSpace(input.Title)) < 3 {
		details["title"] = "must be at least 3 characters"
	}
	if len(strings.TrimSpace(input.Description)) < 10 {
		details["description"] = "must be at least 10 characters"
	}
	if !input.Type.Valid() {
		details["type"] = "must be PHYSICAL, ONLINE or HYBRID"
	}
	if input.StartDate.IsZero() {
		details["startDate"] = "required"
	}
	if !input.EndDate.IsZero() && input.EndDate.Before(input.StartDate) {
		details["endDate"] = "must not be before start date"
	}
	if input.Price < 0 {
		details["price"] = "must not be negative"
	}
	if input.MaxAttendees <= 0 {
		details["maxAttendees"] = "must be greater than zero"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid event payload", details)
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown category", map[string]any{"categoryId": input.CategoryID})
		}
		return err
	}
	return nil
}

func (s *EventService) invalidateListings(ctx context.Context) {
	s.cache.Invalidate(ctx, cacheKeyUpcoming, cacheKeyPast)
}

func (s *EventService) publish(ctx context.Context, eventType events.EventType, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.New(eventType, actorID, payload))
}
