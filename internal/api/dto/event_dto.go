package dto

import (
	"time"

	"github.com/spec-kit/easyevent/internal/domain"
)

// EventRequest payload for event create/update.
type EventRequest struct {
	Title        string  `json:"title" validate:"required,min=3"`
	Description  string  `json:"description" validate:"required,min=10"`
	Type         string  `json:"type" validate:"required,oneof=PHYSICAL ONLINE HYBRID"`
	CategoryID   string  `json:"categoryId" validate:"required,uuid4"`
	StartDate    string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime    string  `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndDate      string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	EndTime      string  `json:"endTime" validate:"omitempty,datetime=15:04"`
	Location     string  `json:"location"`
	Address      string  `json:"address"`
	Price        float64 `json:"price" validate:"gte=0"`
	MaxAttendees int     `json:"maxAttendees" validate:"required,gt=0"`
}

// EventResponse is the API projection of an event.
type EventResponse struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Type             domain.EventType   `json:"type"`
	CategoryID       string             `json:"categoryId"`
	StartDate        string             `json:"startDate"`
	StartTime        string             `json:"startTime,omitempty"`
	EndDate          string             `json:"endDate"`
	EndTime          string             `json:"endTime,omitempty"`
	Location         string             `json:"location,omitempty"`
	Address          string             `json:"address,omitempty"`
	Price            float64            `json:"price"`
	MaxAttendees     int                `json:"maxAttendees"`
	TicketsAvailable int                `json:"ticketsAvailable"`
	AttendeeCount    int                `json:"attendeeCount"`
	CreatedBy        string             `json:"createdBy"`
	Status           domain.EventStatus `json:"status"`
	IsApproved       bool               `json:"isApproved"`
	Published        bool               `json:"published"`
	ApprovedBy       *string            `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time         `json:"approvedAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// NewEventResponse maps a domain event.
func NewEventResponse(event *domain.Event) EventResponse {
	return EventResponse{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		Type:             event.Type,
		CategoryID:       event.CategoryID,
		StartDate:        event.StartDate.Format("2006-01-02"),
		StartTime:        event.StartTime,
		EndDate:          event.EndDate.Format("2006-01-02"),
		EndTime:          event.EndTime,
		Location:         event.Location,
		Address:          event.Address,
		Price:            event.Price,
		MaxAttendees:     event.MaxAttendees,
		TicketsAvailable: event.TicketsAvailable,
		AttendeeCount:    event.AttendeeCount,
		CreatedBy:        event.CreatedBy,
		Status:           event.Status,
		IsApproved:       event.IsApproved(),
		Published:        event.IsPublished(),
		ApprovedBy:       event.ApprovedBy,
		ApprovedAt:       event.ApprovedAt,
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}
}

// NewEventResponses maps a slice of domain events.
func NewEventResponses(list []domain.Event) []EventResponse {
	items := make([]EventResponse, 0, len(list))
	for i := range list {
		items = append(items, NewEventResponse(&list[i]))
	}
	return items
}

// CategoryResponse is the API projection of a category.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NewCategoryResponses maps a slice of categories.
func NewCategoryResponses(list []domain.Category) []CategoryResponse {
	items := make([]CategoryResponse, 0, len(list))
	for _, cat := range list {
		items = append(items, CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description})
	}
	return items
}
