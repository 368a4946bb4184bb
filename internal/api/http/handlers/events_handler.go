package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/easyevent/internal/api/dto"
	"github.com/spec-kit/easyevent/internal/auth"
	"github.com/spec-kit/easyevent/internal/domain"
	"github.com/spec-kit/easyevent/internal/repository"
	"github.com/spec-kit/easyevent/internal/service"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

// EventsHandler manages event lifecycle endpoints.
type EventsHandler struct {
	events     *service.EventService
	categories repository.CategoryRepository
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService, categories repository.CategoryRepository) *EventsHandler {
	return &EventsHandler{events: eventService, categories: categories}
}

// ListUpcoming GET /events/upcoming (public).
func (h *EventsHandler) ListUpcoming(c *fiber.Ctx) error {
	listed, err := h.events.ListPublicUpcoming(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": dto.NewEventResponses(listed)})
}

// ListPast GET /events/past (public).
func (h *EventsHandler) ListPast(c *fiber.Ctx) error {
	listed, err := h.events.ListPublicPast(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": dto.NewEventResponses(listed)})
}

// List GET /events (authenticated, paginated).
func (h *EventsHandler) List(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), 10)

	listed, err := h.events.ListVisible(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"events":  dto.NewEventResponses(listed),
		"page":    page,
		"limit":   limit,
	})
}

// ListMine GET /events/organizer.
func (h *EventsHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	listed, err := h.events.ListByOrganizer(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": dto.NewEventResponses(listed)})
}

// ListCategories GET /categories (public).
func (h *EventsHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "categories": dto.NewCategoryResponses(categories)})
}

// Get GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	user, _ := auth.UserFromContext(c)
	event, err := h.events.Get(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "event": dto.NewEventResponse(event)})
}

// Create POST /events/create.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseEventRequest(c)
	if err != nil {
		return err
	}

	event, err := h.events.Create(c.Context(), user, *input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "event": dto.NewEventResponse(event)})
}

// Update PUT /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseEventRequest(c)
	if err != nil {
		return err
	}

	event, err := h.events.Update(c.Context(), user, c.Params("id"), *input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "event": dto.NewEventResponse(event)})
}

// Submit PUT /events/:id/submit.
func (h *EventsHandler) Submit(c *fiber.Ctx) error {
	return h.lifecycle(c, h.events.Submit)
}

// Approve PUT /events/:id/approve (admin only).
func (h *EventsHandler) Approve(c *fiber.Ctx) error {
	return h.lifecycle(c, h.events.Approve)
}

// Publish PUT /events/:id/publish.
func (h *EventsHandler) Publish(c *fiber.Ctx) error {
	return h.lifecycle(c, h.events.Publish)
}

// Delete DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.events.Delete(c.Context(), user, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "event deleted"})
}

// Reconcile GET /events/:id/reconcile (admin only).
func (h *EventsHandler) Reconcile(c *fiber.Ctx) error {
	result, err := h.events.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "reconciliation": result})
}

func (h *EventsHandler) lifecycle(c *fiber.Ctx, op func(ctx context.Context, actor *domain.User, id string) (*domain.Event, error)) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	event, err := op(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "event": dto.NewEventResponse(event)})
}

func parseEventRequest(c *fiber.Ctx) (*service.EventInput, error) {
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid start date", map[string]any{"startDate": req.StartDate})
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid end date", map[string]any{"endDate": req.EndDate})
	}

	return &service.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         domain.EventType(req.Type),
		CategoryID:   req.CategoryID,
		StartDate:    startDate,
		StartTime:    req.StartTime,
		EndDate:      endDate,
		EndTime:      req.EndTime,
		Location:     req.Location,
		Address:      req.Address,
		Price:        req.Price,
		MaxAttendees: req.MaxAttendees,
	}, nil
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
