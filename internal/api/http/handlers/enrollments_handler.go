package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/easyevent/internal/api/dto"
	"github.com/spec-kit/easyevent/internal/auth"
	"github.com/spec-kit/easyevent/internal/domain"
	"github.com/spec-kit/easyevent/internal/service"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

// EnrollmentsHandler manages enrollment endpoints.
type EnrollmentsHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentsHandler constructs handler.
func NewEnrollmentsHandler(enrollmentService *service.EnrollmentService) *EnrollmentsHandler {
	return &EnrollmentsHandler{enrollments: enrollmentService}
}

// Enroll POST /enroll/events/:eventId.
func (h *EnrollmentsHandler) Enroll(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	enrollment, err := h.enrollments.Enroll(c.Context(), user.ID, c.Params("eventId"), req.PaymentAmount, req.TicketType)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"enrollment": dto.NewEnrollmentResponse(enrollment),
	})
}

// ListMine GET /enroll/events.
func (h *EnrollmentsHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	listed, err := h.enrollments.ListForUser(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "events": dto.NewEnrolledEventResponses(listed)})
}

// Remove DELETE /enroll/:id.
func (h *EnrollmentsHandler) Remove(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.enrollments.Remove(c.Context(), c.Params("id"), user.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "enrollment removed"})
}

// UpdateStatus PUT /enroll/:id (admin only).
func (h *EnrollmentsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.EnrollmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	enrollment, err := h.enrollments.UpdateStatus(c.Context(), c.Params("id"),
		domain.EnrollmentStatus(req.Status), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "enrollment": dto.NewEnrollmentResponse(enrollment)})
}
