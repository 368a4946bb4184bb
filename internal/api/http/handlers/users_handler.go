package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/easyevent/internal/api/dto"
	"github.com/spec-kit/easyevent/internal/auth"
	"github.com/spec-kit/easyevent/internal/domain"
	"github.com/spec-kit/easyevent/internal/service"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

// UsersHandler exposes admin moderation endpoints.
type UsersHandler struct {
	moderation *service.ModerationService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(moderationService *service.ModerationService) *UsersHandler {
	return &UsersHandler{moderation: moderationService}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), 10)

	users, err := h.moderation.ListUsers(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   dto.NewModeratedUserResponses(users),
		"page":    page,
		"limit":   limit,
	})
}

// Ban POST /users/:id/ban.
func (h *UsersHandler) Ban(c *fiber.Ctx) error {
	admin, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.moderation.Ban(c.Context(), admin, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewModeratedUserResponse(user)})
}

// Unban POST /users/:id/unban.
func (h *UsersHandler) Unban(c *fiber.Ctx) error {
	admin, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.moderation.Unban(c.Context(), admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewModeratedUserResponse(user)})
}

// ChangeRole PUT /users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	admin, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RoleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.moderation.ChangeRole(c.Context(), admin, c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": dto.NewModeratedUserResponse(user)})
}

// BanHistory GET /users/:id/bans.
func (h *UsersHandler) BanHistory(c *fiber.Ctx) error {
	records, err := h.moderation.BanHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "bans": dto.NewBanRecordResponses(records)})
}
