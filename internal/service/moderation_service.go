package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/easyevent/internal/domain"
	"github.com/spec-kit/easyevent/internal/events"
	"github.com/spec-kit/easyevent/internal/repository"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

// ModerationService layers ban/unban and role changes on the identity
// store. All operations are admin-only, gated at the route level.
type ModerationService struct {
	users      repository.UserRepository
	bans       repository.BanRepository
	dispatcher events.Dispatcher
}

// NewModerationService constructs the service.
func NewModerationService(users repository.UserRepository, bans repository.BanRepository, dispatcher events.Dispatcher) *ModerationService {
	return &ModerationService{users: users, bans: bans, dispatcher: dispatcher}
}

// ListUsers returns a page of accounts for the admin console.
func (s *ModerationService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.users.List(ctx, limit, (page-1)*limit)
}

// Ban flips the account to banned and appends an audit record in one
// transaction. Admins cannot ban themselves or other admins.
func (s *ModerationService) Ban(ctx context.Context, admin *domain.User, userID, reason string) (*domain.User, error) {
	if userID == admin.ID {
		return nil, apperrors.NewValidationError("cannot ban yourself", nil)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, apperrors.NewForbidden("cannot ban an administrator")
	}
	if user.Status == domain.UserStatusBanned {
		return nil, apperrors.NewValidationError("user is already banned", nil)
	}

	record := &domain.BanRecord{
		UserID:       user.ID,
		BannedBy:     admin.ID,
		OriginalRole: user.Role,
		BanReason:    reason,
	}
	if err := s.users.Ban(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserBanned, admin.ID, events.ModerationPayload{
		UserID: user.ID,
		Reason: reason,
	})
	return s.getUser(ctx, userID)
}

// Unban reactivates the account. The audit history stays.
func (s *ModerationService) Unban(ctx context.Context, admin *domain.User, userID string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != domain.UserStatusBanned {
		return nil, apperrors.NewValidationError("user is not banned", nil)
	}
	if err := s.users.Unban(ctx, userID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserUnbanned, admin.ID, events.ModerationPayload{UserID: userID})
	return s.getUser(ctx, userID)
}

// ChangeRole updates the account's role.
func (s *ModerationService) ChangeRole(ctx context.Context, admin *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserRoleChanged, admin.ID, events.ModerationPayload{
		UserID: userID,
		Role:   role,
	})
	return s.getUser(ctx, userID)
}

// BanHistory returns the append-only audit trail for an account.
func (s *ModerationService) BanHistory(ctx context.Context, userID string) ([]domain.BanRecord, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.bans.ListByUser(ctx, userID)
}

func (s *ModerationService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	return user, nil
}

func (s *ModerationService) publish(ctx context.Context, eventType events.EventType, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.New(eventType, actorID, payload))
}
