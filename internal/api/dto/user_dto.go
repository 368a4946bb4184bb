package dto

import (
	"time"

	"github.com/spec-kit/easyevent/internal/domain"
)

// BanRequest payload for banning an account.
type BanRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// RoleChangeRequest payload for role changes.
type RoleChangeRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN ORGANIZER ATTENDEE"`
}

// ModeratedUserResponse is the admin-console projection of an account.
type ModeratedUserResponse struct {
	ID        string            `json:"id"`
	FullName  string            `json:"fullname"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Status    domain.UserStatus `json:"status"`
	BannedAt  *time.Time        `json:"bannedAt,omitempty"`
	BannedBy  *string           `json:"bannedBy,omitempty"`
	BanReason *string           `json:"banReason,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewModeratedUserResponse maps a domain user including ban metadata.
func NewModeratedUserResponse(user *domain.User) ModeratedUserResponse {
	return ModeratedUserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		BannedAt:  user.BannedAt,
		BannedBy:  user.BannedBy,
		BanReason: user.BanReason,
		CreatedAt: user.CreatedAt,
	}
}

// NewModeratedUserResponses maps a slice of accounts.
func NewModeratedUserResponses(list []domain.User) []ModeratedUserResponse {
	items := make([]ModeratedUserResponse, 0, len(list))
	for i := range list {
		items = append(items, NewModeratedUserResponse(&list[i]))
	}
	return items
}

// BanRecordResponse is the audit-trail projection.
type BanRecordResponse struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	BannedBy     string      `json:"bannedBy"`
	OriginalRole domain.Role `json:"originalRole"`
	BanReason    string      `json:"banReason"`
	BannedAt     time.Time   `json:"bannedAt"`
}

// NewBanRecordResponses maps audit entries.
func NewBanRecordResponses(list []domain.BanRecord) []BanRecordResponse {
	items := make([]BanRecordResponse, 0, len(list))
	for _, rec := range list {
		items = append(items, BanRecordResponse{
			ID:           rec.ID,
			UserID:       rec.UserID,
			BannedBy:     rec.BannedBy,
			OriginalRole: rec.OriginalRole,
			BanReason:    rec.BanReason,
			BannedAt:     rec.BannedAt,
		})
	}
	return items
}
