package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/easyevent/internal/config"
	"github.com/spec-kit/easyevent/internal/domain"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}
}

func TestRegisterDefaultsToAttendee(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newFakeUserRepo())

	user, token, exp, err := svc.Register(context.Background(), "Ada Lovelace", "ada@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleAttendee {
		t.Errorf("role = %s, want %s", user.Role, domain.RoleAttendee)
	}
	if user.Status != domain.UserStatusActive {
		t.Errorf("status = %s, want %s", user.Status, domain.UserStatusActive)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v not in the future", exp)
	}
	if user.PasswordHash == "secret1" {
		t.Error("password stored in plain text")
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newFakeUserRepo())

	_, _, _, err := svc.Register(context.Background(), "Eve", "eve@example.com", "secret1", domain.RoleAdmin)
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newFakeUserRepo())
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1", domain.RoleOrganizer); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, _, _, err := svc.Register(ctx, "Other Ada", "ada@example.com", "secret2", domain.RoleAttendee)
	if !apperrors.IsCode(err, "DUPLICATE_EMAIL") {
		t.Fatalf("err = %v, want DUPLICATE_EMAIL", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newFakeUserRepo())
	ctx := context.Background()

	registered, _, _, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1", domain.RoleOrganizer)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, token, _, err := svc.Login(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("user ID = %s, want %s", user.ID, registered.ID)
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("claims user = %s, want %s", claims.UserID, registered.ID)
	}
	if claims.Role != domain.RoleOrganizer {
		t.Errorf("claims role = %s, want %s", claims.Role, domain.RoleOrganizer)
	}
}

// Unknown email and wrong password must be indistinguishable so login
// cannot be used to probe for accounts.
func TestLoginErrorShapeDoesNotLeakAccounts(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newFakeUserRepo())
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1", domain.RoleAttendee); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, _, unknownErr := svc.Login(ctx, "nobody@example.com", "secret1")
	_, _, _, wrongPwErr := svc.Login(ctx, "ada@example.com", "wrong")

	for _, err := range []error{unknownErr, wrongPwErr} {
		if !apperrors.IsCode(err, "INVALID_CREDENTIALS") {
			t.Fatalf("err = %v, want INVALID_CREDENTIALS", err)
		}
	}
	if unknownErr.Error() != wrongPwErr.Error() {
		t.Errorf("error messages differ: %q vs %q", unknownErr, wrongPwErr)
	}
}

func TestLoginBannedAccount(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(testAuthConfig(), users)
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := users.Ban(ctx, &domain.BanRecord{UserID: user.ID, BannedBy: "admin-1", BanReason: "abuse"}); err != nil {
		t.Fatalf("Ban: %v", err)
	}

	_, _, _, err = svc.Login(ctx, "ada@example.com", "secret1")
	if !apperrors.IsCode(err, "ACCOUNT_BANNED") {
		t.Fatalf("err = %v, want ACCOUNT_BANNED", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newFakeUserRepo())
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "newpass1"); !apperrors.IsCode(err, "INVALID_CREDENTIALS") {
		t.Fatalf("err = %v, want INVALID_CREDENTIALS", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "secret1", "newpass1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "ada@example.com", "secret1"); !apperrors.IsCode(err, "INVALID_CREDENTIALS") {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "ada@example.com", "newpass1"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
}
