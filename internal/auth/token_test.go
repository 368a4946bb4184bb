package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/easyevent/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("round-trip-secret", 60)

	token, exp, err := tm.GenerateToken("user-1", domain.RoleOrganizer)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if until := time.Until(exp); until < 59*time.Minute || until > 61*time.Minute {
		t.Errorf("expiry %v not about an hour away", exp)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", claims.UserID)
	}
	if claims.Role != domain.RoleOrganizer {
		t.Errorf("Role = %s, want %s", claims.Role, domain.RoleOrganizer)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %s, want user-1", claims.Subject)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("user-1", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 60).ParseToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("secret"), ttl: -time.Minute}
	token, _, err := tm.GenerateToken("user-1", domain.RoleAttendee)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tm.ParseToken(bad); err == nil {
			t.Errorf("ParseToken(%q) accepted", bad)
		}
	}
}

func TestTTLFallback(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	if tm.ttl != 1440*time.Minute {
		t.Errorf("ttl = %v, want 24h default", tm.ttl)
	}
}
