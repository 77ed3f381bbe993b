package auth

import (
	"testing"
	"time"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	token, err := manager.GenerateToken("user-1", "ana@example.com", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("unexpected user id %q", claims.UserID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("unexpected email %q", claims.Email)
	}
	if claims.Role != "student" {
		t.Errorf("unexpected role %q", claims.Role)
	}
}

func TestJWTManager_RefreshTokenCarriesOnlyUserID(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	token, err := manager.GenerateRefreshToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("unexpected user id %q", claims.UserID)
	}
	if claims.Email != "" || claims.Role != "" {
		t.Errorf("refresh token must not carry email or role, got %q/%q", claims.Email, claims.Role)
	}
}

func TestJWTManager_RejectsForgedToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	other := NewJWTManager("other-secret", time.Hour, 24*time.Hour)

	token, err := other.GenerateToken("user-1", "ana@example.com", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("expected validation to fail for a foreign signature")
	}

	if _, err := manager.ValidateToken("not-a-token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, 24*time.Hour)

	token, err := manager.GenerateToken("user-1", "ana@example.com", "student")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("expected validation to fail for an expired token")
	}
}
