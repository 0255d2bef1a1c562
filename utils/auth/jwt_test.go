package auth

import (
	"testing"
	"time"
)

func newTestManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: "test-secret-key",
		Expiry: expiry,
		Issuer: "learnnest-api-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, err := manager.GenerateToken(42, "admin@example.com", "institution_admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != "institution_admin" {
		t.Errorf("expected role institution_admin, got %s", claims.Role)
	}
	if claims.Subject != "admin@example.com" {
		t.Errorf("expected subject admin@example.com, got %s", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("expected a token id in the claims")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := newTestManager(time.Hour)
	other := NewJWTManager(JWTConfig{
		Secret: "another-secret",
		Expiry: time.Hour,
		Issuer: "learnnest-api-test",
	})

	token, err := manager.GenerateToken(1, "admin@example.com", "superadmin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	manager := newTestManager(-time.Minute)

	token, err := manager.GenerateToken(1, "admin@example.com", "superadmin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := manager.ValidateToken(token); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	if _, err := manager.ValidateToken("not-a-token"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	manager := newTestManager(time.Hour)

	token1, err := manager.GenerateToken(1, "a@example.com", "superadmin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	token2, err := manager.GenerateToken(1, "a@example.com", "superadmin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims1, err := manager.ValidateToken(token1)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	claims2, err := manager.ValidateToken(token2)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims1.ID == claims2.ID {
		t.Error("expected distinct token ids for separate sessions")
	}
}
