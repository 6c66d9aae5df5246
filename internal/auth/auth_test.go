package auth

import (
	"testing"
	"time"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	token, err := MakeToken(42, "secret", time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	userID, err := NewVerifier("secret").ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := MakeToken(42, "secret", time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	if _, err := NewVerifier("other").ValidateToken(token); err == nil {
		t.Fatalf("expected wrong-secret token to be rejected")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := MakeToken(42, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	if _, err := NewVerifier("secret").ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := NewVerifier("secret").ValidateToken("not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}
