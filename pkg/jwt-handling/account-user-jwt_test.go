package jwthandling

import (
	"testing"
	"time"
)

func TestAccountUserTokenRoundTrip(t *testing.T) {
	token, err := GenerateNewAccountUserToken(time.Minute, "65a1b2c3d4e5f60718293a4b", "librarian", "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, valid, err := ValidateAccountUserToken(token, "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Fatal("expected token to be valid")
	}
	if claims.Subject != "65a1b2c3d4e5f60718293a4b" {
		t.Errorf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != "librarian" {
		t.Errorf("unexpected role: %s", claims.Role)
	}
}

func TestAccountUserTokenWrongKey(t *testing.T) {
	token, err := GenerateNewAccountUserToken(time.Minute, "id", "admin", "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, valid, err := ValidateAccountUserToken(token, "other-key")
	if err == nil && valid {
		t.Error("expected validation to fail with wrong key")
	}
}

func TestAccountUserTokenExpired(t *testing.T) {
	token, err := GenerateNewAccountUserToken(-time.Minute, "id", "admin", "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, valid, err := ValidateAccountUserToken(token, "test-sign-key")
	if valid || err == nil {
		t.Error("expected expired token to be rejected")
	}
}
