package utils

import (
	"testing"
	"time"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := "super-secret"
	userID := "b2f0d8f6-0000-0000-0000-000000000001"

	tok, err := NewSessionToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken error: %v", err)
	}
	if tok.Exp.Before(time.Now().UTC()) {
		t.Fatalf("expiry %v already in the past", tok.Exp)
	}

	got, err := ParseSessionToken(secret, tok.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken error: %v", err)
	}
	if got != userID {
		t.Fatalf("userID mismatch: got %q want %q", got, userID)
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := NewSessionToken("secret", "u1", -time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken error: %v", err)
	}

	_, err = ParseSessionToken("secret", tok.Token)
	if err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewSessionToken("right-secret", "u2", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken error: %v", err)
	}

	_, err = ParseSessionToken("wrong-secret", tok.Token)
	if err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseSessionToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseSessionToken("k", "not.a.jwt")
	if err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
