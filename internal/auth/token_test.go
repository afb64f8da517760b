package auth

import (
	"errors"
	"testing"
	"time"

	"outlay/internal/core"
)

func TestNewTokenManager(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewTokenManager("secret", 0); err == nil {
		t.Error("expected error for zero ttl")
	}

	m, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.TTL() != time.Hour {
		t.Errorf("TTL() = %v, want 1h", m.TTL())
	}
}

func TestIssueAndValidate(t *testing.T) {
	m, err := NewTokenManager("test-secret-key", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, expiresAt, err := m.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	wantExpiry := time.Now().Add(time.Hour)
	if expiresAt.Before(wantExpiry.Add(-time.Minute)) || expiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry %v not within expected range of %v", expiresAt, wantExpiry)
	}

	subject, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if subject != "alice@example.com" {
		t.Errorf("subject = %q, want alice@example.com", subject)
	}
}

func TestValidate_Expired(t *testing.T) {
	m, err := NewTokenManager("test-secret-key", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	token, _, err := m.Issue("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := m.Validate(token); !errors.Is(err, core.ErrInvalidToken) {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestValidate_WrongKey(t *testing.T) {
	m1, _ := NewTokenManager("secret-key-1", time.Hour)
	m2, _ := NewTokenManager("secret-key-2", time.Hour)

	token, _, err := m1.Issue("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m2.Validate(token); !errors.Is(err, core.ErrInvalidToken) {
		t.Errorf("wrong key: got %v, want ErrInvalidToken", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	m, _ := NewTokenManager("test-secret-key", time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Validate(input); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidToken", input, err)
		}
	}
}
