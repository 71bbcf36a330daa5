package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/go-cmp/cmp"
)

func TestNewSessions(t *testing.T) {
	t.Run("short secrets are rejected", func(t *testing.T) {
		_, err := NewSessions([]byte("too short"), time.Hour)
		if !errors.Is(err, ErrSecretTooShort) {
			t.Errorf("expected ErrSecretTooShort, got %v", err)
		}
	})
	t.Run("the max age defaults to 30 days", func(t *testing.T) {
		s, err := NewSessions(testSecret, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.MaxAge() != DefaultMaxAge {
			t.Errorf("expected %v, got %v", DefaultMaxAge, s.MaxAge())
		}
	})
}

func TestSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSessions(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to create sessions: %v", err)
	}
	s.now = func() time.Time { return now }

	raw, expires, err := s.Issue(Token{UserID: "user-1", Name: "Alice", Email: "alice@example.com", Image: "https://example.com/a.png"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Errorf("expected expiry %v, got %v", now.Add(time.Hour), expires)
	}

	t.Run("issued tokens can be read", func(t *testing.T) {
		actual, err := s.Read(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := Session{
			User: User{
				ID:    "user-1",
				Name:  "Alice",
				Email: "alice@example.com",
				Image: "https://example.com/a.png",
			},
			Expires: now.Add(time.Hour),
		}
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("expired tokens are rejected", func(t *testing.T) {
		later, err := NewSessions(testSecret, time.Hour)
		if err != nil {
			t.Fatalf("failed to create sessions: %v", err)
		}
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err = later.Read(raw)
		if !errors.Is(err, jwt.ErrExpired) {
			t.Errorf("expected jwt.ErrExpired, got %v", err)
		}
	})
	t.Run("tokens signed with another secret are rejected", func(t *testing.T) {
		other, err := NewSessions([]byte("abcdef0123456789abcdef0123456789"), time.Hour)
		if err != nil {
			t.Fatalf("failed to create sessions: %v", err)
		}
		other.now = s.now
		if _, err = other.Read(raw); err == nil {
			t.Error("expected an error, got nil")
		}
	})
	t.Run("garbage is rejected", func(t *testing.T) {
		if _, err := s.Read("not-a-token"); err == nil {
			t.Error("expected an error, got nil")
		}
	})
	t.Run("tokens must have a user", func(t *testing.T) {
		if _, _, err := s.Issue(Token{Name: "Nobody"}); err == nil {
			t.Error("expected an error, got nil")
		}
	})
}
