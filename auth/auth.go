package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/docsum/models"
)

// User is an identity known to the service.
type User struct {
	ID    string
	Name  string
	Email string
	Image string
}

// Token holds the claims carried by a signed session token.
type Token struct {
	UserID string
	Name   string
	Email  string
	Image  string
}

type Session struct {
	User    User
	Expires time.Time
}

func (s Session) Model() models.Session {
	return models.Session{
		User: models.SessionUser{
			ID:    s.User.ID,
			Name:  s.User.Name,
			Email: s.User.Email,
			Image: s.User.Image,
		},
		Expires: s.Expires,
	}
}

// EnrichToken copies the stored user ID into the token when a user has just signed in.
func EnrichToken(t Token, u *User) Token {
	if u != nil {
		t.UserID = u.ID
	}
	return t
}

// ProjectSession copies the user ID from the token into the session.
func ProjectSession(s Session, t Token) Session {
	s.User.ID = t.UserID
	return s
}

func New(log *slog.Logger, sessions *Sessions, apiKeyToUserID map[string]string, next http.Handler) *Auth {
	return &Auth{
		Log:            log,
		Next:           next,
		Sessions:       sessions,
		APIKeyToUserID: apiKeyToUserID,
	}
}

// Auth attaches the caller's session to the request context. Requests without a valid
// session are passed through unchanged; handlers decide whether a session is required.
type Auth struct {
	Log            *slog.Logger
	Next           http.Handler
	Sessions       *Sessions
	APIKeyToUserID map[string]string
}

// LoadFromFile reads a JSON object of API keys to user IDs.
func LoadFromFile(name string) (apiKeyToUserID map[string]string, err error) {
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m := make(map[string]string)
	if err = json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

type sessionContextKey int

const sessionKey sessionContextKey = 0

func GetSession(r *http.Request) (s Session, ok bool) {
	s, ok = r.Context().Value(sessionKey).(Session)
	return
}

// GetUser returns the ID of the signed in user.
func GetUser(r *http.Request) (userID string, ok bool) {
	s, ok := GetSession(r)
	if !ok || s.User.ID == "" {
		return "", false
	}
	return s.User.ID, true
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func (a *Auth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s, ok := a.session(r); ok {
		r = r.WithContext(WithSession(r.Context(), s))
	}
	a.Next.ServeHTTP(w, r)
}

func (a *Auth) session(r *http.Request) (s Session, ok bool) {
	// An invalid or expired cookie falls through to the Authorization header.
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if s, ok = a.read(c.Value); ok {
			return s, true
		}
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if bearer == "" {
		return s, false
	}
	if userID, ok := a.APIKeyToUserID[bearer]; ok {
		return Session{User: User{ID: userID}}, true
	}
	return a.read(bearer)
}

func (a *Auth) read(raw string) (s Session, ok bool) {
	if a.Sessions == nil {
		return s, false
	}
	s, err := a.Sessions.Read(raw)
	if err != nil {
		a.Log.Debug("invalid session token", slog.Any("error", err))
		return s, false
	}
	return s, true
}
