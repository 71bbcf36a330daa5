package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/respond"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	stateCookieName   = "oauth_state"
)

// UserStore persists users that sign in.
type UserStore interface {
	UserPut(ctx context.Context, email, name, image string) (id string, err error)
}

func NewGoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func NewGoogle(log *slog.Logger, config *oauth2.Config, sessions *Sessions, users UserStore) *Google {
	return &Google{
		Log:         log,
		Config:      config,
		Sessions:    sessions,
		Users:       users,
		UserInfoURL: GoogleUserInfoURL,
	}
}

// Google signs users in with their Google account.
type Google struct {
	Log         *slog.Logger
	Config      *oauth2.Config
	Sessions    *Sessions
	Users       UserStore
	UserInfoURL string
	// Secure marks cookies as HTTPS only.
	Secure bool
}

func (g *Google) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/signin", g.SignIn)
	mux.HandleFunc("GET /auth/callback", g.Callback)
	mux.HandleFunc("POST /auth/signout", g.SignOut)
	mux.HandleFunc("GET /auth/session", g.Session)
}

func (g *Google) SignIn(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, g.Config.AuthCodeURL(state), http.StatusFound)
}

type googleUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *Google) Callback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookieName)
	if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
		respond.WithError(w, "invalid sign in state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/auth", MaxAge: -1})

	if e := r.URL.Query().Get("error"); e != "" {
		g.Log.Warn("sign in was not completed", slog.String("error", e))
		respond.WithError(w, "sign in was not completed", http.StatusUnauthorized)
		return
	}

	tok, err := g.Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		g.Log.Error("failed to exchange code", slog.Any("error", err))
		respond.WithError(w, "failed to exchange code", http.StatusInternalServerError)
		return
	}

	gu, err := g.userInfo(r.Context(), tok)
	if err != nil {
		g.Log.Error("failed to get user info", slog.Any("error", err))
		respond.WithError(w, "failed to get user info", http.StatusInternalServerError)
		return
	}
	if gu.Email == "" {
		respond.WithError(w, "account has no email address", http.StatusBadRequest)
		return
	}

	id, err := g.Users.UserPut(r.Context(), gu.Email, gu.Name, gu.Picture)
	if err != nil {
		g.Log.Error("failed to store user", slog.Any("error", err))
		respond.WithError(w, "failed to store user", http.StatusInternalServerError)
		return
	}
	user := &User{ID: id, Name: gu.Name, Email: gu.Email, Image: gu.Picture}
	t := EnrichToken(Token{Name: gu.Name, Email: gu.Email, Image: gu.Picture}, user)

	raw, expires, err := g.Sessions.Issue(t)
	if err != nil {
		g.Log.Error("failed to issue session", slog.Any("error", err))
		respond.WithError(w, "failed to issue session", http.StatusInternalServerError)
		return
	}
	g.Log.Info("user signed in", slog.String("userId", id))
	http.SetCookie(w, g.Sessions.Cookie(raw, expires, g.Secure))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (g *Google) userInfo(ctx context.Context, tok *oauth2.Token) (u googleUser, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return u, err
	}
	resp, err := g.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return u, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return u, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	err = json.NewDecoder(resp.Body).Decode(&u)
	return u, err
}

func (g *Google) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, ClearCookie(g.Secure))
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the current session, or an empty object if there isn't one.
func (g *Google) Session(w http.ResponseWriter, r *http.Request) {
	s, ok := GetSession(r)
	if !ok {
		respond.WithJSON(w, struct{}{}, http.StatusOK)
		return
	}
	respond.WithJSON(w, s.Model(), http.StatusOK)
}
