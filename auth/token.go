package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// CookieName is the name of the cookie that holds the session token.
const CookieName = "session"

const (
	Issuer        = "docsum"
	DefaultMaxAge = 30 * 24 * time.Hour
	// MinSecretLength is the minimum HS256 key size, in bytes.
	MinSecretLength = 32
)

var ErrSecretTooShort = fmt.Errorf("auth: session secret must be at least %d bytes", MinSecretLength)

type claims struct {
	jwt.Claims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"picture,omitempty"`
}

func NewSessions(secret []byte, maxAge time.Duration) (*Sessions, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return nil, fmt.Errorf("auth: failed to create signer: %w", err)
	}
	return &Sessions{
		key:    secret,
		signer: signer,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

// Sessions issues and verifies signed session tokens.
type Sessions struct {
	key    []byte
	signer jose.Signer
	maxAge time.Duration
	now    func() time.Time
}

func (s *Sessions) MaxAge() time.Duration {
	return s.maxAge
}

// Issue signs the token. The returned time is when the token expires.
func (s *Sessions) Issue(t Token) (raw string, expires time.Time, err error) {
	if t.UserID == "" {
		return "", expires, errors.New("auth: token has no user ID")
	}
	now := s.now()
	expires = now.Add(s.maxAge)
	c := claims{
		Claims: jwt.Claims{
			Issuer:    Issuer,
			Subject:   t.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Expiry:    jwt.NewNumericDate(expires),
		},
		Name:  t.Name,
		Email: t.Email,
		Image: t.Image,
	}
	raw, err = jwt.Signed(s.signer).Claims(c).Serialize()
	if err != nil {
		return "", expires, fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return raw, expires, nil
}

// Read verifies a token and returns the session it represents.
func (s *Sessions) Read(raw string) (session Session, err error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return session, fmt.Errorf("auth: failed to parse token: %w", err)
	}
	var c claims
	if err = tok.Claims(s.key, &c); err != nil {
		return session, fmt.Errorf("auth: invalid token signature: %w", err)
	}
	if err = c.Claims.ValidateWithLeeway(jwt.Expected{Issuer: Issuer, Time: s.now()}, time.Minute); err != nil {
		return session, fmt.Errorf("auth: invalid token: %w", err)
	}
	if c.Subject == "" || c.Expiry == nil {
		return session, errors.New("auth: token is missing required claims")
	}
	t := Token{UserID: c.Subject, Name: c.Name, Email: c.Email, Image: c.Image}
	session = Session{
		User:    User{Name: t.Name, Email: t.Email, Image: t.Image},
		Expires: c.Expiry.Time().UTC(),
	}
	return ProjectSession(session, t), nil
}

// Cookie returns a session cookie holding the raw token.
func (s *Sessions) Cookie(raw string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    raw,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that removes the session cookie.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
