// internal/auth/session.go
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultCookieName is the session cookie set by the auth provider's browser client.
const DefaultCookieName = "sb-access-token"

var (
	// ErrNoSession means the request carried no token at all.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession covers bad signatures, expiry and malformed claims.
	ErrInvalidSession = errors.New("invalid session")
)

// UserMetadata is the provider's free-form profile block.
type UserMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Claims are the access token claims issued by the auth provider.
type Claims struct {
	Email        string       `json:"email,omitempty"`
	Role         string       `json:"role,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Session is the verified caller.
type Session struct {
	UserID    uuid.UUID
	Email     string
	FullName  string
	AvatarURL string
}

// Verifier checks HS256 access tokens against the provider's shared secret.
type Verifier struct {
	secret     []byte
	cookieName string
	now        func() time.Time
}

func NewVerifier(secret, cookieName string) *Verifier {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Verifier{secret: []byte(secret), cookieName: cookieName, now: time.Now}
}

// FromRequest pulls the token from the Authorization header, else the session cookie.
func (v *Verifier) FromRequest(r *http.Request) (*Session, error) {
	token := ""
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, rest, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(rest)
		}
	}
	if token == "" {
		if c, err := r.Cookie(v.cookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return nil, ErrNoSession
	}
	return v.Verify(token)
}

// Verify parses tokenString and returns the session it names.
func (v *Verifier) Verify(tokenString string) (*Session, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !t.Valid {
		return nil, ErrInvalidSession
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sub", ErrInvalidSession)
	}
	return &Session{
		UserID:    id,
		Email:     claims.Email,
		FullName:  claims.UserMetadata.FullName,
		AvatarURL: claims.UserMetadata.AvatarURL,
	}, nil
}

// Sign mints a token the way the provider does. Used by tests and local tooling.
func Sign(secret string, s Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:        s.Email,
		Role:         "authenticated",
		UserMetadata: UserMetadata{FullName: s.FullName, AvatarURL: s.AvatarURL},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  s.UserID.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
