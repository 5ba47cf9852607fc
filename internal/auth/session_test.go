package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func TestVerify_RoundTrip(t *testing.T) {
	s := Session{UserID: uuid.New(), Email: "lebron@example.com", FullName: "LeBron", AvatarURL: "https://cdn/x.png"}
	tok, err := Sign(testSecret, s, time.Hour)
	require.NoError(t, err)

	got, err := NewVerifier(testSecret, "").Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, s, *got)
}

func TestVerify_Rejects(t *testing.T) {
	id := uuid.New()
	good, err := Sign(testSecret, Session{UserID: id}, time.Hour)
	require.NoError(t, err)
	wrongKey, err := Sign("another-secret", Session{UserID: id}, time.Hour)
	require.NoError(t, err)
	expired, err := Sign(testSecret, Session{UserID: id}, -time.Minute)
	require.NoError(t, err)
	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "not-a-uuid"}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": id.String()}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	v := NewVerifier(testSecret, "")
	_, err = v.Verify(good)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong key": wrongKey,
		"expired":   expired,
		"bad sub":   badSub,
		"alg hs512": hs512,
		"garbage":   "abc.def.ghi",
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestFromRequest(t *testing.T) {
	id := uuid.New()
	tok, err := Sign(testSecret, Session{UserID: id}, time.Hour)
	require.NoError(t, err)
	v := NewVerifier(testSecret, "session")

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+tok)
		s, err := v.FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, id, s.UserID)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: tok})
		s, err := v.FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, id, s.UserID)
	})

	t.Run("nothing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := v.FromRequest(r)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		_, err := v.FromRequest(r)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Session{UserID: uuid.New()}
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
