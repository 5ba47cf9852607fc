package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/jason-s-yu/anima/internal/auth"
	"github.com/jason-s-yu/anima/internal/models"
	log "github.com/sirupsen/logrus"
)

const cronSecretHeader = "X-Cron-Secret"

// RequireSession rejects requests without a valid access token with 401.
func RequireSession(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := v.FromRequest(r)
			if err != nil {
				if !errors.Is(err, auth.ErrNoSession) {
					log.WithError(err).Debug("rejected session")
				}
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
		})
	}
}

// RequireAdmin admits the scheduler by shared secret, otherwise a session whose profile
// role is admin. The role is re-read on every request.
func RequireAdmin(v *auth.Verifier, roles RoleStore, cronSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cronAuthorized(r, cronSecret) {
				next.ServeHTTP(w, r)
				return
			}

			s, err := v.FromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
				return
			}
			role, err := roles.GetUserRole(r.Context(), s.UserID)
			switch {
			case errors.Is(err, models.ErrNotFound):
				writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
				return
			case err != nil:
				writeInternal(w, r, codeInternal, err)
				return
			case role != models.RoleAdmin:
				writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
		})
	}
}

func cronAuthorized(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	got := strings.TrimSpace(r.Header.Get(cronSecretHeader))
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

// mustSession returns the session placed by RequireSession.
func mustSession(r *http.Request) *auth.Session {
	s, ok := auth.FromContext(r.Context())
	if !ok {
		panic("handlers: session route mounted without RequireSession")
	}
	return s
}

// profileSeed is the row inserted the first time a session is seen.
func profileSeed(s *auth.Session) models.User {
	name := s.FullName
	if name == "" {
		name, _, _ = strings.Cut(s.Email, "@")
	}
	return models.User{
		ID:        s.UserID,
		Email:     s.Email,
		FullName:  name,
		Role:      models.RoleUser,
		AvatarURL: s.AvatarURL,
	}
}
