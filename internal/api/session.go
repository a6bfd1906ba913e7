package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/scoutchat/scout/internal/log"
	"github.com/scoutchat/scout/internal/session"
)

// Cookie configuration.
const (
	sessionCookieName = "sid"
	cookieMaxAge      = 30 * 24 * 3600 // 30 days in seconds
)

// sessionFromContext retrieves the provisioned session from the request
// context. Handlers behind sessionMiddleware can rely on it being present.
func sessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(*session.Session)
	return s, ok
}

// sessionProvisioner resolves the sid cookie to a live session,
// auto-creating one on first visit or after eviction.
type sessionProvisioner struct {
	manager *session.Manager
	isDev   bool
	logger  log.Logger
}

// resolve returns the request's session, creating it if needed.
// Sets the sid cookie when a new session is provisioned.
func (sp *sessionProvisioner) resolve(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			if s, err := sp.manager.Get(id); err == nil {
				return s, nil
			}
			// Evicted or unknown - fall through and provision a fresh one.
		}
	}

	s, err := sp.manager.Create()
	if err != nil {
		return nil, err
	}
	sp.setCookie(w, s.ID)
	return s, nil
}

// setCookie writes the sid cookie.
// SameSite=Strict plus HttpOnly is the CSRF posture for this cookie-scoped
// JSON API: cross-site requests never carry the session.
func (sp *sessionProvisioner) setCookie(w http.ResponseWriter, id uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   !sp.isDev,
		SameSite: http.SameSiteStrictMode,
	})
}

// sessionMiddleware provisions the session and adds it to the request
// context.
func sessionMiddleware(sp *sessionProvisioner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sp.resolve(w, r)
			if err != nil {
				sp.logger.Error("provisioning session", "error", err)
				writeError(w, http.StatusInternalServerError, "session_error", "could not provision session")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
