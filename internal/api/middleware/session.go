package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	SessionName  = "storefront_session"
	sessionIDKey = "sid"
)

// Flash is a one-shot notice shown on the next page render
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// SessionManager keeps a signed cookie session per browser. It carries the
// session id CSRF tokens are bound to and the pending flash notices.
type SessionManager struct {
	store sessions.Store
}

func NewSessionManager(secret string, secure bool) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Middleware loads the session, assigning an id to new ones, and stores it
// in the request context for the handlers below.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, SessionName)
		if err != nil {
			// Undecodable cookie; Get still returned a fresh session.
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("discarding invalid session cookie")
		}
		if _, ok := session.Values[sessionIDKey].(string); !ok {
			session.Values[sessionIDKey] = uuid.New().String()
			if err := session.Save(r, w); err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to save session")
			}
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID returns the current session id, empty outside the middleware
func SessionID(ctx context.Context) string {
	session, ok := ctx.Value(sessionKey).(*sessions.Session)
	if !ok {
		return ""
	}
	id, _ := session.Values[sessionIDKey].(string)
	return id
}

// AddFlash queues a notice for the next render. It must be called before
// the response is written.
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	session, ok := r.Context().Value(sessionKey).(*sessions.Session)
	if !ok {
		return nil
	}
	session.AddFlash(Flash{Category: category, Message: message})
	return session.Save(r, w)
}

// Flashes pops the queued notices.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, ok := r.Context().Value(sessionKey).(*sessions.Session)
	if !ok {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to save session")
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}
