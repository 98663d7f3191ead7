package middleware

import (
	"net/http"
	"strings"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/rs/zerolog"
)

const (
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "csrf_token"
)

// CSRF rejects unsafe requests that do not carry a token issued for the
// current session, read from the X-CSRF-Token header or the csrf_token form
// field. It must run after SessionManager.Middleware.
func CSRF(svc *auth.CSRFService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(CSRFHeader)
			if token == "" && isForm(r) {
				if err := parseForm(r); err != nil {
					zerolog.Ctx(r.Context()).Warn().Err(err).Msg("unreadable form body")
					RespondBodyError(w, err)
					return
				}
				token = r.PostForm.Get(CSRFField)
			}
			if token == "" {
				RespondError(w, http.StatusForbidden, "The CSRF token is missing.")
				return
			}
			if err := svc.Validate(token, SessionID(r.Context())); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("csrf check failed")
				RespondError(w, http.StatusForbidden, "The CSRF token is invalid.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken issues a token for the request's session
func CSRFToken(svc *auth.CSRFService, r *http.Request) (string, error) {
	token, _, err := svc.Generate(SessionID(r.Context()))
	return token, err
}

// maxMultipartMemory matches net/http's default for FormValue.
const maxMultipartMemory = 32 << 20

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMultipartMemory)
	}
	return r.ParseForm()
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
