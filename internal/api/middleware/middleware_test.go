package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ============================================
// Request ID Tests
// ============================================

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "unknown", seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_Honoured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()

	RequestID(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Equal(t, "unknown", GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

// ============================================
// Logger and Recoverer Tests
// ============================================

func TestLogger_RecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	req.Header.Set(RequestIDHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/cart", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(len("short and stout")), entry["bytes"])
	assert.Equal(t, "warn", entry["level"])
}

func TestRecoverer_PanicBecomes500(t *testing.T) {
	var buf bytes.Buffer
	handler := Logger(zerolog.New(&buf))(Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.Contains(t, buf.String(), "recovered from panic")
}

// ============================================
// Body Limit Tests
// ============================================

func TestBodyLimit(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			RespondBodyError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("1234")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ============================================
// Session and CSRF Tests
// ============================================

const testSecret = "test-secret-key"

func newSessionStack(t *testing.T) (*SessionManager, *auth.CSRFService) {
	t.Helper()
	return NewSessionManager(testSecret, false), auth.NewCSRFService(testSecret, time.Hour)
}

// issue performs a GET that establishes a session and returns its cookie and
// a CSRF token bound to it.
func issue(t *testing.T, sessions *SessionManager, csrf *auth.CSRFService) (*http.Cookie, string) {
	t.Helper()
	var token string
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		token, err = CSRFToken(csrf, r)
		require.NoError(t, err)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[len(cookies)-1], token
}

func TestSession_StableID(t *testing.T) {
	sessions, _ := newSessionStack(t)
	var ids []string
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, SessionID(r.Context()))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1])
}

func TestSession_Flashes(t *testing.T) {
	sessions, _ := newSessionStack(t)
	add := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sessions.AddFlash(w, r, "warning", "Your cart is empty!"))
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	}))
	var got []Flash
	read := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = sessions.Flashes(w, r)
	}))

	rec := httptest.NewRecorder()
	add.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[len(cookies)-1])
	rec = httptest.NewRecorder()
	read.ServeHTTP(rec, req)

	assert.Equal(t, []Flash{{Category: "warning", Message: "Your cart is empty!"}}, got)

	// Flashes are consumed on read.
	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(rec.Result().Cookies()[len(rec.Result().Cookies())-1])
	read.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, got)
}

func TestCSRF_SafeMethodsPass(t *testing.T) {
	sessions, csrf := newSessionStack(t)
	handler := sessions.Middleware(CSRF(csrf)(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_HeaderToken(t *testing.T) {
	sessions, csrf := newSessionStack(t)
	cookie, token := issue(t, sessions, csrf)
	handler := sessions.Middleware(CSRF(csrf)(okHandler()))

	req := httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(`{"product_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CSRFHeader, token)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_FormToken(t *testing.T) {
	sessions, csrf := newSessionStack(t)
	cookie, token := issue(t, sessions, csrf)
	handler := sessions.Middleware(CSRF(csrf)(okHandler()))

	form := url.Values{CSRFField: {token}, "first_name": {"Ada"}}
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_OversizedFormIs413(t *testing.T) {
	sessions, csrf := newSessionStack(t)
	cookie, token := issue(t, sessions, csrf)
	handler := BodyLimit(64)(sessions.Middleware(CSRF(csrf)(okHandler())))

	form := url.Values{CSRFField: {token}, "address": {strings.Repeat("a", 512)}}
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.ContentLength = -1 // streamed, so only the reader enforces the limit
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", decodeError(t, rec)["message"])
}

func TestCSRF_MalformedFormIs400(t *testing.T) {
	sessions, csrf := newSessionStack(t)
	cookie, _ := issue(t, sessions, csrf)
	handler := sessions.Middleware(CSRF(csrf)(okHandler()))

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader("csrf_token=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCSRF_Missing(t *testing.T) {
	sessions, csrf := newSessionStack(t)
	handler := sessions.Middleware(CSRF(csrf)(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "The CSRF token is missing.", decodeError(t, rec)["message"])
}

func TestCSRF_TokenFromOtherSession(t *testing.T) {
	sessions, csrf := newSessionStack(t)
	_, token := issue(t, sessions, csrf)
	otherCookie, _ := issue(t, sessions, csrf)
	handler := sessions.Middleware(CSRF(csrf)(okHandler()))

	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	req.Header.Set(CSRFHeader, token)
	req.AddCookie(otherCookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "The CSRF token is invalid.", decodeError(t, rec)["message"])
}
