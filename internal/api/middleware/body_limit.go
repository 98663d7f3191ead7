package middleware

import (
	"errors"
	"net/http"
)

// BodyLimit caps request bodies at limit bytes
func BodyLimit(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				RespondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// RespondBodyError answers a failed body read: 413 when BodyLimit cut the
// body off, 400 otherwise.
func RespondBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	RespondError(w, http.StatusBadRequest, "Malformed request body")
}
