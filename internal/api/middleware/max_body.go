package middleware

import (
	"net/http"

	"github.com/clausewise/counselai/internal/api"
)

// MaxBodyBytes caps request body size. Document ingestion carries the only
// large payloads and its text is truncated downstream anyway; a body past
// the cap is a misbehaving client. Declared oversize requests get 413 up
// front, undeclared ones hit MaxBytesReader mid-read.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				if r.ContentLength > limit {
					api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
