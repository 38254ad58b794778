// Package requesttime pins one "now" per request so tokens issued during a
// request share the same timestamps.
package requesttime

import (
	"net/http"
	"time"

	"familytree/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
