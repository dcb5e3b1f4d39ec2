package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Recovery returns middleware that converts handler panics into a 500 response.
// Event intake handlers drive long multi-step workflows; a panic in one must
// not take the listener down with it.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error(
						"handler panic",
						"method", r.Method,
						"uri", r.URL.RequestURI(),
						"panic", rec,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"status": "FAILED"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
