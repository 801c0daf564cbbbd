package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// defaultCORSOrigins are the dev servers of the MyCrew web client.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// CORS applies MYCREW_CORS_ALLOWED_ORIGINS. An empty list falls back to the
// local dev origins, and a "*" entry turns credentials off.
func CORS(allowed []string) func(http.Handler) http.Handler {
	origins := allowed
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-Id", "X-Requested-With"},
		// Content-Disposition carries the export file name on downloads.
		ExposedHeaders:   []string{"Content-Disposition", "Idempotent-Replayed", "X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}).Handler
}
