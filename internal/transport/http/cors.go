package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
)

// CORS applies an origin allow-list. Preflights from unknown origins are
// rejected with a JSON 403.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	allowAll := slices.Contains(origins, "*")

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	allowed := c.Handler(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		if preflight && origin != "" && !allowAll && !slices.Contains(origins, origin) {
			writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
			return
		}
		allowed.ServeHTTP(w, r)
	})
}
