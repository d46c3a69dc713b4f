package http

import (
	stdhttp "net/http"
)

// HealthHandler reports liveness; it never touches storage.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeJSON(w, stdhttp.StatusOK, map[string]string{"status": "ok"})
}
