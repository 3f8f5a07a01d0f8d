package http

import (
	"net/http"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
	"github.com/suhastanajipatil1735-oss/super-management/pkg/httpx"
)

// ReadyzHandler reports degraded with a 503 when the database is down.
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		database := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			database = "error: " + err.Error()
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:   status,
			Database: database,
		})
	}
}
