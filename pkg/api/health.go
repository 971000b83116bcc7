package api

import (
	"log/slog"
	"net/http"

	"github.com/dskvich/study-bot-api/pkg/logger"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health always answers 200; the database field reports reachability.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Database: "up"}
		if err := db.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "Database is unreachable", logger.Err(err))
			resp.Database = "down"
		}

		writeJSON(w, r, http.StatusOK, resp)
	}
}
