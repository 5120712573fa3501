package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

type importResponse struct {
	Status string `json:"status"`
}

// Import triggers a manual run of the bookmark importer
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ImportTrigger == nil {
			writeMessage(w, http.StatusNotFound, "importer disabled")
			return
		}

		select {
		case d.ImportTrigger <- struct{}{}:
			d.Logger.Info("manual import triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, importResponse{Status: "triggered"})
		default:
			d.Logger.Warn("import already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, importResponse{Status: "pending"})
		}
	}
}
