package api

import (
	"log/slog"
	"net/http"

	"github.com/seblin/curpy/internal/rates"
)

// RefreshResponse is the response structure for the refresh endpoint.
type RefreshResponse struct {
	Status      string `json:"status"`
	PublishedOn string `json:"published_on,omitempty"`
	Currencies  int    `json:"currencies,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RegisterRefreshHandler exposes POST /refresh, which re-runs the staleness
// check and fetches when the cache is out of date.
func RegisterRefreshHandler(mux *http.ServeMux, svc *rates.Service, logger *slog.Logger) {
	mux.HandleFunc("/refresh", instrument("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap, err := svc.Refresh(r.Context())
		if err != nil {
			logger.Error("refresh failed", "request_id", RequestID(r.Context()), "error", err)
			writeJSON(w, http.StatusServiceUnavailable, RefreshResponse{Status: "error", Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, RefreshResponse{
			Status:      "ok",
			PublishedOn: snap.PublishedOn.Format(rates.DateLayout),
			Currencies:  len(snap.Rates),
		})
	}))
}
