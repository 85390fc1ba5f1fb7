package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/user/log-triage/internal/domain"
)

const defaultClusterLimit = 50

// ClustersHandler serves stored cluster rollups for diagnostic consumers.
type ClustersHandler struct {
	store  domain.TriageStore
	logger *slog.Logger
}

// NewClustersHandler creates a new ClustersHandler.
func NewClustersHandler(store domain.TriageStore, logger *slog.Logger) *ClustersHandler {
	return &ClustersHandler{store: store, logger: logger}
}

// ServeHTTP responds with the cluster list ordered by occurrence count,
// honoring an optional ?limit= query parameter.
func (h *ClustersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultClusterLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	clusters, err := h.store.ListClusters(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list clusters", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(clusters); err != nil {
		h.logger.Error("failed to encode cluster list", "error", err)
	}
}
