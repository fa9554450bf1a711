package http

import (
	"net/http"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
)

// HealthHandler reports the service status and the number of stored actions
type HealthHandler struct {
	countUC interfaces.CountUseCase
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(countUC interfaces.CountUseCase) *HealthHandler {
	return &HealthHandler{countUC: countUC}
}

// Handle handles health check requests
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: "actsync",
		Version: types.Version,
	}

	n, err := h.countUC.CountActions(r.Context())
	if err != nil {
		ctxlog.From(r.Context()).Error("Failed to count actions", "error", err)
		status.Status = "unhealthy"
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	status.Actions = n

	writeJSON(w, r, http.StatusOK, status)
}
