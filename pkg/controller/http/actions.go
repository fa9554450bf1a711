package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
	"github.com/m-mizutani/actsync/pkg/domain/model"
)

// maxUpsertBody bounds the request body of a single upsert
const maxUpsertBody = 4 << 20

// ActionsHandler serves the catalog API
type ActionsHandler struct {
	catalogUC interfaces.CatalogClient
}

// NewActionsHandler creates a new ActionsHandler
func NewActionsHandler(catalogUC interfaces.CatalogClient) *ActionsHandler {
	return &ActionsHandler{
		catalogUC: catalogUC,
	}
}

// List returns every action as a JSON array
func (h *ActionsHandler) List(w http.ResponseWriter, r *http.Request) {
	actions, err := h.catalogUC.ListActions(r.Context())
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to list actions"))
		return
	}
	if actions == nil {
		actions = []*model.ActionEntry{}
	}

	writeJSON(w, r, http.StatusOK, actions)
}

// Upsert creates or updates the action in the request body
func (h *ActionsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpsertBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Upsert payload too large", "limit", tooLarge.Limit)
			writeError(w, r, &model.APIError{
				Message:    fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Code:       model.ErrCodePropertyTooLarge,
				StatusCode: http.StatusRequestEntityTooLarge,
				Details:    map[string]any{"limit": tooLarge.Limit},
			})
			return
		}

		logger.Error("Failed to read request body", "error", err)
		writeError(w, r, &model.APIError{
			Message:    "failed to read request body",
			Code:       model.ErrCodeInvalidPayload,
			StatusCode: http.StatusBadRequest,
		})
		return
	}
	defer r.Body.Close()

	var action model.ActionEntry
	if err := json.Unmarshal(body, &action); err != nil {
		logger.Warn("Invalid upsert payload", "error", err)
		writeError(w, r, &model.APIError{
			Message:    "invalid JSON payload",
			Code:       model.ErrCodeInvalidPayload,
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	result, err := h.catalogUC.UpsertAction(ctx, &action)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("Upserted action",
		"action", action.Key(),
		"created", result.Created,
		"updated", result.Updated,
	)

	writeJSON(w, r, http.StatusOK, result)
}
