package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
)

type correlationIDKey struct{}

// CorrelationIDMiddleware reuses the caller's correlation id or assigns a new
// one, and echoes it in the response header
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(types.CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(types.CorrelationIDHeader, id)

		ctx := context.WithValue(r.Context(), correlationIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationID returns the correlation id of the request
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// LoggingMiddleware returns a middleware that logs HTTP requests
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := ctxlog.From(ctx).With("correlation_id", CorrelationID(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctxlog.With(r.Context(), logger)))
		})
	}
}

// FunctionKeyMiddleware rejects requests without the expected function key.
// An empty key disables the check.
func FunctionKeyMiddleware(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" {
				got := r.Header.Get(types.FunctionKeyHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
					ctxlog.From(r.Context()).Warn("Invalid function key")
					writeError(w, r, &model.APIError{
						Message:    "invalid function key",
						Code:       model.ErrCodeUnauthorized,
						StatusCode: http.StatusUnauthorized,
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an error response. APIError keeps its status code,
// anything else is reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		ctxlog.From(r.Context()).Error("Internal error", "error", err)
		apiErr = &model.APIError{
			Message:    "internal error",
			Code:       model.ErrCodeInternal,
			StatusCode: http.StatusInternalServerError,
		}
	}

	status := apiErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]any{
		"error":         apiErr.Message,
		"code":          apiErr.Code,
		"correlationId": CorrelationID(r.Context()),
		"details":       apiErr.Details,
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode error response", "error", err)
	}
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}
