package errutil

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err and forwards it to Sentry when a Sentry client is configured
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	ctxlog.From(ctx).Error(msg, slog.Any("error", err))

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if gErr := goerr.Unwrap(err); gErr != nil {
			scope.SetContext("values", sentry.Context(gErr.Values()))
		}
		evID := hub.CaptureException(err)
		if evID != nil {
			ctxlog.From(ctx).Debug("Sent error to Sentry", slog.Any("event_id", *evID))
		}
	})
}
