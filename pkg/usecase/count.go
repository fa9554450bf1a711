package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
)

type countUseCase struct {
	client interfaces.CatalogClient
}

// NewCount creates a new instance of CountUseCase
func NewCount(client interfaces.CatalogClient) interfaces.CountUseCase {
	return &countUseCase{
		client: client,
	}
}

// CountActions returns the number of actions in the catalog. Unlike a sync
// run, a failed listing is returned to the caller.
func (uc *countUseCase) CountActions(ctx context.Context) (int, error) {
	actions, err := uc.client.ListActions(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list actions")
	}

	ctxlog.From(ctx).Info("Retrieved actions list", slog.Int("count", len(actions)))
	return len(actions), nil
}
