package interfaces

import (
	"context"

	"github.com/m-mizutani/actsync/pkg/domain/model"
)

// SyncUseCase uploads candidate actions to the catalog
type SyncUseCase interface {
	// Sync processes candidates in order and reports one result per processed action
	Sync(ctx context.Context, candidates []*model.ActionEntry) *model.SyncReport
}

// CountUseCase counts actions stored in the catalog
type CountUseCase interface {
	CountActions(ctx context.Context) (int, error)
}

// CatalogUseCase serves the catalog API on top of an ActionRepository.
// It satisfies CatalogClient so a sync can run against a local store.
type CatalogUseCase interface {
	CatalogClient
	CountUseCase
}
