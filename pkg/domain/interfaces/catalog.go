package interfaces

import (
	"context"

	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
)

// CatalogClient defines the operations consumed from the remote actions catalog
type CatalogClient interface {
	// ListActions returns every action currently stored in the catalog
	ListActions(ctx context.Context) ([]*model.ActionEntry, error)

	// UpsertAction creates or updates a single action
	UpsertAction(ctx context.Context, action *model.ActionEntry) (*model.UpsertResult, error)
}

// ActionRepository stores actions behind the local catalog server
type ActionRepository interface {
	List(ctx context.Context) ([]*model.ActionEntry, error)
	Get(ctx context.Context, key types.ActionKey) (*model.ActionEntry, error)
	Put(ctx context.Context, action *model.ActionEntry) error
	Count(ctx context.Context) (int, error)
}
