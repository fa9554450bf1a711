package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/utils/jsonutil"
)

type catalogUseCase struct {
	repo          interfaces.ActionRepository
	propertyLimit int

	// serializes read-modify-write of upserts
	mu sync.Mutex
}

// CatalogOption is a functional option for the catalog use case
type CatalogOption func(*catalogUseCase)

// WithPropertyLimit sets the maximum UTF-16 length of a single stored property
func WithPropertyLimit(n int) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.propertyLimit = n
	}
}

// NewCatalog creates a new instance of CatalogUseCase
func NewCatalog(repo interfaces.ActionRepository, opts ...CatalogOption) interfaces.CatalogUseCase {
	uc := &catalogUseCase{
		repo:          repo,
		propertyLimit: model.DefaultSizeWarnChars,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ListActions returns every stored action
func (uc *catalogUseCase) ListActions(ctx context.Context) ([]*model.ActionEntry, error) {
	actions, err := uc.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions from repository")
	}
	return actions, nil
}

// CountActions returns the number of stored actions
func (uc *catalogUseCase) CountActions(ctx context.Context) (int, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count actions in repository")
	}
	return n, nil
}

// UpsertAction stores action. Created is set for a new key, Updated when
// the stored content changed, neither when it is identical.
func (uc *catalogUseCase) UpsertAction(ctx context.Context, action *model.ActionEntry) (*model.UpsertResult, error) {
	if action == nil || !action.HasIdentity() {
		return nil, &model.APIError{
			Message:    "owner and name are required",
			Code:       model.ErrCodeValidation,
			StatusCode: 400,
		}
	}

	stored := action.Project()
	if err := uc.checkPropertySize(stored); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	existing, err := uc.repo.Get(ctx, stored.Key())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get action from repository", goerr.V("action", stored.Key()))
	}

	if existing != nil {
		same, err := sameContent(existing, stored)
		if err != nil {
			return nil, err
		}
		if same {
			return &model.UpsertResult{}, nil
		}
	}

	if err := uc.repo.Put(ctx, stored); err != nil {
		return nil, goerr.Wrap(err, "failed to put action to repository", goerr.V("action", stored.Key()))
	}

	return &model.UpsertResult{
		Created: existing == nil,
		Updated: existing != nil,
	}, nil
}

func (uc *catalogUseCase) checkPropertySize(action *model.ActionEntry) error {
	if uc.propertyLimit <= 0 {
		return nil
	}

	lens, err := jsonutil.PropertyLens(action)
	if err != nil {
		return goerr.Wrap(err, "failed to measure action properties", goerr.V("action", action.Key()))
	}

	names := make([]string, 0, len(lens))
	for name := range lens {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if lens[name] > uc.propertyLimit {
			return &model.APIError{
				Message:    fmt.Sprintf("property %s is %d characters, limit is %d", name, lens[name], uc.propertyLimit),
				Code:       model.ErrCodePropertyTooLarge,
				StatusCode: 413,
				Details: map[string]any{
					"property": name,
					"size":     lens[name],
					"limit":    uc.propertyLimit,
				},
			}
		}
	}

	return nil
}

func sameContent(a, b *model.ActionEntry) (bool, error) {
	x, err := json.Marshal(a)
	if err != nil {
		return false, goerr.Wrap(err, "failed to marshal stored action")
	}
	y, err := json.Marshal(b)
	if err != nil {
		return false, goerr.Wrap(err, "failed to marshal incoming action")
	}
	return bytes.Equal(x, y), nil
}
