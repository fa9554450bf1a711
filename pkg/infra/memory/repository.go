package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
)

type repository struct {
	mu      sync.RWMutex
	keys    []types.ActionKey
	actions map[types.ActionKey]*model.ActionEntry
}

// New creates an ActionRepository kept in memory. Actions are listed in
// insertion order.
func New() interfaces.ActionRepository {
	return &repository{
		actions: make(map[types.ActionKey]*model.ActionEntry),
	}
}

func (r *repository) List(ctx context.Context) ([]*model.ActionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]*model.ActionEntry, 0, len(r.keys))
	for _, key := range r.keys {
		actions = append(actions, r.actions[key].Project())
	}
	return actions, nil
}

func (r *repository) Get(ctx context.Context, key types.ActionKey) (*model.ActionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, ok := r.actions[key]
	if !ok {
		return nil, nil
	}
	return action.Project(), nil
}

func (r *repository) Put(ctx context.Context, action *model.ActionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := action.Key()
	if _, ok := r.actions[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.actions[key] = action.Project()
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys), nil
}
