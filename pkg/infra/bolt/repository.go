package bolt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.etcd.io/bbolt"

	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/domain/types"
)

const actionsBucketName = "actions"

// Repository is an ActionRepository backed by a bbolt file. Keys are
// owner/name, values are the action serialized as JSON.
type Repository struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt file at path
func Open(path string) (*Repository, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bbolt database", goerr.V("path", path))
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(actionsBucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create actions bucket", goerr.V("path", path))
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close bbolt database")
	}
	return nil
}

// List returns every action ordered by key
func (r *Repository) List(ctx context.Context) ([]*model.ActionEntry, error) {
	var actions []*model.ActionEntry

	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(actionsBucketName)).ForEach(func(k, v []byte) error {
			var action model.ActionEntry
			if err := json.Unmarshal(v, &action); err != nil {
				return goerr.Wrap(err, "failed to unmarshal stored action", goerr.V("key", string(k)))
			}
			actions = append(actions, &action)
			return nil
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions")
	}

	return actions, nil
}

// Get returns the action stored under key, or nil when there is none
func (r *Repository) Get(ctx context.Context, key types.ActionKey) (*model.ActionEntry, error) {
	var action *model.ActionEntry

	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(actionsBucketName)).Get([]byte(key))
		if data == nil {
			return nil
		}

		action = &model.ActionEntry{}
		if err := json.Unmarshal(data, action); err != nil {
			return goerr.Wrap(err, "failed to unmarshal stored action")
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("key", key))
	}

	return action, nil
}

// Put stores action under its owner/name key
func (r *Repository) Put(ctx context.Context, action *model.ActionEntry) error {
	data, err := json.Marshal(action)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal action", goerr.V("key", action.Key()))
	}

	if err := r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(actionsBucketName)).Put([]byte(action.Key()), data)
	}); err != nil {
		return goerr.Wrap(err, "failed to put action", goerr.V("key", action.Key()))
	}

	return nil
}

// Count returns the number of stored actions
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(actionsBucketName)).Stats().KeyN
		return nil
	}); err != nil {
		return 0, goerr.Wrap(err, "failed to count actions")
	}
	return n, nil
}
