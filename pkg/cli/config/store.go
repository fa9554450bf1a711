package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
	"github.com/m-mizutani/actsync/pkg/infra/bolt"
	"github.com/m-mizutani/actsync/pkg/infra/memory"
)

// Store holds local catalog storage configuration
type Store struct {
	DB string
}

// Flags returns CLI flags for store configuration
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db",
			Usage:       "Path of the local catalog database file",
			Destination: &c.DB,
			Sources:     cli.EnvVars("ACTSYNC_DB"),
		},
	}
}

// Open opens the configured repository. Without a database path the
// repository lives in memory. The returned function releases it.
func (c *Store) Open() (interfaces.ActionRepository, func() error, error) {
	if c.DB == "" {
		return memory.New(), func() error { return nil }, nil
	}

	repo, err := bolt.Open(c.DB)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open local catalog", goerr.V("path", c.DB))
	}
	return repo, repo.Close, nil
}
