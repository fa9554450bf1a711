package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/actsync/pkg/cli"
	"github.com/m-mizutani/actsync/pkg/infra/bolt"
)

func writeActionsFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "actions.json")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUpload_LocalDB(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "catalog.db")
	actionsFile := writeActionsFile(t, dir, `[
		{"owner":"actions","name":"checkout","repoInfo":{"updated_at":"2024-01-01T00:00:00Z"},
		 "tagInfo":["v1","v2","v3","v4"]},
		{"owner":"actions","name":"cache"}
	]`)

	gt.NoError(t, cli.Run(ctx, []string{
		"actsync", "--log-level", "error",
		"upload",
		"--db", dbPath,
		"--actions-file", actionsFile,
		"--trim-window", "2",
		"--no-color",
	}))

	repo, err := bolt.Open(dbPath)
	gt.NoError(t, err)
	defer repo.Close()

	actions, err := repo.List(ctx)
	gt.NoError(t, err)
	gt.Value(t, len(actions)).Equal(2)
	for _, a := range actions {
		if a.Name == "checkout" {
			gt.Value(t, a.TagInfo.Names()).Equal([]string{"v4", "v3"})
		}
	}
}

func TestUpload_InputErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "catalog.db")

	t.Run("missing actions file flag", func(t *testing.T) {
		gt.Error(t, cli.Run(ctx, []string{"actsync", "upload", "--db", dbPath}))
	})

	t.Run("missing destination", func(t *testing.T) {
		file := writeActionsFile(t, dir, `[]`)
		gt.Error(t, cli.Run(ctx, []string{"actsync", "upload", "--actions-file", file}))
	})

	t.Run("unreadable file", func(t *testing.T) {
		gt.Error(t, cli.Run(ctx, []string{
			"actsync", "upload", "--db", dbPath,
			"--actions-file", filepath.Join(dir, "missing.json"),
		}))
	})

	t.Run("malformed file", func(t *testing.T) {
		file := writeActionsFile(t, dir, `{"owner":`)
		gt.Error(t, cli.Run(ctx, []string{"actsync", "upload", "--db", dbPath, "--actions-file", file}))
	})
}

func TestCount_RequiresFunctionKey(t *testing.T) {
	gt.Error(t, cli.Run(context.Background(), []string{
		"actsync", "count", "--api-url", "http://localhost:0",
	}))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	gt.Error(t, cli.Run(context.Background(), []string{"actsync", "--log-level", "loud", "count"}))
}
