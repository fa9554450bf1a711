package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/actsync/pkg/cli/config"
	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
	"github.com/m-mizutani/actsync/pkg/domain/model"
	"github.com/m-mizutani/actsync/pkg/usecase"
	"github.com/m-mizutani/actsync/pkg/utils/report"
)

func cmdUpload() *cli.Command {
	var (
		catalogCfg  config.Catalog
		policyCfg   config.Policy
		storeCfg    config.Store
		actionsFile string
		noColor     bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "actions-file",
			Usage:       "JSON file with the array of candidate actions",
			Destination: &actionsFile,
			Sources:     cli.EnvVars("ACTSYNC_ACTIONS_FILE"),
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colors in the summary table",
			Destination: &noColor,
			Sources:     cli.EnvVars("ACTSYNC_NO_COLOR"),
		},
	}
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)

	return &cli.Command{
		Name:    "upload",
		Aliases: []string{"u"},
		Usage:   "Upload candidate actions to the catalog",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if actionsFile == "" {
				return goerr.New("actions file is required")
			}
			if catalogCfg.APIURL == "" && storeCfg.DB == "" {
				return goerr.New("either API URL or local database is required")
			}

			policy, err := policyCfg.Resolve(c.IsSet)
			if err != nil {
				return err
			}

			candidates, err := loadCandidates(actionsFile)
			if err != nil {
				return err
			}

			client, closeFn, err := openCatalogClient(&catalogCfg, &storeCfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					logger.Warn("Failed to close local catalog", slog.Any("error", err))
				}
			}()

			logger.Info("Starting upload",
				slog.Any("catalog", catalogCfg),
				slog.String("db", storeCfg.DB),
				slog.String("actions_file", actionsFile),
				slog.Int("candidates", len(candidates)),
				slog.Int("max_uploads", policy.MaxUploads),
				slog.Int("trim_window", policy.TrimWindow),
			)

			rep := usecase.NewSync(client, usecase.WithPolicy(policy)).Sync(ctx, candidates)

			if err := report.WriteSummary(os.Stderr, rep, !noColor); err != nil {
				return goerr.Wrap(err, "failed to write summary")
			}
			if err := report.WriteResultsJSON(os.Stdout, rep.Results); err != nil {
				return goerr.Wrap(err, "failed to write results")
			}

			return nil
		},
	}
}

// openCatalogClient returns the remote API client, or a catalog backed by
// the local database when no API URL is given
func openCatalogClient(catalogCfg *config.Catalog, storeCfg *config.Store) (interfaces.CatalogClient, func() error, error) {
	if catalogCfg.APIURL != "" {
		client, err := catalogCfg.NewClient()
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { return nil }, nil
	}

	repo, closeFn, err := storeCfg.Open()
	if err != nil {
		return nil, nil, err
	}
	return usecase.NewCatalog(repo), closeFn, nil
}

// loadCandidates reads the JSON array of candidate actions
func loadCandidates(path string) ([]*model.ActionEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read actions file", goerr.V("path", path))
	}

	var candidates []*model.ActionEntry
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, goerr.Wrap(err, "failed to parse actions file", goerr.V("path", path))
	}

	return candidates, nil
}
