package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/actsync/pkg/cli/config"
	"github.com/m-mizutani/actsync/pkg/usecase"
	"github.com/m-mizutani/actsync/pkg/utils/report"
)

func cmdCount() *cli.Command {
	var catalogCfg config.Catalog

	return &cli.Command{
		Name:  "count",
		Usage: "Print the number of actions in the catalog",
		Flags: catalogCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := catalogCfg.Validate(true); err != nil {
				return err
			}

			client, err := catalogCfg.NewClient()
			if err != nil {
				return err
			}

			count, err := usecase.NewCount(client).CountActions(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to get actions count")
			}

			ctxlog.From(ctx).Info("Retrieved actions count", slog.Int("count", count))
			return report.WriteCount(os.Stdout, count)
		},
	}
}
