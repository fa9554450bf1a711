package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/actsync/pkg/infra/catalog"
)

// Catalog holds the remote catalog API configuration
type Catalog struct {
	APIURL      string
	FunctionKey string `masq:"secret"`
	Timeout     time.Duration
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-url",
			Usage:       "Base URL of the actions catalog API",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("ACTSYNC_API_URL"),
		},
		&cli.StringFlag{
			Name:        "function-key",
			Usage:       "API key sent as x-functions-key",
			Destination: &c.FunctionKey,
			Sources:     cli.EnvVars("ACTSYNC_FUNCTION_KEY"),
		},
		&cli.DurationFlag{
			Name:        "api-timeout",
			Usage:       "Timeout of a single API request",
			Value:       30 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("ACTSYNC_API_TIMEOUT"),
		},
	}
}

// Validate checks that the API URL is set and, when requireKey is true,
// that the function key is set too
func (c *Catalog) Validate(requireKey bool) error {
	if c.APIURL == "" {
		return goerr.New("API URL is required")
	}
	if requireKey && c.FunctionKey == "" {
		return goerr.New("function key is required")
	}
	return nil
}

// NewClient creates a catalog API client from the configuration
func (c *Catalog) NewClient() (*catalog.Client, error) {
	opts := []catalog.Option{
		catalog.WithFunctionKey(c.FunctionKey),
	}
	if c.Timeout > 0 {
		opts = append(opts, catalog.WithTimeout(c.Timeout))
	}

	client, err := catalog.NewClient(c.APIURL, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create catalog client")
	}
	return client, nil
}

// LogValue implements slog.LogValuer
func (c Catalog) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api_url", c.APIURL),
		slog.Bool("function_key_set", c.FunctionKey != ""),
		slog.Duration("timeout", c.Timeout),
	)
}
