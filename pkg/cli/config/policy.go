package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/actsync/pkg/domain/model"
)

const (
	flagMaxUploads    = "max-uploads"
	flagTrimWindow    = "trim-window"
	flagSizeWarnChars = "size-warn-chars"
)

// Policy holds sync policy configuration. Values come from an optional
// TOML file and are overridden by flags that were set explicitly.
type Policy struct {
	File          string
	MaxUploads    int
	TrimWindow    int
	SizeWarnChars int
}

type policyFile struct {
	MaxUploads    *int `toml:"max_uploads"`
	TrimWindow    *int `toml:"trim_window"`
	SizeWarnChars *int `toml:"size_warn_chars"`
}

// Flags returns CLI flags for policy configuration
func (c *Policy) Flags() []cli.Flag {
	defaults := model.DefaultSyncPolicy()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "TOML file with max_uploads, trim_window and size_warn_chars",
			Destination: &c.File,
			Sources:     cli.EnvVars("ACTSYNC_POLICY_FILE"),
		},
		&cli.IntFlag{
			Name:        flagMaxUploads,
			Usage:       "Maximum number of successful uploads per run (0 = unlimited)",
			Value:       defaults.MaxUploads,
			Destination: &c.MaxUploads,
			Sources:     cli.EnvVars("ACTSYNC_MAX_UPLOADS"),
		},
		&cli.IntFlag{
			Name:        flagTrimWindow,
			Usage:       "Number of newest tags kept per action",
			Value:       defaults.TrimWindow,
			Destination: &c.TrimWindow,
			Sources:     cli.EnvVars("ACTSYNC_TRIM_WINDOW"),
		},
		&cli.IntFlag{
			Name:        flagSizeWarnChars,
			Usage:       "Warn when a serialized action is longer than this (0 = never)",
			Value:       defaults.SizeWarnChars,
			Destination: &c.SizeWarnChars,
			Sources:     cli.EnvVars("ACTSYNC_SIZE_WARN_CHARS"),
		},
	}
}

// Resolve builds the sync policy. isSet reports whether a flag was given
// explicitly, typically (*cli.Command).IsSet.
func (c *Policy) Resolve(isSet func(name string) bool) (model.SyncPolicy, error) {
	policy := model.DefaultSyncPolicy()

	if c.File != "" {
		pf, err := loadPolicyFile(c.File)
		if err != nil {
			return policy, err
		}
		if pf.MaxUploads != nil {
			policy.MaxUploads = *pf.MaxUploads
		}
		if pf.TrimWindow != nil {
			policy.TrimWindow = *pf.TrimWindow
		}
		if pf.SizeWarnChars != nil {
			policy.SizeWarnChars = *pf.SizeWarnChars
		}
	}

	if c.File == "" || isSet(flagMaxUploads) {
		policy.MaxUploads = c.MaxUploads
	}
	if c.File == "" || isSet(flagTrimWindow) {
		policy.TrimWindow = c.TrimWindow
	}
	if c.File == "" || isSet(flagSizeWarnChars) {
		policy.SizeWarnChars = c.SizeWarnChars
	}

	if policy.TrimWindow < 0 {
		return policy, goerr.New("trim window must not be negative", goerr.V("trim_window", policy.TrimWindow))
	}

	return policy, nil
}

func loadPolicyFile(path string) (*policyFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open policy file", goerr.V("path", path))
	}
	defer f.Close()

	var pf policyFile
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&pf); err != nil {
		return nil, goerr.Wrap(err, "failed to decode policy file", goerr.V("path", path))
	}
	return &pf, nil
}
