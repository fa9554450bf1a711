package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr        string
	FunctionKey string `masq:"secret"`
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("ACTSYNC_ADDR"),
		},
		&cli.StringFlag{
			Name:        "function-key",
			Usage:       "Key clients must send as x-functions-key (empty = no check)",
			Destination: &c.FunctionKey,
			Sources:     cli.EnvVars("ACTSYNC_FUNCTION_KEY"),
		},
	}
}
