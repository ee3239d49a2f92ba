package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/railfence/internal/config"
	"github.com/matzehuels/railfence/pkg/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the JSON API:

  GET  /health
  POST /api/text/encrypt    {"text": "...", "rails": 3}
  POST /api/text/decrypt    {"text": "...", "rails": 3}
  POST /api/image/encrypt   {"imageData": "data:image/png;base64,...", "rails": 3}
  POST /api/image/decrypt   {"imageData": "data:image/png;base64,...", "rails": 3}
  POST /api/visualize       {"text": "...", "rails": 3, "format": "html"}

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.New(apiConfig(c.cfg), runner, c.Logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")

	return cmd
}

// apiConfig maps the file configuration onto the server settings.
func apiConfig(cfg config.Config) api.Config {
	return api.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		ReadTimeout:    cfg.Server.ReadTimeout.Duration,
		WriteTimeout:   cfg.Server.WriteTimeout.Duration,
		DefaultRails:   cfg.Cipher.DefaultRails,
	}
}
