package cli

import (
	"github.com/spf13/cobra"

	"github.com/git-ranked/gitranked/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  `Serve the leaderboard API over HTTP: search, user lookups, location suggestions, and a health probe. The server drains in-flight requests on SIGINT/SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.newServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			if listen != "" {
				svc.cfg.Listen = listen
			}
			if svc.cfg.GitHubToken == "" {
				c.Logger.Warn("no server token configured, anonymous searches will fail")
			}
			c.Logger.Info("starting", "config", svc.cfg.String())

			srv := server.New(svc.board, svc.locations, c.Logger, svc.cfg.Listen)
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "bind address (overrides config)")
	return cmd
}
