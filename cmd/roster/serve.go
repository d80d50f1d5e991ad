package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-roster/internal/infrastructure/web"
)

func newServeCmd() *cobra.Command {
	var (
		bind string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the roster over HTTP with live search",
		Long: `Serves the world's roster as a JSON API, with a WebSocket endpoint at
/api/live that re-runs the search as the client types.

The listen address defaults to server.bind and server.port from config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if !cmd.Flags().Changed("bind") {
					bind = d.Config.Server.Bind
				}
				if !cmd.Flags().Changed("port") {
					port = d.Config.Server.Port
				}
				if port < 1 || port > 65535 {
					return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", port)
				}

				srv := web.NewServer(d.RosterHandler, web.Options{
					WorldID:     d.WorldID,
					Version:     version,
					Debounce:    d.Config.Search.Debounce,
					NewPipeline: d.NewPipeline,
					Logger:      d.Logger,
				})

				addr := net.JoinHostPort(bind, strconv.Itoa(port))
				fmt.Fprintf(cmd.OutOrStdout(), "Serving world %q on http://%s\n", d.WorldID, addr)
				return srv.ListenAndServe(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVarP(&bind, "bind", "b", "", "Address to bind to (default: server.bind)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: server.port)")

	return cmd
}
