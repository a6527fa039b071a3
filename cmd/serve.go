package cmd

import (
	"github.com/Chative-core-poc-v1/bookstore/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat HTTP API",
		Long: `Starts the HTTP API:

  POST /chat         {"user_id": 1, "display_name": "Ada", "message": "buy Dune, 2 copies"}
  GET  /welcome      ?name=Ada
  GET  /healthcheck`,
		Example: `  # Listen on HTTP_ADDR (default :8080)
  bookstore serve

  # Listen on a custom address
  bookstore serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return server.New(a.router).ListenAndServe(cmd.Context(), cfg.HTTPAddr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (overrides HTTP_ADDR)")

	return cmd
}
