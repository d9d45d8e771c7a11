package main

import (
	"github.com/spf13/cobra"

	"orgaudit/internal/app/server"
	"orgaudit/internal/platform/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (configured from the environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return withCode(exitUsage, err)
			}
			if err := server.Run(cmd.Context(), cfg); err != nil {
				return withCode(exitInternal, err)
			}
			return nil
		},
	}
}
