package main

import (
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stories API and the publish endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := opts.buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			err = application.Serve(cmd.Context())
			logger.Info("server stopped")
			return err
		},
	}
}
