package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"FeedRewriter/internal/infrastructure/scheduler"
	"FeedRewriter/internal/usecase"
)

type runOptions struct {
	offset int
	limit  int
	source string
	every  time.Duration
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	ro := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline and print the stories as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := opts.buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			req := usecase.RunRequest{Offset: ro.offset, Limit: ro.limit, Source: ro.source}
			return scheduler.NewTicker(ro.every).Run(cmd.Context(), func(ctx context.Context, at time.Time) error {
				logger.Debug("pipeline run", "at", at)
				result, err := application.Run(ctx, req)
				if err != nil {
					if ro.every > 0 && ctx.Err() == nil {
						logger.Error("pipeline run failed", "error", err)
						return nil
					}
					return err
				}
				return enc.Encode(result)
			})
		},
	}

	cmd.Flags().IntVar(&ro.offset, "offset", 0, "index of the first admitted entry to consider")
	cmd.Flags().IntVar(&ro.limit, "limit", 0, "number of stories to produce (0 uses the configured default)")
	cmd.Flags().StringVar(&ro.source, "source", "", "restrict the run to one configured feed")
	cmd.Flags().DurationVar(&ro.every, "every", 0, "repeat the run at this interval until interrupted")
	return cmd
}
