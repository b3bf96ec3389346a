package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newArticleCmd(opts *rootOptions) *cobra.Command {
	var url, title string

	cmd := &cobra.Command{
		Use:   "article",
		Short: "Rewrite a single article and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := opts.buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			story, err := application.Article(cmd.Context(), url, title)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(story)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "article URL")
	cmd.Flags().StringVar(&title, "title", "", "original headline passed to the rewrite")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
