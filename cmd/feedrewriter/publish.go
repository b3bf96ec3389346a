package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"FeedRewriter/internal/usecase"
)

func newPublishCmd(opts *rootOptions) *cobra.Command {
	var title, bodyFile string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Send an edited story to the blog backend as a draft",
		Long: `publish creates a draft post from a title and a body file ("-" reads stdin).
The admin password is taken from $ADMIN_PASSWORD, the same value the HTTP API checks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd, bodyFile)
			if err != nil {
				return err
			}

			application, _, err := opts.buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			published, err := application.Publish(cmd.Context(), usecase.PublishRequest{
				Password: application.Config().Admin.Password,
				Title:    title,
				Body:     body,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(published)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&bodyFile, "body-file", "-", "file holding the story body, - for stdin")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func readBody(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open body file: %w", err)
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(raw), nil
}
