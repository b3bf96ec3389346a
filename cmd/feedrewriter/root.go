package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"FeedRewriter/internal/app"
	"FeedRewriter/internal/config"
	"FeedRewriter/internal/logging"
)

const configPathEnv = "FEEDREWRITER_CONFIG"

type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "feedrewriter",
		Short: "Rewrite hip-hop news feeds into original stories",
		Long: `feedrewriter reads RSS/Atom feeds, keeps the fresh and distinct entries,
extracts each article, and has a language model rewrite it into a new story.

Example usage:
  feedrewriter serve                         # HTTP API on :8080
  feedrewriter run --limit 5                 # print one page of stories as JSON
  feedrewriter run --source HipHopDX --every 30m
  feedrewriter article --url https://hiphopdx.com/news/...
  feedrewriter publish --title "Headline" --body-file story.html`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default $"+configPathEnv+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	cmd.AddCommand(newServeCmd(opts), newRunCmd(opts), newArticleCmd(opts), newPublishCmd(opts))
	return cmd
}

// loadConfig applies the global flags on top of the file and environment configuration.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configFile != "" {
		_ = os.Setenv(configPathEnv, o.configFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) buildApp() (*app.Application, *slog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
