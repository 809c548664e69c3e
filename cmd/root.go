// Package cmd contains the devhub commands, built with cobra.
// Without sub command, devhub starts the http server.
package cmd

import (
	"context"
	"os"

	"github.com/FlorianRuen/devhub/config"
	"github.com/FlorianRuen/devhub/logger"
	"github.com/FlorianRuen/devhub/service"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	// cfg is loaded before any command runs
	cfg = config.GetDefault()
)

var rootCmd = &cobra.Command{
	Use:   "devhub",
	Short: "Code playground and GitHub discovery hub",
	Long: `devhub serves the code playground (preview, export, share links, templates, saved projects)
and the GitHub discovery hub (search, trending, bookmarks, analytics) over HTTP.
The search, trending, export and share commands give the same features from the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the TOML config file (default: config/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup loads the configuration and configures the logger
// a missing or invalid config file is not fatal: the defaults are used
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	cfg = loaded

	logger.Setup(*cfg, verbose)

	if err != nil {
		log.WithError(err).Warn("unable to load configuration, default values will be used")
	}

	return nil
}

// newGithubService wires the github client, the local rate limiter and the service
func newGithubService(ctx context.Context) (service.GithubService, error) {
	githubClient, err := service.NewGithubClient(cfg.Github)
	if err != nil {
		return nil, err
	}

	rateLimiter := service.NewRateLimiter(ctx, cfg.Github, githubClient)

	return service.NewGithubService(*cfg, githubClient, rateLimiter), nil
}
