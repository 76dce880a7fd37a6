// Package cmd wires configuration, the LLM client, the task registry, and the
// dispatcher into the dataworks CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/dataworks/internal/config"
	"github.com/harrison/dataworks/internal/dispatch"
	"github.com/harrison/dataworks/internal/llm"
	"github.com/harrison/dataworks/internal/logger"
	"github.com/harrison/dataworks/internal/registry"
	"github.com/harrison/dataworks/internal/similarity"
	"github.com/harrison/dataworks/internal/tasks"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for dataworks
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataworks",
		Short: "LLM-routed task runner for a local data directory",
		Long: `Dataworks takes a plain-English instruction, lets the LLM pick one of the
registered tasks via tool calling, validates the extracted arguments, and
runs the task against the local data directory.

Configuration is loaded from .dataworks/config.yaml if present, plus the
AIPROXY_TOKEN environment variable (a .env file is honored).`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .dataworks/config.yaml)")
	cmd.PersistentFlags().String("data-root", "", "Data directory (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewTasksCommand())
	cmd.AddCommand(NewServeCommand())

	return cmd
}

// app is the assembled object graph every subcommand runs against.
type app struct {
	cfg        *config.Config
	log        logger.Logger
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
}

// buildApp loads and validates configuration, then wires the client,
// registry, and dispatcher. Validation runs before anything touches the
// network, so a missing token fails immediately.
func buildApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if dataRoot, _ := cmd.Flags().GetString("data-root"); dataRoot != "" {
		cfg.DataRoot = dataRoot
	}
	if logLevel, _ := cmd.Flags().GetString("log-level"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewConsoleLogger(os.Stderr, cfg.LogLevel)
	client := llm.NewClient(cfg)
	searcher := similarity.NewSearcher(client, cfg.EmbedConcurrency)

	reg := registry.New()
	deps := tasks.Deps{
		Root:     cfg.DataRoot,
		Chat:     client,
		Searcher: searcher,
		Log:      log,
	}
	if err := tasks.RegisterAll(reg, deps); err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		log:        log,
		registry:   reg,
		dispatcher: dispatch.NewDispatcher(reg, client, log),
	}, nil
}
