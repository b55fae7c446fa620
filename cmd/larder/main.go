package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	larder "github.com/kode4food/larder"
	"github.com/kode4food/larder/internal/config"
	"github.com/kode4food/larder/pkg/log"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		slog.Error("Command failed", log.Error(err))
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           larder.Name,
		Short:         "Recipe sharing API server",
		Version:       larder.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => serve
			return a.serve()
		},
	}

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newUserCmd(a))
	cmd.AddCommand(newTagCmd(a))
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

// configure loads the environment configuration and installs the logger
func (a *app) configure() error {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	a.cfg = cfg
	a.setupLogging()
	return nil
}

func (a *app) setupLogging() {
	level, ok := log.ParseLevel(a.cfg.LogLevel)
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(larder.Name, env, larder.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Debug("Configuration loaded",
		slog.String("log_level", a.cfg.LogLevel),
		slog.String("db_driver", a.cfg.DBDriver),
		slog.String("redis_addr", a.cfg.Redis.Addr),
		slog.Int("redis_db", a.cfg.Redis.DB),
		slog.String("archive_bucket", a.cfg.ArchiveBucketURL),
		slog.String("zero_policy", string(a.cfg.ZeroPolicy)),
		slog.String("api_host", a.cfg.APIHost),
		slog.Int("api_port", a.cfg.APIPort))
}
