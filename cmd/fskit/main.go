// Package main implements the fskit command line and MCP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/fskit/internal/config"
	"github.com/taigrr/fskit/internal/filesystem"
	"github.com/taigrr/fskit/internal/listing"
	"github.com/taigrr/fskit/internal/parentsearch"
	"go.uber.org/zap"
)

var (
	cfg        *config.Config
	logger     *zap.Logger
	lister     *listing.Lister
	finder     *parentsearch.Finder
	fileSystem *filesystem.Service
)

func main() {
	cmd := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, logLevel string

	cmd := &cobra.Command{
		Use:   "fskit",
		Short: "Filesystem toolkit",
		Long: `fskit lists directories with type and executable filters, searches
parent directories for a path, and creates, deletes, touches and copies
files. The same operations are served to MCP clients by "fskit mcp".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			return initServices()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: nearest "+config.FileName+")")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newLsCmd(),
		newFindUpCmd(),
		newMkdirCmd(),
		newRmCmd(),
		newTouchCmd(),
		newCpCmd(),
		newMCPCmd(),
	)
	return cmd
}

func initServices() error {
	var err error
	logger, err = cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	if cfg.Source != "" {
		logger.Debug("loaded config", zap.String("path", cfg.Source))
	}

	lister = listing.New(listing.WithLogger(logger))
	finder = parentsearch.New(parentsearch.WithLogger(logger))
	fileSystem = filesystem.New(logger)
	return nil
}
