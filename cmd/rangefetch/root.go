package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/datallboy/rangefetch/internal/app"
	"github.com/datallboy/rangefetch/internal/infra/config"
	"github.com/datallboy/rangefetch/internal/infra/logger"
	"github.com/datallboy/rangefetch/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// appCtx is built by the root PersistentPreRunE before any subcommand runs
	appCtx *app.Context
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "rangefetch",
	Short:         "Fetch a file over raw HTTP/1.1, one range request at a time",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.OutOrStdout())
	},
}

// Execute runs the root command and prints any error to its error stream.
// The app context is released whether or not the command succeeded; cobra
// skips post-run hooks after a failure.
func Execute() error {
	err := rootCmd.Execute()

	if appCtx != nil {
		if cerr := appCtx.Close(); cerr != nil && err == nil {
			err = cerr
		}
		appCtx = nil
	}

	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(downloadCmd, serveCmd, historyCmd)
}

func setup(stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	var console io.Writer
	if cfg.Log.IncludeStdout {
		console = stdout
	}
	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), console)
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}

	appCtx = app.NewContext(cfg, log)

	if cfg.Store.Enabled {
		s, err := store.NewPersistentStore(cfg.Store)
		if err != nil {
			// History is optional; downloads still work without it
			log.Warn("Download history disabled: %v", err)
		} else {
			appCtx.Store = s
		}
	}

	return nil
}

func cmdFunc(fn func(context.Context, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return fn(ctx, cmd, args)
	}
}
