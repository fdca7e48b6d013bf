package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beamlabs/beamchat-server/internal/app"
	"github.com/beamlabs/beamchat-server/internal/config"
	"github.com/beamlabs/beamchat-server/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		dbPath     string
		logLevel   string
	)

	root := &cobra.Command{
		Use:          "beamchat-server",
		Short:        "Real-time presence and message delivery server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap := log.New("info", "console")

			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return err
			}

			// Flags win over config file and env.
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.DatabasePath = dbPath
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			logger := log.New(cfg.LogLevel, cfg.LogFormat)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting beamchat server")

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	root.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	root.Flags().StringVar(&dbPath, "db", "", "path to SQLite database file")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
