package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/randomwalker/internal/log"
	"github.com/nao1215/randomwalker/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve random link resolution over HTTP",
		Long: `Serve starts an HTTP server that resolves one random link per request.

Endpoints:
  GET /health                       liveness probe
  GET /walk?url=URL&seed=N&visited=URL
                                    resolve a random link from URL
                                    (defaults to the configured start URL)

A successful resolution answers 200 with {"url","label","html"}.
A failure answers 422 with {"error","code"}, plus "unsafe" and "reasons"
when the safety filter refused the destination.

Examples:
  # Listen on the default address
  randomwalker serve

  # Listen on all interfaces, port 9000
  randomwalker serve -l :9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "",
		"Address to listen on (default: 127.0.0.1:8080)")
	addFetchFlags(cmd)
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(f,
		server.WithStartURL(cfg.StartURL),
		server.WithVisited(cfg.Visited...),
		server.WithLogger(logger),
	)

	logger.Info("listening",
		slog.String("address", cfg.ListenAddress),
		slog.String("start", cfg.StartURL),
	)
	return srv.ListenAndServe(ctx, cfg.ListenAddress)
}
