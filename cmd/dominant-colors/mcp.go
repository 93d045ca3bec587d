package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/server"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run a Model Context Protocol server that speaks JSON-RPC 2.0 over
stdin/stdout. Configure it in your MCP client; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			analyzer, err := histogram.NewAnalyzer(cfg.Histogram)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Debug("mcp server starting",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("git_commit", GitCommit),
			)
			srv := server.New(server.Options{
				Analyzer: analyzer,
				Step:     cfg.Step,
				Version:  Version,
				Logger:   logger,
			})
			err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				logger.Debug("mcp server stopped")
				return nil
			}
			return err
		},
	}
}
