package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/dominant-colors/internal/config"
	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/upload"
	"github.com/ironsheep/dominant-colors/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page and the JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return serve(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", ":5000", "HTTP listen address")
	flags.String("upload-dir", "static/uploads", "directory receiving uploaded images")
	flags.Int64("max-upload-bytes", 20<<20, "largest accepted upload, 0 for no limit")
	flags.Bool("metrics", true, "expose Prometheus metrics on /metrics")

	a.bind(flags.Lookup("listen"), config.KeyListen)
	a.bind(flags.Lookup("upload-dir"), config.KeyUploadDir)
	a.bind(flags.Lookup("max-upload-bytes"), config.KeyMaxUploadBytes)
	a.bind(flags.Lookup("metrics"), config.KeyMetrics)
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	analyzer, err := histogram.NewAnalyzer(cfg.Histogram)
	if err != nil {
		return err
	}
	store, err := upload.NewStore(cfg.Upload)
	if err != nil {
		return err
	}
	srv, err := web.New(web.Options{
		Analyzer:       analyzer,
		Store:          store,
		Step:           cfg.Step,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Metrics:        cfg.Metrics,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.Listen)
	}

	g := new(run.Group)
	{
		httpSrv := &http.Server{
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Add(func() error {
			logger.Info("http server listening",
				zap.String("addr", listener.Addr().String()),
				zap.String("upload_dir", store.Dir()),
				zap.Bool("metrics", cfg.Metrics),
			)
			return httpSrv.Serve(listener)
		}, func(err error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http shutdown", zap.Error(err))
			}
		})
	}
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sig run.SignalError
	if errors.Is(err, http.ErrServerClosed) || errors.As(err, &sig) || errors.Is(err, context.Canceled) {
		logger.Info("http server stopped", zap.Error(err))
		return nil
	}
	return err
}
