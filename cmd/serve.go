package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "nimbus/internal/api/http"
	"nimbus/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve forecasts, location search and saved places over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd, false); err != nil {
				return err
			}
			return runServe(opts)
		},
	}
}

func runServe(o *options) error {
	cfg := o.cfg

	log, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	log.Info().Interface("config", cfg.Redacted()).Msg("configuration")

	svc, err := newServices(cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	app := httpapi.NewApp(log)
	httpapi.RegisterRoutes(app, httpapi.Routes{
		Source:  svc.repo,
		DB:      svc.db,
		Exclude: cfg.Exclude,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", cfg.Listen).Msg("http server starting")
		errCh <- app.Listen(cfg.Listen)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("received signal, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
