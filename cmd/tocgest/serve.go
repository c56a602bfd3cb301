package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tocgest/internal/api"
	"github.com/dgallion1/tocgest/internal/pipeline"
)

func newServeCmd(cfgFile func() string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the tocgest HTTP API.

Uploads are processed asynchronously by a worker pool; clients poll
/api/documents/{id} and fetch the result or an xlsx export when done.
Every route except /health requires "Authorization: Bearer $TOCGEST_API_KEY".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cfgFile(), os.Stdout)
			if err != nil {
				return err
			}
			if port != "" {
				app.Config.Port = port
			}
			if err := app.Config.Validate(); err != nil {
				app.Log.Error("invalid configuration", "error", err)
				return err
			}
			return serve(cmd.Context(), app)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config)")
	return cmd
}

func serve(ctx context.Context, app *App) error {
	cfg, log := app.Config, app.Log

	orch := pipeline.NewOrchestrator(app.Processor, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, app.Exporter, app.Stats, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting tocgest", "port", cfg.Port, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		orch.Stop()
		if err != nil {
			log.Error("server error", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	orch.Stop()
	return err
}
