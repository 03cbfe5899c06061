package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/eventos/internal/config"
	"github.com/evcraddock/eventos/internal/logging"
	"github.com/evcraddock/eventos/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		port    int
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API server. Settings come from the environment (EV_PORT, EV_DB, EV_DEV_MODE, EV_CORS_ORIGIN, PING_MESSAGE) and an optional .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides EV_PORT)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	return cmd
}

// runServe runs the API until ctx is canceled, then shuts it down.
func runServe(ctx context.Context, cfg config.Config) error {
	logging.Setup(cfg.DevMode)

	database, err := openDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	srv, err := web.NewServer(database, cfg)
	if err != nil {
		return err
	}
	httpSrv := srv.HTTPServer(cfg.Port)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting API", "addr", "http://localhost"+httpSrv.Addr+"/api", "dev", cfg.DevMode)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
