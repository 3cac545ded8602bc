package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gymdesk/gymdesk/internal/infrastructure/migration"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/gymdesk/gymdesk/internal/interfaces/http"
)

const shutdownTimeout = 30 * time.Second

type options struct {
	autoMigrate bool
	disableJobs bool
}

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the HTTP ops surface together with the expiration and payment sync jobs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.autoMigrate, "auto-migrate", false, "Run database migrations before serving")
	cmd.Flags().BoolVar(&opts.disableJobs, "no-jobs", false, "Serve HTTP only; run the scheduler in a separate worker")

	return cmd
}

func run(ctx context.Context, flags *bootstrap.Flags, opts *options) error {
	rt, err := bootstrap.InitWithDatabase(flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.Logger
	cfg := rt.Config

	log.Infow("starting server",
		"environment", rt.Env,
		"auto_migrate", opts.autoMigrate,
		"jobs", !opts.disableJobs,
	)

	if opts.autoMigrate {
		if rt.Env == "production" {
			log.Warnw("auto-migration is enabled in production environment")
		}
		mgr, err := migration.NewManager(rt.Env, cfg.Database.Driver, log.Named("migration"))
		if err != nil {
			return err
		}
		if err := mgr.Migrate(ctx, rt.DB); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	container, err := httpRouter.NewContainer(ctx, cfg, rt.DB, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer container.Shutdown()

	if !opts.disableJobs {
		if err := container.StartScheduler(); err != nil {
			return err
		}
	}

	// WriteTimeout covers a synchronous admin expiration cycle.
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-quit:
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}
