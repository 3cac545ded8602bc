package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gymdesk/gymdesk/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/gymdesk/gymdesk/internal/interfaces/http"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background jobs without the HTTP server",
		Long:  `Run the daily expiration cycle and, when gateway credentials are configured, the payment status sync.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags)
		},
	}
}

func run(ctx context.Context, flags *bootstrap.Flags) error {
	rt, err := bootstrap.InitWithDatabase(flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.Logger
	log.Infow("starting worker",
		"environment", rt.Env,
		"expiration_cron", rt.Config.Membership.ExpirationCron,
		"payment_sync", rt.Config.Gateway.Enabled(),
	)

	container, err := httpRouter.NewContainer(ctx, rt.Config, rt.DB, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer container.Shutdown()

	if err := container.StartScheduler(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Infow("shutting down worker...")
	return nil
}
