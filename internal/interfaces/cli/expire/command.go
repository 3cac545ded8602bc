package expire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gymdesk/gymdesk/internal/application/membership/usecases"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/gymdesk/gymdesk/internal/interfaces/http"
)

type cycleRunner interface {
	Execute(ctx context.Context) (*usecases.CycleReport, error)
	DryRun(ctx context.Context) (*usecases.CycleReport, error)
}

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Membership expiration tools",
	}

	cmd.AddCommand(newRunCommand(flags))
	return cmd
}

func newRunCommand(flags *bootstrap.Flags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one expiration cycle now",
		Long:  `Send due reminders, suspend expired members and print the cycle report as JSON. With --dry-run nothing is written or sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap.InitWithDatabase(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, err := httpRouter.NewContainer(ctx, rt.Config, rt.DB, rt.Logger)
			if err != nil {
				return fmt.Errorf("failed to build container: %w", err)
			}
			defer container.Shutdown()

			return runCycle(ctx, container.RunExpirationCycle(), dryRun, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify members without writing or sending notices")
	return cmd
}

func runCycle(ctx context.Context, runner cycleRunner, dryRun bool, out io.Writer) error {
	run := runner.Execute
	if dryRun {
		run = runner.DryRun
	}

	report, err := run(ctx)
	if err != nil {
		if usecases.IsCycleInProgress(err) {
			return fmt.Errorf("another expiration cycle is running: %w", err)
		}
		return fmt.Errorf("expiration cycle failed: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("expiration cycle finished with %d failures", len(report.Failed))
	}
	return nil
}
