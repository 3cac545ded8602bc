package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gymdesk/gymdesk/internal/interfaces/cli/bootstrap"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/expire"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/migrate"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/seed"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/server"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "gymdesk",
		Short:        "Gymdesk - gym membership lifecycle service",
		Long:         `Gymdesk tracks membership end dates, sends expiration reminders and suspends lapsed members.`,
		SilenceUsage: true,
	}

	flags := &bootstrap.Flags{}
	bootstrap.AddFlags(rootCmd, flags)

	rootCmd.AddCommand(
		server.NewCommand(flags),
		worker.NewCommand(flags),
		expire.NewCommand(flags),
		migrate.NewCommand(flags),
		seed.NewCommand(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
