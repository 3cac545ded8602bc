package migrate

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gymdesk/gymdesk/internal/infrastructure/migration"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/bootstrap"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the embedded goose migrations.`,
	}

	cmd.AddCommand(
		newUpCommand(flags),
		newDownCommand(flags),
		newStatusCommand(flags),
	)

	return cmd
}

func newUpCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, strategy, err := initGoose(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.Logger.Infow("running up migrations", "environment", rt.Env)
			if err := strategy.Migrate(cmd.Context(), rt.DB); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			rt.Logger.Infow("migrations completed successfully")
			return nil
		},
	}
}

func newDownCommand(flags *bootstrap.Flags) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}

			rt, strategy, err := initGoose(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.Logger.Infow("running down migrations", "environment", rt.Env, "steps", steps)
			for i := 0; i < steps; i++ {
				if err := strategy.Down(cmd.Context(), rt.DB); err != nil {
					return fmt.Errorf("down migration failed after %d step(s): %w", i, err)
				}
			}
			rt.Logger.Infow("down migration completed successfully")
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")
	return cmd
}

func newStatusCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, strategy, err := initGoose(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			states, err := strategy.Status(cmd.Context(), rt.DB)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), rt.Env, states)
		},
	}
}

func initGoose(flags *bootstrap.Flags) (*bootstrap.Runtime, *migration.GooseStrategy, error) {
	rt, err := bootstrap.InitWithDatabase(flags)
	if err != nil {
		return nil, nil, err
	}

	strategy, err := migration.NewGooseStrategy(rt.Config.Database.Driver, rt.Logger.Named("migration"))
	if err != nil {
		rt.Close()
		return nil, nil, err
	}
	return rt, strategy, nil
}

func printStatus(out io.Writer, env string, states []migration.MigrationState) error {
	fmt.Fprintf(out, "Environment: %s\n\n", env)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tSCRIPT")
	for _, st := range states {
		state, appliedAt := "pending", "-"
		if st.Applied {
			state = "applied"
			appliedAt = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Version, state, appliedAt, st.Path)
	}
	return w.Flush()
}
