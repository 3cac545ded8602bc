package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/seeds"
	"github.com/gymdesk/gymdesk/internal/infrastructure/repository"
	"github.com/gymdesk/gymdesk/internal/interfaces/cli/bootstrap"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}

	cmd.AddCommand(newPlansCommand(flags))
	return cmd
}

func newPlansCommand(flags *bootstrap.Flags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Upsert the plan catalog from a YAML file",
		Long:  `Validate every entry of the file and upsert the plans keyed by plan type. Nothing is written when any entry is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := seeds.LoadPlans(file)
			if err != nil {
				return err
			}

			rt, err := bootstrap.InitWithDatabase(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			n, err := seeds.SeedPlans(cmd.Context(), repository.NewPlanRepository(rt.DB), plans, rt.Logger.Named("seed"))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d plan(s) from %s\n", n, file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the plans YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
