package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/factories"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/form"
)

func newSeedCommand(a *app) *cobra.Command {
	var (
		count int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create generated meals in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			ctx := cmd.Context()

			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			factory := factories.NewFoodFactory()
			if seed != 0 {
				factory = factories.NewFoodFactoryWithSeed(seed)
			}

			bar := progressbar.NewOptions(count,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("seeding foods"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			failed := 0
			for _, draft := range factory.Drafts(count) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if _, err := rt.svc.CreateFood(ctx, form.ToInput(draft)); err != nil {
					failed++
					a.logger.Warn("failed to seed food", "name", draft.Name, "error", err)
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			a.logger.Info("seed finished", "created", count-failed, "failed", failed)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d foods\n", count-failed, count)
			if failed > 0 {
				return fmt.Errorf("%d of %d foods could not be created", failed, count)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of meals to create")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for repeatable data (0 picks one)")
	return cmd
}
