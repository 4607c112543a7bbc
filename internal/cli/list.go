package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/catalog"
)

func newListCommand(a *app) *cobra.Command {
	var (
		term   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meals, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			page := catalog.NewPage(rt.svc, a.logger)
			if err := page.Search(cmd.Context(), term); err != nil {
				return fmt.Errorf("failed to load foods: %w", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), page.Foods())
			}
			return printFoods(cmd.OutOrStdout(), page.Foods())
		},
	}

	cmd.Flags().StringVarP(&term, "search", "s", "", "filter meals by name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
