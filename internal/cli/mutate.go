package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/catalog"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/form"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

// draftFlag ties a command-line flag to one draft field.
type draftFlag struct {
	name  string
	usage string
	field func(d *models.Draft) *string
}

var draftFlags = []draftFlag{
	{"name", "food name", func(d *models.Draft) *string { return &d.Name }},
	{"rating", "rating between 1 and 5", func(d *models.Draft) *string { return &d.Rating }},
	{"price", "price", func(d *models.Draft) *string { return &d.Price }},
	{"image", "food image URL", func(d *models.Draft) *string { return &d.Image }},
	{"restaurant", "restaurant name", func(d *models.Draft) *string { return &d.RestaurantName }},
	{"logo", "restaurant logo URL", func(d *models.Draft) *string { return &d.RestaurantLogo }},
	{"status", "restaurant status ('Open Now' or 'Closed')", func(d *models.Draft) *string { return &d.RestaurantStatus }},
}

func registerDraftFlags(fs *pflag.FlagSet, d *models.Draft) {
	for _, f := range draftFlags {
		p := f.field(d)
		fs.StringVar(p, f.name, *p, f.usage)
	}
}

// applyChanged copies the flags the user actually set from src onto dst.
func applyChanged(fs *pflag.FlagSet, dst *models.Draft, src *models.Draft) {
	for _, f := range draftFlags {
		if fs.Changed(f.name) {
			*f.field(dst) = *f.field(src)
		}
	}
}

// reportSubmit prints field errors for a rejected draft.
func reportSubmit(w io.Writer, err error) error {
	var fieldErrs form.Errors
	if errors.Is(err, catalog.ErrInvalidDraft) && errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for f := range fieldErrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(w, "  %s: %s\n", f, fieldErrs[f])
		}
		return catalog.ErrInvalidDraft
	}
	return err
}

func newAddCommand(a *app) *cobra.Command {
	draft := models.EmptyDraft()

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a meal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			page := catalog.NewPage(rt.svc, a.logger)
			if err := page.FoodModal.OpenAdd(); err != nil {
				return err
			}
			food, err := page.FoodModal.Submit(ctx, draft)
			if err != nil {
				return reportSubmit(cmd.ErrOrStderr(), err)
			}
			return printJSON(cmd.OutOrStdout(), food)
		},
	}

	registerDraftFlags(cmd.Flags(), &draft)
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var changes models.Draft

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a meal; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			page := catalog.NewPage(rt.svc, a.logger)
			if err := page.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load foods: %w", err)
			}
			food, ok := page.Find(id)
			if !ok {
				return fmt.Errorf("food %q is not in the catalog", id)
			}

			if err := page.FoodModal.OpenEdit(food); err != nil {
				return err
			}
			draft := page.FoodModal.Draft()
			applyChanged(cmd.Flags(), &draft, &changes)

			updated, err := page.FoodModal.Submit(ctx, draft)
			if err != nil {
				return reportSubmit(cmd.ErrOrStderr(), err)
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	}

	registerDraftFlags(cmd.Flags(), &changes)
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			page := catalog.NewPage(rt.svc, a.logger)
			if err := page.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load foods: %w", err)
			}
			if !page.DeleteModal.RequestDelete(id) {
				return fmt.Errorf("food %q is not in the catalog", id)
			}
			if err := page.DeleteModal.Confirm(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}
