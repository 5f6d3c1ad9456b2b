package main

import (
	"context"
	"fmt"

	"wbbot/parser/internal/container"
	"wbbot/parser/internal/domain"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion cycle",
	Long: `Fetches products of the selected categories (every leaf category when
none is given) and replaces the pending stack with them. Categories and
filters fall back to ingest.categories / ingest.filters from the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(runIngest)
	},
}

var (
	ingestCategories []string
	ingestFilters    []string
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringArrayVarP(&ingestCategories, "category", "c", nil, "Category name, repeatable")
	ingestCmd.Flags().StringArrayVarP(&ingestFilters, "filter", "f", nil, `Filter as "Facet=Value", repeatable`)
}

func runIngest(ctx context.Context, app *container.Container) error {
	names := ingestCategories
	if len(names) == 0 {
		names = app.Config.Ingest.Categories
	}

	raw := ingestFilters
	if len(raw) == 0 {
		raw = app.Config.Ingest.Filters
	}
	filters, err := parseFilters(raw)
	if err != nil {
		return err
	}

	count, err := app.Service.RunCycle(ctx, names, filters)
	if err != nil {
		return err
	}

	fmt.Printf("Queued %d products into %s\n", count, app.Config.Ingest.StackName)
	return nil
}

func parseFilters(raw []string) ([]domain.Filter, error) {
	filters := make([]domain.Filter, 0, len(raw))
	for _, s := range raw {
		filter, err := domain.ParseFilter(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}
	return filters, nil
}
