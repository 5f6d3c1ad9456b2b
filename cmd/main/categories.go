package main

import (
	"context"
	"fmt"

	"wbbot/parser/internal/client"
	"wbbot/parser/internal/container"
	"wbbot/parser/internal/domain"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List leaf categories as shard/query pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(runCategories)
	},
}

var categoryNames []string

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.Flags().StringArrayVarP(&categoryNames, "name", "n", nil, "Only show categories with this name, repeatable")
}

func runCategories(ctx context.Context, app *container.Container) error {
	if len(categoryNames) == 0 {
		for _, category := range app.Categories.GetAllLeafCategories(ctx) {
			fmt.Printf("%s\t%s\n", category.Shard, category.Query)
		}
		return nil
	}

	for _, node := range app.Categories.GetCategoriesByNames(ctx, categoryNames) {
		leaves := []domain.Category{node.Category()}
		if !node.IsLeaf() {
			leaves = client.LeafCategories(node.Childs)
		}
		for _, leaf := range leaves {
			fmt.Printf("%s\t%s\t%s\n", node.Name, leaf.Shard, leaf.Query)
		}
	}
	return nil
}
