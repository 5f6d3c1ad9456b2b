package main

import (
	"context"

	"wbbot/parser/internal/container"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest PRODUCT_ID_OR_URL",
	Short: "Queue a single product proposed by a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			product, err := app.Service.SuggestProduct(ctx, args[0], suggestUserID)
			if err != nil {
				return err
			}
			return printJSON(product)
		})
	},
}

var suggestUserID string

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().StringVarP(&suggestUserID, "user", "u", "", "Id of the suggesting user (required)")
	_ = suggestCmd.MarkFlagRequired("user")
}
