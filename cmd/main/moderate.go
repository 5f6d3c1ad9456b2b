package main

import (
	"context"
	"fmt"

	"wbbot/parser/internal/container"

	"github.com/spf13/cobra"
)

var moderateCmd = &cobra.Command{
	Use:       "moderate accept|reject",
	Short:     "Accept or reject the head of the pending stack",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"accept", "reject"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			product, err := app.Service.Moderate(ctx, args[0] == "accept")
			if err != nil {
				return err
			}
			return printProduct(app.Config.Ingest.StackName, product)
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the report of the last ingestion cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			report, err := app.Service.LastReport(ctx)
			if err != nil {
				return err
			}
			if report == nil {
				fmt.Println("No cycle has run yet")
				return nil
			}
			return printJSON(report)
		})
	},
}

func init() {
	rootCmd.AddCommand(moderateCmd, reportCmd)
}
