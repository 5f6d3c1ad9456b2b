package main

import (
	"context"
	"fmt"

	"wbbot/parser/internal/container"

	"github.com/spf13/cobra"
)

var awaitCmd = &cobra.Command{
	Use:   "await",
	Short: "Manage product -> user mappings",
}

var awaitSetCmd = &cobra.Command{
	Use:   "set PRODUCT USER",
	Short: "Record that PRODUCT awaits a decision from USER",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			return app.Store.SetMapping(ctx, args[0], args[1])
		})
	},
}

var awaitGetCmd = &cobra.Command{
	Use:   "get PRODUCT",
	Short: "Print the user PRODUCT is waiting for",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			userID, ok, err := app.Store.GetMapping(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("No mapping for product %s\n", args[0])
				return nil
			}
			fmt.Println(userID)
			return nil
		})
	},
}

var awaitDeleteCmd = &cobra.Command{
	Use:   "delete PRODUCT",
	Short: "Remove the mapping of PRODUCT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			return app.Store.DeleteMapping(ctx, args[0])
		})
	},
}

var awaitHasUserCmd = &cobra.Command{
	Use:   "has-user USER",
	Short: "Tell whether USER awaits any product (scans the whole table)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			ok, err := app.Store.UserIDExistsInMapping(ctx, app.Store.AwaitsTable(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(awaitCmd)
	awaitCmd.AddCommand(awaitSetCmd, awaitGetCmd, awaitDeleteCmd, awaitHasUserCmd)
}
