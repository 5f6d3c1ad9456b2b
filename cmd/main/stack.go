package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"wbbot/parser/internal/container"
	"wbbot/parser/internal/domain"

	"github.com/spf13/cobra"
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Inspect and edit product stacks",
}

var stackListCmd = &cobra.Command{
	Use:   "list STACK",
	Short: "Print every product of a stack, head first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			products, err := app.Store.ListAll(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(products)
		})
	},
}

var stackPeekCmd = &cobra.Command{
	Use:   "peek STACK",
	Short: "Print the head of a stack without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			product, err := app.Store.PeekFront(ctx, args[0])
			if err != nil {
				return err
			}
			return printProduct(args[0], product)
		})
	},
}

var stackPopCmd = &cobra.Command{
	Use:   "pop STACK",
	Short: "Remove and print the head of a stack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			product, err := app.Store.PopFront(ctx, args[0])
			if err != nil {
				return err
			}
			return printProduct(args[0], product)
		})
	},
}

var stackCountCmd = &cobra.Command{
	Use:   "count STACK",
	Short: "Print the number of products in a stack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			n, err := app.Store.Count(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		})
	},
}

var stackDeleteCmd = &cobra.Command{
	Use:   "delete STACK",
	Short: "Delete a stack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, app *container.Container) error {
			return app.Store.DeleteStack(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(stackCmd)
	stackCmd.AddCommand(stackListCmd, stackPeekCmd, stackPopCmd, stackCountCmd, stackDeleteCmd)
}

func printProduct(stack string, product *domain.Product) error {
	if product == nil {
		fmt.Printf("Stack %s is empty\n", stack)
		return nil
	}
	return printJSON(product)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
