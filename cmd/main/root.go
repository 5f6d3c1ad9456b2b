package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wbbot/parser/internal/config"
	"wbbot/parser/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wbparser",
	Short: "Wildberries catalog ingestion and product queue tool",
	Long: `
wbparser fetches the Wildberries catalog, normalizes products and keeps the
moderation queues in Redis.

INGESTION:
  ingest      Run one fetch cycle and replace the pending stack
  categories  List leaf categories (optionally below named categories)
  report      Show the report of the last cycle

QUEUES:
  stack       Inspect and edit product stacks
  await       Manage product -> user mappings
  suggest     Queue a single product proposed by a user
  moderate    Accept or reject the head of the pending stack

EXAMPLES:
  wbparser ingest --category "Платья" --filter "Цвет=Красный"
  wbparser stack list products
  wbparser moderate accept
`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
}

// withContainer loads configuration, builds the dependency graph and runs fn
func withContainer(fn func(ctx context.Context, app *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.SetupLogging(cfg.Log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
