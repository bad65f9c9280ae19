package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/logging"

	"github.com/urfave/cli/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info", "console")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.New(cfg.Log.Level, "console")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &commands{cfg: cfg, logger: logger, out: os.Stdout}
	if err := app.root().Run(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}

func (c *commands) root() *cli.Command {
	return &cli.Command{
		Name:  "ingestctl",
		Usage: "Operate the Shopify Insights ingestion pipeline",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply or roll back the database schema",
				Commands: []*cli.Command{
					{Name: "up", Usage: "Apply pending migrations", Action: c.migrateUp},
					{Name: "down", Usage: "Roll back all migrations", Action: c.migrateDown},
				},
			},
			{
				Name:  "tenants",
				Usage: "Manage tenant stores",
				Commands: []*cli.Command{
					{
						Name:      "register",
						Usage:     "Register a store (idempotent by store URL)",
						ArgsUsage: "<store-name> <store-url>",
						Action:    c.registerTenant,
					},
					{
						Name:      "connect",
						Usage:     "Attach an Admin API access token to a tenant",
						ArgsUsage: "<tenant-id> <access-token>",
						Action:    c.connectTenant,
					},
				},
			},
			{
				Name:  "sync",
				Usage: "Pull customers, products and orders from Shopify",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tenant", Usage: "sync only this tenant ID"},
				},
				Action: c.sync,
			},
			{
				Name:  "deadletters",
				Usage: "Inspect and redrive failed jobs",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List failed jobs, newest first",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 50, Usage: "maximum jobs to show"},
						},
						Action: c.listDeadLetters,
					},
					{
						Name:      "redrive",
						Usage:     "Republish a failed job with a fresh attempt count",
						ArgsUsage: "<failed-job-id>",
						Action:    c.redriveDeadLetter,
					},
				},
			},
		},
	}
}
