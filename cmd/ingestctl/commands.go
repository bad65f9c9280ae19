package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sundram7865/shopify-insights/internal/application"
	"github.com/sundram7865/shopify-insights/internal/application/reconcilers"
	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/queue"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository"
	shopifyinfra "github.com/sundram7865/shopify-insights/internal/infrastructure/shopify"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

type commands struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer
}

func (c *commands) openDB() (*gorm.DB, error) {
	return repository.OpenPostgres(c.cfg.Database)
}

func (c *commands) migrator() (*repository.Migrator, *gorm.DB, error) {
	db, err := c.openDB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		_ = repository.Close(db)
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := repository.NewMigrator(sqlDB, c.logger)
	if err != nil {
		_ = repository.Close(db)
		return nil, nil, err
	}
	return m, db, nil
}

func (c *commands) migrateUp(ctx context.Context, cmd *cli.Command) error {
	m, db, err := c.migrator()
	if err != nil {
		return err
	}
	defer repository.Close(db)
	return m.Up()
}

func (c *commands) migrateDown(ctx context.Context, cmd *cli.Command) error {
	m, db, err := c.migrator()
	if err != nil {
		return err
	}
	defer repository.Close(db)
	return m.Down()
}

func (c *commands) registerTenant(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: tenants register %s", cmd.ArgsUsage)
	}
	db, err := c.openDB()
	if err != nil {
		return err
	}
	defer repository.Close(db)

	svc := application.NewTenantService(repository.NewTenantRepository(db), c.logger)
	tenant, err := svc.Register(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}
	return c.print(tenant)
}

func (c *commands) connectTenant(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: tenants connect %s", cmd.ArgsUsage)
	}
	db, err := c.openDB()
	if err != nil {
		return err
	}
	defer repository.Close(db)

	svc := application.NewTenantService(repository.NewTenantRepository(db), c.logger)
	if err := svc.Connect(ctx, cmd.Args().Get(0), cmd.Args().Get(1)); err != nil {
		return err
	}
	c.logger.Info().Str("tenantId", cmd.Args().Get(0)).Msg("Tenant connected")
	return nil
}

func (c *commands) sync(ctx context.Context, cmd *cli.Command) error {
	db, err := c.openDB()
	if err != nil {
		return err
	}
	defer repository.Close(db)

	store := repository.NewStore(db)
	dispatcher := application.NewReconcileDispatcher(c.logger)
	dispatcher.RegisterReconciler(reconcilers.NewProductReconciler(store, c.logger))
	dispatcher.RegisterReconciler(reconcilers.NewCustomerReconciler(store, c.logger))
	dispatcher.RegisterReconciler(reconcilers.NewOrderReconciler(store, c.logger))

	svc := application.NewSyncService(
		repository.NewTenantRepository(db),
		shopifyinfra.NewStorefront(c.cfg.Shopify, c.logger),
		dispatcher,
		c.logger,
	)

	if tenantID := cmd.String("tenant"); tenantID != "" {
		result, err := svc.SyncTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		return c.print(result)
	}

	results, err := svc.SyncAll(ctx)
	if printErr := c.print(results); printErr != nil {
		return printErr
	}
	return err
}

func (c *commands) listDeadLetters(ctx context.Context, cmd *cli.Command) error {
	svc, cleanup, err := c.deadLetterService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	jobs, err := svc.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	return c.print(jobs)
}

func (c *commands) redriveDeadLetter(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: deadletters redrive %s", cmd.ArgsUsage)
	}
	svc, cleanup, err := c.deadLetterService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	job, err := svc.Redrive(ctx, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	c.logger.Info().Str("type", string(job.Type)).Str("tenantId", job.TenantID).Msg("Job redriven")
	return nil
}

// deadLetterService wires the failed-jobs store and the queue publisher
func (c *commands) deadLetterService(ctx context.Context) (*application.DeadLetterService, func(), error) {
	db, err := c.openDB()
	if err != nil {
		return nil, nil, err
	}
	failedJobs, closeStore, err := repository.OpenDeadLetterStore(ctx, c.cfg, db)
	if err != nil {
		_ = repository.Close(db)
		return nil, nil, err
	}
	q, err := queue.OpenDurable(ctx, c.cfg.Queue, c.logger)
	if err != nil {
		closeStore()
		_ = repository.Close(db)
		return nil, nil, err
	}

	cleanup := func() {
		_ = q.Close()
		closeStore()
		_ = repository.Close(db)
	}
	return application.NewDeadLetterService(failedJobs, q, c.logger), cleanup, nil
}

func (c *commands) print(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
