package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// SyncResult counts the entities written by one tenant sync
type SyncResult struct {
	TenantID  string
	Customers int
	Products  int
	Orders    int
}

// SyncService pulls full resource lists from Shopify and feeds them to the reconcilers
// directly, without going through the queue.
type SyncService struct {
	tenants    ports.TenantRepository
	source     ports.StorefrontSource
	dispatcher *ReconcileDispatcher
	logger     zerolog.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(
	tenants ports.TenantRepository,
	source ports.StorefrontSource,
	dispatcher *ReconcileDispatcher,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		tenants:    tenants,
		source:     source,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SyncTenant syncs customers, then products, then orders for one tenant
func (s *SyncService) SyncTenant(ctx context.Context, tenantID string) (*SyncResult, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	if !tenant.IsConnected() {
		return nil, domain.ErrTenantNotConnected
	}

	result := &SyncResult{TenantID: tenant.ID}
	log := s.logger.With().Str("tenantId", tenant.ID).Str("store", tenant.StoreURL).Logger()
	log.Info().Msg("Starting full sync")

	steps := []struct {
		name    string
		jobType domain.JobType
		fetch   func(context.Context, *domain.Tenant, ports.PageFunc) error
		count   *int
	}{
		{"customers", domain.JobCustomers, s.source.FetchCustomers, &result.Customers},
		{"products", domain.JobProducts, s.source.FetchProducts, &result.Products},
		{"orders", domain.JobOrders, s.source.FetchOrders, &result.Orders},
	}

	for _, step := range steps {
		err := step.fetch(ctx, tenant, func(items []json.RawMessage) error {
			n, err := s.dispatcher.Dispatch(ctx, step.jobType, tenant.ID, items)
			*step.count += n
			return err
		})
		if err != nil {
			return result, fmt.Errorf("failed to sync %s: %w", step.name, err)
		}
		log.Info().Str("resource", step.name).Int("count", *step.count).Msg("Synced resource")
	}

	log.Info().Msg("Full sync completed")
	return result, nil
}

// SyncAll syncs every connected tenant, continuing past individual failures
func (s *SyncService) SyncAll(ctx context.Context) ([]*SyncResult, error) {
	tenants, err := s.tenants.ListConnected(ctx)
	if err != nil {
		return nil, err
	}

	var (
		results []*SyncResult
		errs    []error
	)
	for _, tenant := range tenants {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		result, err := s.SyncTenant(ctx, tenant.ID)
		if err != nil {
			s.logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Sync failed")
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenant.ID, err))
		}
		if result != nil {
			results = append(results, result)
		}
	}
	return results, errors.Join(errs...)
}
