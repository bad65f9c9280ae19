package ports

import (
	"context"
	"encoding/json"

	"github.com/sundram7865/shopify-insights/internal/domain"
)

// PageFunc receives one page of raw Admin API resources
type PageFunc func(items []json.RawMessage) error

// StorefrontSource reads full resource lists from a tenant's store
type StorefrontSource interface {
	FetchCustomers(ctx context.Context, tenant *domain.Tenant, page PageFunc) error
	FetchProducts(ctx context.Context, tenant *domain.Tenant, page PageFunc) error
	FetchOrders(ctx context.Context, tenant *domain.Tenant, page PageFunc) error
}
