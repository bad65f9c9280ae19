package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// orderListOptions widens the order listing to open, closed and cancelled orders
type orderListOptions struct {
	goshopify.ListOptions
	Status string `url:"status,omitempty"`
}

// Storefront reads full resource lists from the Shopify Admin REST API
type Storefront struct {
	app      goshopify.App
	version  string
	retries  int
	pageSize int
	logger   zerolog.Logger
}

// NewStorefront creates a storefront source adapter
func NewStorefront(cfg config.ShopifyConfig, logger zerolog.Logger) *Storefront {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 250
	}
	return &Storefront{
		app:      goshopify.App{ApiSecret: cfg.APISecret},
		version:  cfg.APIVersion,
		retries:  cfg.MaxRetries,
		pageSize: pageSize,
		logger:   logger,
	}
}

var _ ports.StorefrontSource = (*Storefront)(nil)

// createClient builds a goshopify client bound to the tenant's store and token
func (s *Storefront) createClient(tenant *domain.Tenant) (*goshopify.Client, error) {
	if tenant == nil || !tenant.IsConnected() {
		return nil, domain.ErrTenantNotConnected
	}

	opts := []goshopify.Option{}
	if s.version != "" {
		opts = append(opts, goshopify.WithVersion(s.version))
	}
	if s.retries > 0 {
		opts = append(opts, goshopify.WithRetry(s.retries))
	}

	client, err := goshopify.NewClient(s.app, tenant.StoreURL, tenant.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// FetchCustomers pages through every customer of the tenant's store
func (s *Storefront) FetchCustomers(ctx context.Context, tenant *domain.Tenant, page ports.PageFunc) error {
	client, err := s.createClient(tenant)
	if err != nil {
		return err
	}
	first := goshopify.ListOptions{Limit: s.pageSize}
	err = paginate[goshopify.Customer](ctx, first, client.Customer.ListWithPagination, page)
	if err != nil {
		return fmt.Errorf("failed to fetch customers: %w", err)
	}
	return nil
}

// FetchProducts pages through every product of the tenant's store
func (s *Storefront) FetchProducts(ctx context.Context, tenant *domain.Tenant, page ports.PageFunc) error {
	client, err := s.createClient(tenant)
	if err != nil {
		return err
	}
	first := goshopify.ListOptions{Limit: s.pageSize}
	err = paginate[goshopify.Product](ctx, first, client.Product.ListWithPagination, page)
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}
	return nil
}

// FetchOrders pages through every order of the tenant's store, whatever its status
func (s *Storefront) FetchOrders(ctx context.Context, tenant *domain.Tenant, page ports.PageFunc) error {
	client, err := s.createClient(tenant)
	if err != nil {
		return err
	}
	first := orderListOptions{
		ListOptions: goshopify.ListOptions{Limit: s.pageSize},
		Status:      "any",
	}
	err = paginate[goshopify.Order](ctx, first, client.Order.ListWithPagination, page)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}
	return nil
}

type listFunc[T any] func(ctx context.Context, options interface{}) ([]T, *goshopify.Pagination, error)

// paginate follows the page_info cursor until Shopify reports no next page.
// Follow-up requests carry only the cursor and limit, as the API requires.
func paginate[T any](ctx context.Context, first interface{}, list listFunc[T], page ports.PageFunc) error {
	var options interface{} = first
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, pagination, err := list(ctx, options)
		if err != nil {
			return err
		}

		if len(items) > 0 {
			raw, err := toRaw(items)
			if err != nil {
				return err
			}
			if err := page(raw); err != nil {
				return err
			}
		}

		if pagination == nil || pagination.NextPageOptions == nil || pagination.NextPageOptions.PageInfo == "" {
			return nil
		}
		options = pagination.NextPageOptions
	}
}

// toRaw re-encodes typed resources into the same JSON shape webhooks deliver
func toRaw[T any](items []T) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(items))
	for i := range items {
		b, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode resource: %w", err)
		}
		raw = append(raw, b)
	}
	return raw, nil
}
