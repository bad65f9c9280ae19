package ports

import (
	"context"

	"github.com/sundram7865/shopify-insights/internal/domain"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	// FindByID returns nil, nil when the tenant does not exist
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	FindByStoreURL(ctx context.Context, storeURL string) (*domain.Tenant, error)
	AttachCredential(ctx context.Context, id string, accessToken string) error
	ListConnected(ctx context.Context) ([]*domain.Tenant, error)
}

// Store defines tenant-scoped upserts of analytics entities.
// All upserts are keyed on (external id, tenant id) and are idempotent.
type Store interface {
	UpsertCustomer(ctx context.Context, tenantID string, c domain.CustomerFields) (*domain.Customer, error)
	UpsertProduct(ctx context.Context, tenantID string, p domain.ProductFields) (*domain.Product, error)
	UpsertOrder(ctx context.Context, tenantID string, o domain.OrderFields, customerID *string) (*domain.Order, error)
	UpsertCheckout(ctx context.Context, tenantID string, c domain.CheckoutFields) (*domain.Checkout, error)

	FindCustomer(ctx context.Context, tenantID, externalID string) (*domain.Customer, error)
	FindProduct(ctx context.Context, tenantID, externalID string) (*domain.Product, error)
	FindOrder(ctx context.Context, tenantID, externalID string) (*domain.Order, error)
	FindCheckout(ctx context.Context, tenantID, externalID string) (*domain.Checkout, error)

	// WithinTx runs fn against a Store bound to a single transaction
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// FailedJobRepository stores jobs that exhausted their attempts
type FailedJobRepository interface {
	Save(ctx context.Context, job *domain.FailedJob) error
	List(ctx context.Context, limit int) ([]*domain.FailedJob, error)
	// Get returns nil, nil when the id is unknown
	Get(ctx context.Context, id string) (*domain.FailedJob, error)
	Delete(ctx context.Context, id string) error
}

// WebhookLog records accepted webhooks for auditing
type WebhookLog interface {
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}
