package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository/entity"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements ports.Store on gorm. Every query is filtered by tenant_id.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a new analytics store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// UpsertCustomer inserts or updates a customer by (external id, tenant)
func (s *Store) UpsertCustomer(ctx context.Context, tenantID string, c domain.CustomerFields) (*domain.Customer, error) {
	now := s.now()
	record := &entity.CustomerRecord{
		ID:                 uuid.NewString(),
		TenantID:           tenantID,
		ExternalCustomerID: c.ExternalID,
		Email:              c.Email,
		TotalSpent:         c.TotalSpent,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err := s.upsert(ctx, record, "external_customer_id", []string{"email", "total_spent", "updated_at"})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer %s: %w", c.ExternalID, err)
	}
	return s.FindCustomer(ctx, tenantID, c.ExternalID)
}

// UpsertProduct inserts or updates a product by (external id, tenant)
func (s *Store) UpsertProduct(ctx context.Context, tenantID string, p domain.ProductFields) (*domain.Product, error) {
	now := s.now()
	record := &entity.ProductRecord{
		ID:                uuid.NewString(),
		TenantID:          tenantID,
		ExternalProductID: p.ExternalID,
		Title:             p.Title,
		Price:             p.Price,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := s.upsert(ctx, record, "external_product_id", []string{"title", "price", "updated_at"})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product %s: %w", p.ExternalID, err)
	}
	return s.FindProduct(ctx, tenantID, p.ExternalID)
}

// UpsertOrder inserts or updates an order by (external id, tenant). created_at is kept on update.
func (s *Store) UpsertOrder(ctx context.Context, tenantID string, o domain.OrderFields, customerID *string) (*domain.Order, error) {
	now := s.now()
	createdAt := now
	if o.CreatedAt != nil {
		createdAt = o.CreatedAt.UTC()
	}
	record := &entity.OrderRecord{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		ExternalOrderID: o.ExternalID,
		TotalPrice:      o.TotalPrice,
		Currency:        o.Currency,
		CustomerID:      customerID,
		CreatedAt:       createdAt,
		UpdatedAt:       now,
	}
	err := s.upsert(ctx, record, "external_order_id", []string{"total_price", "currency", "customer_id", "updated_at"})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert order %s: %w", o.ExternalID, err)
	}
	return s.FindOrder(ctx, tenantID, o.ExternalID)
}

// UpsertCheckout inserts or updates a checkout by (external id, tenant). updated_at always moves to now.
func (s *Store) UpsertCheckout(ctx context.Context, tenantID string, c domain.CheckoutFields) (*domain.Checkout, error) {
	now := s.now()
	record := &entity.CheckoutRecord{
		ID:                   uuid.NewString(),
		TenantID:             tenantID,
		ExternalCheckoutID:   c.ExternalID,
		Email:                c.Email,
		TotalPrice:           c.TotalPrice,
		Currency:             c.Currency,
		Completed:            c.Completed,
		AbandonedCheckoutURL: c.AbandonedCheckoutURL,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	err := s.upsert(ctx, record, "external_checkout_id", []string{
		"email", "total_price", "currency", "completed", "abandoned_checkout_url", "updated_at",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert checkout %s: %w", c.ExternalID, err)
	}
	return s.FindCheckout(ctx, tenantID, c.ExternalID)
}

// FindCustomer returns nil, nil when the customer does not exist for the tenant
func (s *Store) FindCustomer(ctx context.Context, tenantID, externalID string) (*domain.Customer, error) {
	var record entity.CustomerRecord
	found, err := s.first(ctx, &record, "external_customer_id", tenantID, externalID)
	if err != nil || !found {
		return nil, err
	}
	return record.ToDomain(), nil
}

// FindProduct returns nil, nil when the product does not exist for the tenant
func (s *Store) FindProduct(ctx context.Context, tenantID, externalID string) (*domain.Product, error) {
	var record entity.ProductRecord
	found, err := s.first(ctx, &record, "external_product_id", tenantID, externalID)
	if err != nil || !found {
		return nil, err
	}
	return record.ToDomain(), nil
}

// FindOrder returns nil, nil when the order does not exist for the tenant
func (s *Store) FindOrder(ctx context.Context, tenantID, externalID string) (*domain.Order, error) {
	var record entity.OrderRecord
	found, err := s.first(ctx, &record, "external_order_id", tenantID, externalID)
	if err != nil || !found {
		return nil, err
	}
	return record.ToDomain(), nil
}

// FindCheckout returns nil, nil when the checkout does not exist for the tenant
func (s *Store) FindCheckout(ctx context.Context, tenantID, externalID string) (*domain.Checkout, error) {
	var record entity.CheckoutRecord
	found, err := s.first(ctx, &record, "external_checkout_id", tenantID, externalID)
	if err != nil || !found {
		return nil, err
	}
	return record.ToDomain(), nil
}

// WithinTx runs fn inside a single database transaction
func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, now: s.now})
	})
}

func (s *Store) upsert(ctx context.Context, record interface{}, externalColumn string, updates []string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: externalColumn}, {Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(record).Error
}

func (s *Store) first(ctx context.Context, dest interface{}, externalColumn, tenantID, externalID string) (bool, error) {
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND "+externalColumn+" = ?", tenantID, externalID).
		First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", externalColumn, err)
	}
	return true, nil
}
