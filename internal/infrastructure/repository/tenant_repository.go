package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository/entity"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"gorm.io/gorm"
)

// TenantRepository implements ports.TenantRepository using gorm
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) ports.TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	now := time.Now().UTC()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(entity.TenantRecordFromDomain(tenant)).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// FindByID retrieves a tenant by id
func (r *TenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByStoreURL retrieves a tenant by its myshopify domain
func (r *TenantRepository) FindByStoreURL(ctx context.Context, storeURL string) (*domain.Tenant, error) {
	return r.findOne(ctx, "store_url = ?", storeURL)
}

// AttachCredential stores an Admin API token and marks the tenant connected
func (r *TenantRepository) AttachCredential(ctx context.Context, id string, accessToken string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.TenantRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token": accessToken,
			"status":       string(domain.TenantConnected),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to attach credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// ListConnected returns every tenant with status CONNECTED
func (r *TenantRepository) ListConnected(ctx context.Context) ([]*domain.Tenant, error) {
	var records []entity.TenantRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.TenantConnected)).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	tenants := make([]*domain.Tenant, 0, len(records))
	for i := range records {
		tenants = append(tenants, records[i].ToDomain())
	}
	return tenants, nil
}

func (r *TenantRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Tenant, error) {
	var record entity.TenantRecord
	err := r.db.WithContext(ctx).Where(query, arg).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return record.ToDomain(), nil
}
