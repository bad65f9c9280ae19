package entity

import (
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
)

// TenantRecord is the tenants table row
type TenantRecord struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	StoreName   string    `gorm:"type:varchar(255);not null"`
	StoreURL    string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_tenants_store_url"`
	AccessToken string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name
func (TenantRecord) TableName() string { return "tenants" }

// ToDomain converts the row to a domain entity
func (r *TenantRecord) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:          r.ID,
		StoreName:   r.StoreName,
		StoreURL:    r.StoreURL,
		AccessToken: r.AccessToken,
		Status:      domain.TenantStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// TenantRecordFromDomain converts a domain entity to a row
func TenantRecordFromDomain(t *domain.Tenant) *TenantRecord {
	return &TenantRecord{
		ID:          t.ID,
		StoreName:   t.StoreName,
		StoreURL:    t.StoreURL,
		AccessToken: t.AccessToken,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
