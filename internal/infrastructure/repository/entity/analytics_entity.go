package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sundram7865/shopify-insights/internal/domain"
)

// CustomerRecord is the customers table row
type CustomerRecord struct {
	ID                 string          `gorm:"primaryKey;type:varchar(36)"`
	TenantID           string          `gorm:"type:varchar(36);not null;uniqueIndex:uq_customers_external_tenant,priority:2;index:idx_customers_tenant"`
	ExternalCustomerID string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_customers_external_tenant,priority:1"`
	Email              string          `gorm:"type:varchar(320);not null"`
	TotalSpent         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name
func (CustomerRecord) TableName() string { return "customers" }

// ToDomain converts the row to a domain entity
func (r *CustomerRecord) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		ExternalCustomerID: r.ExternalCustomerID,
		Email:              r.Email,
		TotalSpent:         r.TotalSpent,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// ProductRecord is the products table row
type ProductRecord struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)"`
	TenantID          string          `gorm:"type:varchar(36);not null;uniqueIndex:uq_products_external_tenant,priority:2;index:idx_products_tenant"`
	ExternalProductID string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_products_external_tenant,priority:1"`
	Title             string          `gorm:"type:text;not null"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name
func (ProductRecord) TableName() string { return "products" }

// ToDomain converts the row to a domain entity
func (r *ProductRecord) ToDomain() *domain.Product {
	return &domain.Product{
		ID:                r.ID,
		TenantID:          r.TenantID,
		ExternalProductID: r.ExternalProductID,
		Title:             r.Title,
		Price:             r.Price,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// OrderRecord is the orders table row. CreatedAt is the order's placement time.
type OrderRecord struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)"`
	TenantID        string          `gorm:"type:varchar(36);not null;uniqueIndex:uq_orders_external_tenant,priority:2;index:idx_orders_tenant_created,priority:1"`
	ExternalOrderID string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_orders_external_tenant,priority:1"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"type:varchar(8);not null"`
	CustomerID      *string         `gorm:"type:varchar(36);index:idx_orders_customer"`
	CreatedAt       time.Time       `gorm:"not null;index:idx_orders_tenant_created,priority:2"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name
func (OrderRecord) TableName() string { return "orders" }

// ToDomain converts the row to a domain entity
func (r *OrderRecord) ToDomain() *domain.Order {
	return &domain.Order{
		ID:              r.ID,
		TenantID:        r.TenantID,
		ExternalOrderID: r.ExternalOrderID,
		TotalPrice:      r.TotalPrice,
		Currency:        r.Currency,
		CustomerID:      r.CustomerID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// CheckoutRecord is the checkouts table row
type CheckoutRecord struct {
	ID                   string          `gorm:"primaryKey;type:varchar(36)"`
	TenantID             string          `gorm:"type:varchar(36);not null;uniqueIndex:uq_checkouts_external_tenant,priority:2;index:idx_checkouts_tenant"`
	ExternalCheckoutID   string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_checkouts_external_tenant,priority:1"`
	Email                *string         `gorm:"type:varchar(320)"`
	TotalPrice           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency             string          `gorm:"type:varchar(8);not null"`
	Completed            bool            `gorm:"not null"`
	AbandonedCheckoutURL string          `gorm:"type:text"`
	CreatedAt            time.Time       `gorm:"not null"`
	UpdatedAt            time.Time       `gorm:"not null"`
}

// TableName returns the table name
func (CheckoutRecord) TableName() string { return "checkouts" }

// ToDomain converts the row to a domain entity
func (r *CheckoutRecord) ToDomain() *domain.Checkout {
	return &domain.Checkout{
		ID:                   r.ID,
		TenantID:             r.TenantID,
		ExternalCheckoutID:   r.ExternalCheckoutID,
		Email:                r.Email,
		TotalPrice:           r.TotalPrice,
		Currency:             r.Currency,
		Completed:            r.Completed,
		AbandonedCheckoutURL: r.AbandonedCheckoutURL,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}
