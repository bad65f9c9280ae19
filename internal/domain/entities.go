package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a tenant's shopper, keyed by (ExternalCustomerID, TenantID)
type Customer struct {
	ID                 string
	TenantID           string
	ExternalCustomerID string
	Email              string
	TotalSpent         decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Product is a catalog item, keyed by (ExternalProductID, TenantID)
type Product struct {
	ID                string
	TenantID          string
	ExternalProductID string
	Title             string
	Price             decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Order is a placed order. CustomerID is the internal customer id, nil for guest checkouts.
type Order struct {
	ID              string
	TenantID        string
	ExternalOrderID string
	TotalPrice      decimal.Decimal
	Currency        string
	CustomerID      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Checkout is a started checkout, possibly abandoned
type Checkout struct {
	ID                   string
	TenantID             string
	ExternalCheckoutID   string
	Email                *string
	TotalPrice           decimal.Decimal
	Currency             string
	Completed            bool
	AbandonedCheckoutURL string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
