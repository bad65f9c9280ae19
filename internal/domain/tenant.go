package domain

import "time"

// TenantStatus is the onboarding state of a store
type TenantStatus string

const (
	TenantPending   TenantStatus = "PENDING"
	TenantConnected TenantStatus = "CONNECTED"
)

// Tenant represents one connected Shopify store. Every stored entity is scoped to a tenant.
type Tenant struct {
	ID          string       `json:"id"`
	StoreName   string       `json:"store_name"`
	StoreURL    string       `json:"store_url"`
	AccessToken string       `json:"-"`
	Status      TenantStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsConnected reports whether the tenant holds a usable Admin API token
func (t *Tenant) IsConnected() bool {
	return t.Status == TenantConnected && t.AccessToken != ""
}
