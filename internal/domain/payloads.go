package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency is used when a payload carries no currency
	DefaultCurrency = "USD"
	// PlaceholderEmail is stored for customers without an email address
	PlaceholderEmail = "no-email@recorded.com"
)

var validate = validator.New()

// ExternalID is a Shopify identifier. Shopify sends numbers, some tools send strings.
type ExternalID string

// UnmarshalJSON accepts both JSON numbers and strings
func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ExternalID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ExternalID(n.String())
	return nil
}

// VariantPayload is the subset of a product variant the pipeline reads
type VariantPayload struct {
	Price *decimal.Decimal `json:"price"`
}

// ProductPayload is a products/* webhook body or Admin API product
type ProductPayload struct {
	ID       ExternalID       `json:"id" validate:"required"`
	Title    string           `json:"title"`
	Variants []VariantPayload `json:"variants"`
}

// CustomerPayload is a customers/* webhook body, also embedded in orders
type CustomerPayload struct {
	ID         ExternalID       `json:"id" validate:"required"`
	Email      *string          `json:"email"`
	TotalSpent *decimal.Decimal `json:"total_spent"`
}

// OrderPayload is an orders/* webhook body
type OrderPayload struct {
	ID         ExternalID       `json:"id" validate:"required"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	Currency   string           `json:"currency"`
	CreatedAt  *time.Time       `json:"created_at"`
	Customer   *CustomerPayload `json:"customer"`
}

// CheckoutPayload is a checkouts/* webhook body
type CheckoutPayload struct {
	ID                   ExternalID       `json:"id" validate:"required"`
	Email                *string          `json:"email"`
	TotalPrice           *decimal.Decimal `json:"total_price"`
	Currency             string           `json:"currency"`
	AbandonedCheckoutURL string           `json:"abandoned_checkout_url"`
	CompletedAt          *time.Time       `json:"completed_at"`
}

// ProductFields are the stored product attributes after defaulting
type ProductFields struct {
	ExternalID string
	Title      string
	Price      decimal.Decimal
}

// CustomerFields are the stored customer attributes after defaulting
type CustomerFields struct {
	ExternalID string
	Email      string
	TotalSpent decimal.Decimal
}

// OrderFields are the stored order attributes after defaulting
type OrderFields struct {
	ExternalID string
	TotalPrice decimal.Decimal
	Currency   string
	CreatedAt  *time.Time
	Customer   *CustomerFields
}

// CheckoutFields are the stored checkout attributes after defaulting
type CheckoutFields struct {
	ExternalID           string
	Email                *string
	TotalPrice           decimal.Decimal
	Currency             string
	AbandonedCheckoutURL string
	Completed            bool
}

// ParseProducts decodes and validates a product batch
func ParseProducts(items []json.RawMessage) ([]ProductFields, error) {
	out := make([]ProductFields, 0, len(items))
	for i, raw := range items {
		var p ProductPayload
		if err := decodeItem(raw, &p); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		price := decimal.Zero
		if len(p.Variants) > 0 && p.Variants[0].Price != nil {
			price = *p.Variants[0].Price
		}
		out = append(out, ProductFields{
			ExternalID: string(p.ID),
			Title:      p.Title,
			Price:      price,
		})
	}
	return out, nil
}

// ParseCustomers decodes and validates a customer batch
func ParseCustomers(items []json.RawMessage) ([]CustomerFields, error) {
	out := make([]CustomerFields, 0, len(items))
	for i, raw := range items {
		var c CustomerPayload
		if err := decodeItem(raw, &c); err != nil {
			return nil, fmt.Errorf("customer %d: %w", i, err)
		}
		out = append(out, c.fields())
	}
	return out, nil
}

// ParseOrders decodes and validates an order batch, including any embedded customer
func ParseOrders(items []json.RawMessage) ([]OrderFields, error) {
	out := make([]OrderFields, 0, len(items))
	for i, raw := range items {
		var o OrderPayload
		if err := decodeItem(raw, &o); err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		f := OrderFields{
			ExternalID: string(o.ID),
			TotalPrice: orZero(o.TotalPrice),
			Currency:   orDefaultCurrency(o.Currency),
			CreatedAt:  o.CreatedAt,
		}
		if o.Customer != nil {
			if o.Customer.ID == "" {
				return nil, fmt.Errorf("order %d: %w: customer without id", i, ErrMalformedPayload)
			}
			c := o.Customer.fields()
			f.Customer = &c
		}
		out = append(out, f)
	}
	return out, nil
}

// ParseCheckouts decodes and validates a checkout batch
func ParseCheckouts(items []json.RawMessage) ([]CheckoutFields, error) {
	out := make([]CheckoutFields, 0, len(items))
	for i, raw := range items {
		var c CheckoutPayload
		if err := decodeItem(raw, &c); err != nil {
			return nil, fmt.Errorf("checkout %d: %w", i, err)
		}
		var email *string
		if c.Email != nil && *c.Email != "" {
			email = c.Email
		}
		out = append(out, CheckoutFields{
			ExternalID:           string(c.ID),
			Email:                email,
			TotalPrice:           orZero(c.TotalPrice),
			Currency:             orDefaultCurrency(c.Currency),
			AbandonedCheckoutURL: c.AbandonedCheckoutURL,
			Completed:            c.CompletedAt != nil,
		})
	}
	return out, nil
}

func (c CustomerPayload) fields() CustomerFields {
	email := PlaceholderEmail
	if c.Email != nil && *c.Email != "" {
		email = *c.Email
	}
	return CustomerFields{
		ExternalID: string(c.ID),
		Email:      email,
		TotalSpent: orZero(c.TotalSpent),
	}
}

func decodeItem(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func orDefaultCurrency(currency string) string {
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}
