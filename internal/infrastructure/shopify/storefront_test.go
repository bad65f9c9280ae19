package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate_FollowsCursorUntilLastPage(t *testing.T) {
	var seen []interface{}
	list := func(ctx context.Context, options interface{}) ([]goshopify.Customer, *goshopify.Pagination, error) {
		seen = append(seen, options)
		switch len(seen) {
		case 1:
			return []goshopify.Customer{{Id: 1}, {Id: 2}}, &goshopify.Pagination{
				NextPageOptions: &goshopify.ListOptions{PageInfo: "cursor-2", Limit: 2},
			}, nil
		default:
			return []goshopify.Customer{{Id: 3}}, &goshopify.Pagination{}, nil
		}
	}

	var pages [][]json.RawMessage
	err := paginate[goshopify.Customer](context.Background(), goshopify.ListOptions{Limit: 2}, list, func(items []json.RawMessage) error {
		pages = append(pages, items)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, goshopify.ListOptions{Limit: 2}, seen[0])
	next, ok := seen[1].(*goshopify.ListOptions)
	require.True(t, ok)
	assert.Equal(t, "cursor-2", next.PageInfo)

	require.Len(t, pages, 2)
	assert.Len(t, pages[0], 2)
	assert.Len(t, pages[1], 1)
}

func TestPaginate_StopsOnPageError(t *testing.T) {
	calls := 0
	list := func(ctx context.Context, options interface{}) ([]goshopify.Product, *goshopify.Pagination, error) {
		calls++
		return []goshopify.Product{{Id: 1}}, &goshopify.Pagination{
			NextPageOptions: &goshopify.ListOptions{PageInfo: "more"},
		}, nil
	}
	boom := errors.New("write failed")

	err := paginate[goshopify.Product](context.Background(), goshopify.ListOptions{}, list, func([]json.RawMessage) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestPaginate_PropagatesListError(t *testing.T) {
	boom := errors.New("429 too many requests")
	list := func(ctx context.Context, options interface{}) ([]goshopify.Order, *goshopify.Pagination, error) {
		return nil, nil, boom
	}

	err := paginate[goshopify.Order](context.Background(), orderListOptions{}, list, func([]json.RawMessage) error {
		t.Fatal("page must not be called")
		return nil
	})

	assert.ErrorIs(t, err, boom)
}

func TestPaginate_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	list := func(ctx context.Context, options interface{}) ([]goshopify.Order, *goshopify.Pagination, error) {
		t.Fatal("list must not be called")
		return nil, nil, nil
	}

	err := paginate[goshopify.Order](ctx, orderListOptions{}, list, func([]json.RawMessage) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestToRaw_OrdersParseLikeWebhookBodies(t *testing.T) {
	total := decimal.RequireFromString("42.50")
	spent := decimal.RequireFromString("100.00")
	orders := []goshopify.Order{
		{
			Id:         5001,
			TotalPrice: &total,
			Currency:   "EUR",
			Customer:   &goshopify.Customer{Id: 77, Email: "jane@example.com", TotalSpent: &spent},
		},
		{Id: 5002},
	}

	raw, err := toRaw(orders)
	require.NoError(t, err)

	parsed, err := domain.ParseOrders(raw)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, "5001", parsed[0].ExternalID)
	assert.True(t, total.Equal(parsed[0].TotalPrice))
	assert.Equal(t, "EUR", parsed[0].Currency)
	require.NotNil(t, parsed[0].Customer)
	assert.Equal(t, "77", parsed[0].Customer.ExternalID)
	assert.Equal(t, "jane@example.com", parsed[0].Customer.Email)

	assert.Equal(t, "5002", parsed[1].ExternalID)
	assert.Equal(t, domain.DefaultCurrency, parsed[1].Currency)
	assert.Nil(t, parsed[1].Customer)
}

func TestStorefront_RejectsUnconnectedTenant(t *testing.T) {
	s := NewStorefront(config.ShopifyConfig{APIVersion: "2024-01", PageSize: 250}, zerolog.Nop())
	tenant := &domain.Tenant{ID: "t1", StoreURL: "demo.myshopify.com", Status: domain.TenantPending}

	err := s.FetchOrders(context.Background(), tenant, func([]json.RawMessage) error { return nil })

	assert.ErrorIs(t, err, domain.ErrTenantNotConnected)
}

func TestNewStorefront_ClampsPageSize(t *testing.T) {
	assert.Equal(t, 250, NewStorefront(config.ShopifyConfig{PageSize: 1000}, zerolog.Nop()).pageSize)
	assert.Equal(t, 250, NewStorefront(config.ShopifyConfig{}, zerolog.Nop()).pageSize)
	assert.Equal(t, 50, NewStorefront(config.ShopifyConfig{PageSize: 50}, zerolog.Nop()).pageSize)
}
