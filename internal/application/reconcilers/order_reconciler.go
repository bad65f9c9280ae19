package reconcilers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// OrderReconciler upserts orders and their embedded customers from orders/* jobs
type OrderReconciler struct {
	store  ports.Store
	logger zerolog.Logger
}

// NewOrderReconciler creates a new order reconciler
func NewOrderReconciler(store ports.Store, logger zerolog.Logger) *OrderReconciler {
	return &OrderReconciler{
		store:  store,
		logger: logger,
	}
}

// CanHandle returns true for ORDERS jobs
func (r *OrderReconciler) CanHandle(jobType domain.JobType) bool {
	return jobType == domain.JobOrders
}

// Reconcile upserts each order. The embedded customer is upserted first, in the same
// transaction, so the order row always links to a stored customer.
func (r *OrderReconciler) Reconcile(ctx context.Context, tenantID string, items []json.RawMessage) (int, error) {
	orders, err := domain.ParseOrders(items)
	if err != nil {
		return 0, err
	}

	for i, o := range orders {
		err := r.store.WithinTx(ctx, func(tx ports.Store) error {
			var customerID *string
			if o.Customer != nil {
				customer, err := tx.UpsertCustomer(ctx, tenantID, *o.Customer)
				if err != nil {
					return err
				}
				customerID = &customer.ID
			}
			_, err := tx.UpsertOrder(ctx, tenantID, o, customerID)
			return err
		})
		if err != nil {
			return i, fmt.Errorf("failed to reconcile order: %w", err)
		}

		r.logger.Debug().
			Str("tenantId", tenantID).
			Str("orderId", o.ExternalID).
			Bool("guest", o.Customer == nil).
			Msg("Reconciled order")
	}

	r.logger.Info().
		Str("tenantId", tenantID).
		Int("count", len(orders)).
		Msg("Reconciled orders")
	return len(orders), nil
}
