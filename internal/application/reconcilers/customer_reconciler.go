package reconcilers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// CustomerReconciler upserts customers from customers/* jobs
type CustomerReconciler struct {
	store  ports.Store
	logger zerolog.Logger
}

// NewCustomerReconciler creates a new customer reconciler
func NewCustomerReconciler(store ports.Store, logger zerolog.Logger) *CustomerReconciler {
	return &CustomerReconciler{
		store:  store,
		logger: logger,
	}
}

// CanHandle returns true for CUSTOMERS jobs
func (r *CustomerReconciler) CanHandle(jobType domain.JobType) bool {
	return jobType == domain.JobCustomers
}

// Reconcile upserts every customer in the batch
func (r *CustomerReconciler) Reconcile(ctx context.Context, tenantID string, items []json.RawMessage) (int, error) {
	customers, err := domain.ParseCustomers(items)
	if err != nil {
		return 0, err
	}

	for i, c := range customers {
		if _, err := r.store.UpsertCustomer(ctx, tenantID, c); err != nil {
			return i, fmt.Errorf("failed to reconcile customer: %w", err)
		}
	}

	r.logger.Info().
		Str("tenantId", tenantID).
		Int("count", len(customers)).
		Msg("Reconciled customers")
	return len(customers), nil
}
