package reconcilers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// CheckoutReconciler upserts checkouts from checkouts/* jobs
type CheckoutReconciler struct {
	store  ports.Store
	logger zerolog.Logger
}

// NewCheckoutReconciler creates a new checkout reconciler
func NewCheckoutReconciler(store ports.Store, logger zerolog.Logger) *CheckoutReconciler {
	return &CheckoutReconciler{
		store:  store,
		logger: logger,
	}
}

// CanHandle returns true for CHECKOUTS jobs
func (r *CheckoutReconciler) CanHandle(jobType domain.JobType) bool {
	return jobType == domain.JobCheckouts
}

// Reconcile upserts every checkout in the batch. updatedAt moves to now on each call.
func (r *CheckoutReconciler) Reconcile(ctx context.Context, tenantID string, items []json.RawMessage) (int, error) {
	checkouts, err := domain.ParseCheckouts(items)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for i, c := range checkouts {
		if _, err := r.store.UpsertCheckout(ctx, tenantID, c); err != nil {
			return i, fmt.Errorf("failed to reconcile checkout: %w", err)
		}
		if !c.Completed {
			abandoned++
		}
	}

	r.logger.Info().
		Str("tenantId", tenantID).
		Int("count", len(checkouts)).
		Int("open", abandoned).
		Msg("Reconciled checkouts")
	return len(checkouts), nil
}
