package reconcilers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"github.com/rs/zerolog"
)

// ProductReconciler upserts products from products/* jobs
type ProductReconciler struct {
	store  ports.Store
	logger zerolog.Logger
}

// NewProductReconciler creates a new product reconciler
func NewProductReconciler(store ports.Store, logger zerolog.Logger) *ProductReconciler {
	return &ProductReconciler{
		store:  store,
		logger: logger,
	}
}

// CanHandle returns true for PRODUCTS jobs
func (r *ProductReconciler) CanHandle(jobType domain.JobType) bool {
	return jobType == domain.JobProducts
}

// Reconcile upserts every product in the batch. Price comes from the first variant.
func (r *ProductReconciler) Reconcile(ctx context.Context, tenantID string, items []json.RawMessage) (int, error) {
	products, err := domain.ParseProducts(items)
	if err != nil {
		return 0, err
	}

	for i, p := range products {
		if _, err := r.store.UpsertProduct(ctx, tenantID, p); err != nil {
			return i, fmt.Errorf("failed to reconcile product: %w", err)
		}
	}

	r.logger.Info().
		Str("tenantId", tenantID).
		Int("count", len(products)).
		Msg("Reconciled products")
	return len(products), nil
}
