package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/domain"

	"github.com/rs/zerolog"
)

// Reconciler applies one job type's payload to storage
type Reconciler interface {
	CanHandle(jobType domain.JobType) bool
	// Reconcile returns the number of items written before any error
	Reconcile(ctx context.Context, tenantID string, items []json.RawMessage) (int, error)
}

// ReconcileDispatcher routes job payloads to the registered reconcilers
type ReconcileDispatcher struct {
	reconcilers []Reconciler
	logger      zerolog.Logger
}

// NewReconcileDispatcher creates an empty dispatcher
func NewReconcileDispatcher(logger zerolog.Logger) *ReconcileDispatcher {
	return &ReconcileDispatcher{logger: logger}
}

// RegisterReconciler adds a reconciler. The first registered match wins.
func (d *ReconcileDispatcher) RegisterReconciler(r Reconciler) {
	d.reconcilers = append(d.reconcilers, r)
}

// Dispatch reconciles items with the reconciler for jobType
func (d *ReconcileDispatcher) Dispatch(ctx context.Context, jobType domain.JobType, tenantID string, items []json.RawMessage) (int, error) {
	for _, r := range d.reconcilers {
		if r.CanHandle(jobType) {
			return r.Reconcile(ctx, tenantID, items)
		}
	}
	return 0, fmt.Errorf("%w: %s", domain.ErrUnknownJobType, jobType)
}

// Handles reports whether any reconciler accepts jobType
func (d *ReconcileDispatcher) Handles(jobType domain.JobType) bool {
	for _, r := range d.reconcilers {
		if r.CanHandle(jobType) {
			return true
		}
	}
	return false
}
