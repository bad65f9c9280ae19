package main

import (
	"testing"

	"github.com/sundram7865/shopify-insights/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewDispatcher_HandlesEveryJobType(t *testing.T) {
	d := newDispatcher(nil, zerolog.Nop())

	for _, jobType := range []domain.JobType{domain.JobProducts, domain.JobCustomers, domain.JobOrders, domain.JobCheckouts} {
		assert.True(t, d.Handles(jobType), string(jobType))
	}
	assert.False(t, d.Handles(domain.JobType("APP")))
}
