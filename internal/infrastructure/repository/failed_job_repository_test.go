package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sundram7865/shopify-insights/internal/domain"
)

func TestFailedJobRepository_SaveListGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewFailedJobRepository(newTestDB(t))

	older := &domain.FailedJob{
		Type: domain.JobOrders, TenantID: "t1", Body: []byte(`{"type":"ORDERS"}`),
		Attempts: 3, LastError: "boom", FailedAt: time.Now().Add(-time.Hour).UTC(),
	}
	newer := &domain.FailedJob{Type: domain.JobProducts, TenantID: "t2", Body: []byte(`{}`), Attempts: 1}
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))
	assert.NotEmpty(t, older.ID)
	assert.False(t, newer.FailedAt.IsZero())

	jobs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.ID, jobs[0].ID)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := repo.Get(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "boom", got.LastError)
	assert.Equal(t, []byte(`{"type":"ORDERS"}`), got.Body)

	require.NoError(t, repo.Delete(ctx, older.ID))
	gone, err := repo.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, repo.Delete(ctx, older.ID), domain.ErrFailedJobNotFound)
}
