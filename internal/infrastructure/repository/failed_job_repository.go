package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository/entity"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"gorm.io/gorm"
)

// FailedJobRepository implements ports.FailedJobRepository on the relational store
type FailedJobRepository struct {
	db *gorm.DB
}

// NewFailedJobRepository creates a new dead-letter repository
func NewFailedJobRepository(db *gorm.DB) ports.FailedJobRepository {
	return &FailedJobRepository{db: db}
}

// Save stores a failed job, assigning an id when missing
func (r *FailedJobRepository) Save(ctx context.Context, job *domain.FailedJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.FailedAt.IsZero() {
		job.FailedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(entity.FailedJobRecordFromDomain(job)).Error; err != nil {
		return fmt.Errorf("failed to save failed job: %w", err)
	}
	return nil
}

// List returns the most recent failed jobs first
func (r *FailedJobRepository) List(ctx context.Context, limit int) ([]*domain.FailedJob, error) {
	var records []entity.FailedJobRecord
	q := r.db.WithContext(ctx).Order("failed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list failed jobs: %w", err)
	}

	jobs := make([]*domain.FailedJob, 0, len(records))
	for i := range records {
		jobs = append(jobs, records[i].ToDomain())
	}
	return jobs, nil
}

// Get retrieves a failed job by id
func (r *FailedJobRepository) Get(ctx context.Context, id string) (*domain.FailedJob, error) {
	var record entity.FailedJobRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get failed job: %w", err)
	}
	return record.ToDomain(), nil
}

// Delete removes a failed job
func (r *FailedJobRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.FailedJobRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete failed job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrFailedJobNotFound
	}
	return nil
}
