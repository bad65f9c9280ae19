package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository/entity"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFailedJobRepository implements ports.FailedJobRepository using MongoDB
type MongoFailedJobRepository struct {
	collection *mongo.Collection
}

// NewMongoFailedJobRepository creates a new MongoDB dead-letter repository
func NewMongoFailedJobRepository(db *mongo.Database) ports.FailedJobRepository {
	return &MongoFailedJobRepository{
		collection: db.Collection("failed_jobs"),
	}
}

// EnsureIndexes creates the listing index. Safe to call repeatedly.
func (r *MongoFailedJobRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "failedAt", Value: -1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create failed job index: %w", err)
	}
	return nil
}

// Save stores a failed job, assigning an id when missing
func (r *MongoFailedJobRepository) Save(ctx context.Context, job *domain.FailedJob) error {
	doc := entity.MongoFailedJobDocFromDomain(job)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.FailedAt.IsZero() {
		doc.FailedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save failed job: %w", err)
	}
	job.ID = doc.ID.Hex()
	job.FailedAt = doc.FailedAt

	return nil
}

// List returns the most recent failed jobs first
func (r *MongoFailedJobRepository) List(ctx context.Context, limit int) ([]*domain.FailedJob, error) {
	opts := options.Find().SetSort(bson.D{{Key: "failedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []*domain.FailedJob
	for cursor.Next(ctx) {
		var doc entity.MongoFailedJobDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode failed job: %w", err)
		}
		jobs = append(jobs, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return jobs, nil
}

// Get retrieves a failed job by id
func (r *MongoFailedJobRepository) Get(ctx context.Context, id string) (*domain.FailedJob, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc entity.MongoFailedJobDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get failed job: %w", err)
	}

	return doc.ToDomain(), nil
}

// Delete removes a failed job
func (r *MongoFailedJobRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrFailedJobNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete failed job: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrFailedJobNotFound
	}
	return nil
}
