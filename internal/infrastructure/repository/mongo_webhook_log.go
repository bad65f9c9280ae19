package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/repository/entity"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWebhookLog implements ports.WebhookLog using MongoDB
type MongoWebhookLog struct {
	webhooksCollection *mongo.Collection
}

// NewMongoWebhookLog creates a new webhook audit log
func NewMongoWebhookLog(db *mongo.Database) ports.WebhookLog {
	return &MongoWebhookLog{
		webhooksCollection: db.Collection("webhook_events"),
	}
}

// LogWebhook records an accepted webhook
func (r *MongoWebhookLog) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookDocFromDomain(event)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.ReceivedAt.IsZero() {
		doc.ReceivedAt = time.Now().UTC()
	}

	if _, err := r.webhooksCollection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}
	event.ID = doc.ID.Hex()

	return nil
}
