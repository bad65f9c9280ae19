package entity

import (
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoWebhookDoc represents an accepted webhook in MongoDB
type MongoWebhookDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	TenantID   string             `bson:"tenantId"`
	Topic      string             `bson:"topic"`
	JobType    string             `bson:"jobType"`
	Size       int                `bson:"size"`
	ReceivedAt time.Time          `bson:"receivedAt"`
}

// MongoWebhookDocFromDomain converts a domain event to a MongoDB document
func MongoWebhookDocFromDomain(event *domain.WebhookEvent) *MongoWebhookDoc {
	doc := &MongoWebhookDoc{
		TenantID:   event.TenantID,
		Topic:      event.Topic,
		JobType:    string(event.JobType),
		Size:       event.Size,
		ReceivedAt: event.ReceivedAt,
	}
	if event.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(event.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}
