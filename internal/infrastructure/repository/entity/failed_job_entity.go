package entity

import (
	"time"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FailedJobRecord is the failed_jobs table row
type FailedJobRecord struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Type      string    `gorm:"type:varchar(32);not null"`
	TenantID  string    `gorm:"type:varchar(36);index:idx_failed_jobs_tenant"`
	Body      []byte    `gorm:"not null"`
	Attempts  int       `gorm:"not null"`
	LastError string    `gorm:"type:text"`
	FailedAt  time.Time `gorm:"not null;index:idx_failed_jobs_failed_at"`
}

// TableName returns the table name
func (FailedJobRecord) TableName() string { return "failed_jobs" }

// ToDomain converts the row to a domain entity
func (r *FailedJobRecord) ToDomain() *domain.FailedJob {
	return &domain.FailedJob{
		ID:        r.ID,
		Type:      domain.JobType(r.Type),
		TenantID:  r.TenantID,
		Body:      r.Body,
		Attempts:  r.Attempts,
		LastError: r.LastError,
		FailedAt:  r.FailedAt,
	}
}

// FailedJobRecordFromDomain converts a domain entity to a row
func FailedJobRecordFromDomain(j *domain.FailedJob) *FailedJobRecord {
	return &FailedJobRecord{
		ID:        j.ID,
		Type:      string(j.Type),
		TenantID:  j.TenantID,
		Body:      j.Body,
		Attempts:  j.Attempts,
		LastError: j.LastError,
		FailedAt:  j.FailedAt,
	}
}

// MongoFailedJobDoc represents a failed job in MongoDB
type MongoFailedJobDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Type      string             `bson:"type"`
	TenantID  string             `bson:"tenantId"`
	Body      []byte             `bson:"body"`
	Attempts  int                `bson:"attempts"`
	LastError string             `bson:"lastError"`
	FailedAt  time.Time          `bson:"failedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoFailedJobDoc) ToDomain() *domain.FailedJob {
	return &domain.FailedJob{
		ID:        d.ID.Hex(),
		Type:      domain.JobType(d.Type),
		TenantID:  d.TenantID,
		Body:      d.Body,
		Attempts:  d.Attempts,
		LastError: d.LastError,
		FailedAt:  d.FailedAt,
	}
}

// MongoFailedJobDocFromDomain converts a domain entity to a MongoDB document
func MongoFailedJobDocFromDomain(j *domain.FailedJob) *MongoFailedJobDoc {
	doc := &MongoFailedJobDoc{
		Type:      string(j.Type),
		TenantID:  j.TenantID,
		Body:      j.Body,
		Attempts:  j.Attempts,
		LastError: j.LastError,
		FailedAt:  j.FailedAt,
	}

	if j.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(j.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
