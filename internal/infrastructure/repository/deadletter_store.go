package repository

import (
	"context"
	"fmt"

	"github.com/sundram7865/shopify-insights/internal/config"
	"github.com/sundram7865/shopify-insights/internal/ports"

	"gorm.io/gorm"
)

// OpenDeadLetterStore returns the failed-jobs store selected by DEADLETTER_STORE.
// The returned close func releases any connection opened here.
func OpenDeadLetterStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (ports.FailedJobRepository, func(), error) {
	switch cfg.DeadLetter.Store {
	case "mongo":
		client, mdb, err := OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		repo := &MongoFailedJobRepository{collection: mdb.Collection("failed_jobs")}
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	case "postgres", "":
		return NewFailedJobRepository(db), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown DEADLETTER_STORE %q", cfg.DeadLetter.Store)
	}
}
