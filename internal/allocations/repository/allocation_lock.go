package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	allocerrors "roomly/internal/allocations/errors"
	"roomly/pkg/config"
	"roomly/pkg/model"
)

const (
	LockCollectionName = "Allocation_locks"
)

// AllocationLockRepository holds the advisory locks serializing writes per
// room. Uniqueness comes from the _id; a TTL index on expires_at reaps locks
// left behind by crashed requests.
type AllocationLockRepository interface {
	Acquire(ctx context.Context, lock *model.AllocationLock) error
	Release(ctx context.Context, lockID string) error
}

type mongoAllocationLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAllocationLockRepository(cfg *config.Config) AllocationLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAllocationLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoAllocationLockRepository) Acquire(ctx context.Context, lock *model.AllocationLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = r.cfg.Clock.Now()
	if lock.ExpiresAt.IsZero() {
		lock.ExpiresAt = lock.CreatedAt.Add(r.cfg.AllocationLockTTL)
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return allocerrors.ErrLockHeld
		}
		return err
	}
	return nil
}

func (r *mongoAllocationLockRepository) Release(ctx context.Context, lockID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
