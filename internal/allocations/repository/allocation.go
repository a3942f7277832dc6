package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	allocerrors "roomly/internal/allocations/errors"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	"roomly/pkg/model"
)

const (
	CollectionName = "Allocations"
)

// AllocationRepository is the allocation store. FindOverlapping and
// UpdateFields respect a mongo.SessionContext so the service can run its
// read-validate-write sequence inside one transaction.
type AllocationRepository interface {
	Create(ctx context.Context, allocation *model.Allocation) error
	FindByID(ctx context.Context, id string) (*model.Allocation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Allocation, error)
	FindByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Allocation, error)
	FindOverlapping(ctx context.Context, roomID string, startAt, endAt time.Time) ([]*model.Allocation, error)
	UpdateFields(ctx context.Context, id, subject string, startAt, endAt, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAllocationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAllocationRepository(cfg *config.Config) AllocationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAllocationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds single repository calls; no-op inside a transaction
// because a SessionContext cannot be wrapped without breaking it.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAllocationRepository) Create(ctx context.Context, allocation *model.Allocation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, allocation)
	if err != nil {
		return fmt.Errorf("failed to create allocation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		allocation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAllocationRepository) FindByID(ctx context.Context, id string) (*model.Allocation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", allocerrors.ErrInvalidID, id)
	}

	var allocation model.Allocation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&allocation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, allocerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find allocation: %w", err)
	}

	return &allocation, nil
}

func (r *mongoAllocationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Allocation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find allocations: %w", err)
	}
	defer cursor.Close(ctx)

	var allocations []*model.Allocation
	if err = cursor.All(ctx, &allocations); err != nil {
		return nil, fmt.Errorf("failed to decode allocations: %w", err)
	}

	return allocations, nil
}

func (r *mongoAllocationRepository) FindByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Allocation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find allocations by room: %w", err)
	}
	defer cursor.Close(ctx)

	var allocations []*model.Allocation
	if err = cursor.All(ctx, &allocations); err != nil {
		return nil, fmt.Errorf("failed to decode allocations: %w", err)
	}

	return allocations, nil
}

// FindOverlapping returns the room's allocations intersecting the half-open
// interval [startAt, endAt). Boundary-touching allocations are excluded by
// the strict comparisons.
func (r *mongoAllocationRepository) FindOverlapping(ctx context.Context, roomID string, startAt, endAt time.Time) ([]*model.Allocation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":  roomID,
		"start_at": bson.M{"$lt": endAt},
		"end_at":   bson.M{"$gt": startAt},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping allocations: %w", err)
	}
	defer cursor.Close(ctx)

	var allocations []*model.Allocation
	if err = cursor.All(ctx, &allocations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping allocations: %w", err)
	}

	return allocations, nil
}

// UpdateFields is the targeted partial update of the mutable subset:
// subject, interval and updated_at. created_at, room and employee are never
// touched.
func (r *mongoAllocationRepository) UpdateFields(ctx context.Context, id, subject string, startAt, endAt, updatedAt time.Time) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", allocerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"subject":    subject,
			"start_at":   startAt,
			"end_at":     endAt,
			"updated_at": updatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	if result.MatchedCount == 0 {
		return allocerrors.ErrNotFound
	}

	return nil
}

func (r *mongoAllocationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", allocerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	if result.DeletedCount == 0 {
		return allocerrors.ErrNotFound
	}

	return nil
}

func (r *mongoAllocationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count allocations: %w", err)
	}
	return count, nil
}

func (r *mongoAllocationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
