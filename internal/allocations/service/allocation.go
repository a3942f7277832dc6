package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	allocerrors "roomly/internal/allocations/errors"
	"roomly/internal/allocations/events"
	"roomly/internal/allocations/repository"
	"roomly/internal/allocations/validator"
	roomerrors "roomly/internal/rooms/errors"
	roomrepo "roomly/internal/rooms/repository"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

// AllocationService owns the allocation lifecycle. Every mutation follows the
// same shape: resolve the room, take the room's advisory lock, then validate
// and write inside one transaction so no conflicting booking can slip in
// between the availability read and the commit.
type AllocationService interface {
	Create(ctx context.Context, req *model.CreateAllocationRequest) (*model.Allocation, error)
	GetByID(ctx context.Context, id string) (*model.Allocation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Allocation, int64, error)
	GetByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Allocation, error)
	Update(ctx context.Context, id string, req *model.UpdateAllocationRequest) (*model.Allocation, error)
	Delete(ctx context.Context, id string) error
}

type allocationService struct {
	repo      repository.AllocationRepository
	lockRepo  repository.AllocationLockRepository
	roomRepo  roomrepo.RoomRepository
	validator *validator.AllocationValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewAllocationService(
	repo repository.AllocationRepository,
	lockRepo repository.AllocationLockRepository,
	roomRepo roomrepo.RoomRepository,
	validator *validator.AllocationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AllocationService {
	return &allocationService{
		repo:      repo,
		lockRepo:  lockRepo,
		roomRepo:  roomRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *allocationService) Create(ctx context.Context, req *model.CreateAllocationRequest) (*model.Allocation, error) {
	s.sanitizeCreate(req)

	// The room is resolved before validation so an unknown or inactive room
	// reads as not found rather than as a field violation.
	if _, err := s.resolveRoom(ctx, req.RoomID); err != nil {
		return nil, err
	}

	lockID, err := s.acquireRoomLock(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	defer s.releaseRoomLock(ctx, lockID)

	var allocation *model.Allocation
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		violations, err := s.validator.ValidateForCreate(sessCtx, req)
		if err != nil {
			return apperrors.Internal("Failed to check room availability", err)
		}
		if violations.HasErrors() {
			return apperrors.InvalidRequest(violations)
		}

		now := s.cfg.Clock.Now()
		allocation = &model.Allocation{
			RoomID: req.RoomID,
			Employee: model.Employee{
				Name:  req.EmployeeName,
				Email: req.EmployeeEmail,
			},
			Subject:   req.Subject,
			StartAt:   *req.StartAt,
			EndAt:     *req.EndAt,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(sessCtx, allocation); err != nil {
			return apperrors.Internal("Failed to create allocation", err)
		}
		return nil
	})
	if err != nil {
		s.logMutationFailure("create", "", req.RoomID, err)
		return nil, toAppError(err)
	}

	s.cfg.Log.Info("Allocation created",
		"id", allocation.ID,
		"room_id", allocation.RoomID,
		"start_at", allocation.StartAt,
		"end_at", allocation.EndAt,
	)
	s.publisher.AllocationCreated(ctx, allocation)
	return allocation, nil
}

func (s *allocationService) GetByID(ctx context.Context, id string) (*model.Allocation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Allocation ID cannot be empty")
	}

	allocation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, allocerrors.ErrNotFound) || errors.Is(err, allocerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Allocation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve allocation", err)
	}

	return allocation, nil
}

func (s *allocationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Allocation, int64, error) {
	var count int64
	var allocations []*model.Allocation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count allocations", "error", errCount)
			errCount = apperrors.Internal("Failed to count allocations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		allocations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list allocations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve allocations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return allocations, count, nil
}

func (s *allocationService) GetByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Allocation, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	allocations, err := s.repo.FindByRoom(ctx, roomID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list allocations by room", "room_id", roomID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve allocations", err)
	}

	return allocations, nil
}

func (s *allocationService) Update(ctx context.Context, id string, req *model.UpdateAllocationRequest) (*model.Allocation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Allocation ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMutable(existing); err != nil {
		return nil, err
	}

	req.Subject = sanitizer.SanitizeText(req.Subject)

	lockID, err := s.acquireRoomLock(ctx, existing.RoomID)
	if err != nil {
		return nil, err
	}
	defer s.releaseRoomLock(ctx, lockID)

	var updatedAt time.Time
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		violations, err := s.validator.ValidateForUpdate(sessCtx, existing, req)
		if err != nil {
			return apperrors.Internal("Failed to check room availability", err)
		}
		if violations.HasErrors() {
			return apperrors.InvalidRequest(violations)
		}

		updatedAt = s.cfg.Clock.Now()
		if err := s.repo.UpdateFields(sessCtx, id, req.Subject, *req.StartAt, *req.EndAt, updatedAt); err != nil {
			return apperrors.Internal("Failed to update allocation", err)
		}
		return nil
	})
	if err != nil {
		s.logMutationFailure("update", id, existing.RoomID, err)
		return nil, toAppError(err)
	}

	updated := *existing
	updated.Subject = req.Subject
	updated.StartAt = *req.StartAt
	updated.EndAt = *req.EndAt
	updated.UpdatedAt = updatedAt

	s.cfg.Log.Info("Allocation updated",
		"id", id,
		"room_id", updated.RoomID,
		"start_at", updated.StartAt,
		"end_at", updated.EndAt,
	)
	s.publisher.AllocationUpdated(ctx, &updated)
	return &updated, nil
}

func (s *allocationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Allocation ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireMutable(existing); err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, allocerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Allocation", id)
			}
			return apperrors.Internal("Failed to delete allocation", err)
		}
		return nil
	})
	if err != nil {
		s.logMutationFailure("delete", id, existing.RoomID, err)
		return toAppError(err)
	}

	s.cfg.Log.Info("Allocation deleted", "id", id, "room_id", existing.RoomID)
	s.publisher.AllocationDeleted(ctx, existing)
	return nil
}

// --- Helpers ---

func (s *allocationService) sanitizeCreate(req *model.CreateAllocationRequest) {
	req.Subject = sanitizer.SanitizeText(req.Subject)
	req.EmployeeName = sanitizer.SanitizeText(req.EmployeeName)
	req.EmployeeEmail = sanitizer.SanitizeEmail(req.EmployeeEmail)
}

func (s *allocationService) resolveRoom(ctx context.Context, roomID string) (*model.Room, error) {
	if roomID == "" {
		return nil, apperrors.NotFoundWithID("Room", roomID)
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) || errors.Is(err, roomerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		return nil, apperrors.Internal("Failed to resolve room", err)
	}
	if !room.Active {
		return nil, apperrors.NotFoundWithID("Room", roomID)
	}
	return room, nil
}

// requireMutable rejects mutation of an allocation whose meeting has already
// ended. A meeting still in progress may be shortened or cancelled; a
// finished one is immutable history.
func (s *allocationService) requireMutable(allocation *model.Allocation) error {
	if allocation.EndAt.Before(s.cfg.Clock.Now()) {
		var violations apperrors.Violations
		violations.Add(validator.FieldID, apperrors.CodeInThePast)
		return apperrors.InvalidRequest(violations)
	}
	return nil
}

// acquireRoomLock serializes writers of one room through an advisory lock
// document. Contention gets a bounded number of retries before the request
// is turned away with a conflict.
func (s *allocationService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID := fmt.Sprintf("allocation_lock_%s", roomID)

	for attempt := 0; ; attempt++ {
		err := s.lockRepo.Acquire(ctx, &model.AllocationLock{
			ID:     lockID,
			RoomID: roomID,
		})
		if err == nil {
			return lockID, nil
		}
		if !errors.Is(err, allocerrors.ErrLockHeld) {
			return "", apperrors.Internal("Failed to acquire allocation lock", err)
		}
		if attempt >= s.cfg.AllocationLockRetries {
			s.cfg.Log.Warn("Allocation lock contention", "room_id", roomID, "attempts", attempt+1)
			return "", apperrors.Conflict("Another booking for this room is in progress. Please try again.")
		}

		select {
		case <-time.After(s.cfg.AllocationLockRetryDelay):
		case <-ctx.Done():
			return "", apperrors.Timeout("Timed out waiting for the room's allocation lock")
		}
	}
}

func (s *allocationService) releaseRoomLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Release(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release allocation lock", "lock_id", lockID, "error", err)
	}
}

func (s *allocationService) logMutationFailure(op, id, roomID string, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.CodeInvalidRequest {
		s.cfg.Log.Warn("Allocation validation failed", "op", op, "id", id, "room_id", roomID, "violations", appErr.Violations)
		return
	}
	s.cfg.Log.Error("Allocation mutation failed", "op", op, "id", id, "room_id", roomID, "error", err)
}

func toAppError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Allocation operation failed", err)
}
