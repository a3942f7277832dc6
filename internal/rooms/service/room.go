package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	roomerrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

// RoomService manages the room directory. Name uniqueness is validated
// inside a transaction; the partial unique index on active room names is the
// backstop for writers racing past the check.
type RoomService interface {
	Create(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, req *model.UpdateRoomRequest) (*model.Room, error)
	Deactivate(ctx context.Context, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(repo repository.RoomRepository, validator *validator.RoomValidator, cfg *config.Config) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error) {
	req.Name = sanitizer.SanitizeText(req.Name)

	var room *model.Room
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		violations, err := s.validator.ValidateForCreate(sessCtx, req)
		if err != nil {
			return apperrors.Internal("Failed to check room name availability", err)
		}
		if violations.HasErrors() {
			return apperrors.InvalidRequest(violations)
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}
		room = &model.Room{
			Name:   req.Name,
			Seats:  *req.Seats,
			Active: active,
		}
		if err := s.repo.Create(sessCtx, room); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				var violations apperrors.Violations
				violations.Add(validator.FieldName, apperrors.CodeDuplicated)
				return apperrors.InvalidRequest(violations)
			}
			return apperrors.Internal("Failed to create room", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("create", "", err)
		return nil, toAppError(err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "name", room.Name, "seats", room.Seats)
	return room, nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) || errors.Is(err, roomerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, req *model.UpdateRoomRequest) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Name = sanitizer.SanitizeText(req.Name)

	var updated *model.Room
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		violations, err := s.validator.ValidateForUpdate(sessCtx, id, req)
		if err != nil {
			return apperrors.Internal("Failed to check room name availability", err)
		}
		if violations.HasErrors() {
			return apperrors.InvalidRequest(violations)
		}

		room := *existing
		room.Name = req.Name
		room.Seats = *req.Seats
		if err := s.repo.Update(sessCtx, id, &room); err != nil {
			return apperrors.Internal("Failed to update room", err)
		}
		updated = &room
		return nil
	})
	if err != nil {
		s.logFailure("update", id, err)
		return nil, toAppError(err)
	}

	s.cfg.Log.Info("Room updated", "id", id, "name", updated.Name, "seats", updated.Seats)
	return updated, nil
}

// Deactivate retires a room from the directory. Existing allocations stay in
// history; new ones are refused because an inactive room resolves as not
// found.
func (s *roomService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, roomerrors.ErrNotFound) || errors.Is(err, roomerrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to deactivate room", "id", id, "error", err)
		return apperrors.Internal("Failed to deactivate room", err)
	}

	s.cfg.Log.Info("Room deactivated", "id", id)
	return nil
}

func (s *roomService) logFailure(op, id string, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.CodeInvalidRequest {
		s.cfg.Log.Warn("Room validation failed", "op", op, "id", id, "violations", appErr.Violations)
		return
	}
	s.cfg.Log.Error("Room mutation failed", "op", op, "id", id, "error", err)
}

func toAppError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Room operation failed", err)
}
