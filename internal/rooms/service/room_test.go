package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	roomerrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type memoryRoomRepository struct {
	mu    sync.Mutex
	seq   int
	rooms map[string]*model.Room
}

func newMemoryRoomRepository() *memoryRoomRepository {
	return &memoryRoomRepository{rooms: map[string]*model.Room{}}
}

func (m *memoryRoomRepository) Create(ctx context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	room.ID = fmt.Sprintf("room-%d", m.seq)
	stored := *room
	m.rooms[room.ID] = &stored
	return nil
}

func (m *memoryRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, roomerrors.ErrNotFound
	}
	found := *room
	return &found, nil
}

func (m *memoryRoomRepository) FindByNameAndActive(ctx context.Context, name string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.Name == name && room.Active {
			found := *room
			return &found, nil
		}
	}
	return nil, roomerrors.ErrNotFound
}

func (m *memoryRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Room
	for _, room := range m.rooms {
		found := *room
		out = append(out, &found)
	}
	return out, nil
}

func (m *memoryRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return roomerrors.ErrNotFound
	}
	stored := *room
	stored.ID = id
	m.rooms[id] = &stored
	return nil
}

func (m *memoryRoomRepository) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return roomerrors.ErrNotFound
	}
	room.Active = false
	return nil
}

func (m *memoryRoomRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rooms)), nil
}

func (m *memoryRoomRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func newTestService() (RoomService, *memoryRoomRepository) {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
	repo := newMemoryRoomRepository()
	svc := NewRoomService(repo, validator.NewRoomValidator(repo, cfg), cfg)
	return svc, repo
}

func intPtr(v int) *int { return &v }

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestService()

	room, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "  Jade  ", Seats: intPtr(8)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if room.ID == "" {
		t.Error("expected an assigned room ID")
	}
	if room.Name != "Jade" {
		t.Errorf("name not sanitized: %q", room.Name)
	}
	if !room.Active {
		t.Error("rooms must default to active")
	}
}

func TestCreateRoomInactive(t *testing.T) {
	svc, _ := newTestService()

	inactive := false
	room, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(8), Active: &inactive})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if room.Active {
		t.Error("explicit active=false must be honored")
	}
}

func TestCreateRoomDuplicateName(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(8)}); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(12)})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidRequest {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
	if got := appErr.Violations.Get(0); got.Field != "name" || got.Code != apperrors.CodeDuplicated {
		t.Errorf("got %v, want {name DUPLICATED}", got)
	}
}

func TestCreateRoomNameFreedByDeactivation(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(8)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Deactivate(context.Background(), first.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	if _, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(8)}); err != nil {
		t.Errorf("deactivation must free the name, got %v", err)
	}
}

func TestUpdateRoom(t *testing.T) {
	svc, repo := newTestService()

	room, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(8)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), room.ID, &model.UpdateRoomRequest{Name: "Jade II", Seats: intPtr(12)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Jade II" || updated.Seats != 12 {
		t.Errorf("update not applied: %+v", updated)
	}

	stored, _ := repo.FindByID(context.Background(), room.ID)
	if stored.Name != "Jade II" {
		t.Errorf("stored name = %q, want %q", stored.Name, "Jade II")
	}
}

func TestUpdateRoomKeepsOwnName(t *testing.T) {
	svc, _ := newTestService()

	room, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(8)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Update(context.Background(), room.ID, &model.UpdateRoomRequest{Name: "Jade", Seats: intPtr(10)}); err != nil {
		t.Errorf("a room keeping its own name must pass, got %v", err)
	}
}

func TestUpdateRoomNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), "missing", &model.UpdateRoomRequest{Name: "Jade", Seats: intPtr(8)})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeactivateRoomNotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Deactivate(context.Background(), "missing")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetAllRooms(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Jade", Seats: intPtr(8)}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(context.Background(), &model.CreateRoomRequest{Name: "Onyx", Seats: intPtr(4)}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rooms, count, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if count != 2 || len(rooms) != 2 {
		t.Errorf("got count=%d len=%d, want 2 and 2", count, len(rooms))
	}
}
