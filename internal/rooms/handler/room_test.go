package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type mockRoomService struct {
	createFn     func(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error)
	getByIDFn    func(ctx context.Context, id string) (*model.Room, error)
	getAllFn     func(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	updateFn     func(ctx context.Context, id string, req *model.UpdateRoomRequest) (*model.Room, error)
	deactivateFn func(ctx context.Context, id string) error
}

func (m *mockRoomService) Create(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error) {
	return m.createFn(ctx, req)
}

func (m *mockRoomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockRoomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	return m.getAllFn(ctx, limit, offset)
}

func (m *mockRoomService) Update(ctx context.Context, id string, req *model.UpdateRoomRequest) (*model.Room, error) {
	return m.updateFn(ctx, id, req)
}

func (m *mockRoomService) Deactivate(ctx context.Context, id string) error {
	return m.deactivateFn(ctx, id)
}

func newTestRouter(svc *mockRoomService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	router := httprouter.New()
	NewRoomHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreateReturnsCreated(t *testing.T) {
	svc := &mockRoomService{
		createFn: func(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error) {
			return &model.Room{ID: "room-1", Name: req.Name, Seats: *req.Seats, Active: true}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"name":"Jade","seats":8}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp httputil.SuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	data, _ := json.Marshal(resp.Data)
	var created model.Room
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("failed to unmarshal room: %v", err)
	}
	if created.ID != "room-1" || created.Name != "Jade" || !created.Active {
		t.Errorf("room = %+v, want active room-1 named Jade", created)
	}
}

func TestCreateMalformedBody(t *testing.T) {
	svc := &mockRoomService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateDuplicateName(t *testing.T) {
	svc := &mockRoomService{
		createFn: func(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error) {
			var violations apperrors.Violations
			violations.Add("name", apperrors.CodeDuplicated)
			return nil, apperrors.InvalidRequest(violations)
		},
	}
	router := newTestRouter(svc)

	body := `{"name":"Jade","seats":8}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp httputil.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(resp.Violations))
	}
	if resp.Violations[0].Field != "name" || resp.Violations[0].Code != apperrors.CodeDuplicated {
		t.Errorf("violation = %+v, want {name %s}", resp.Violations[0], apperrors.CodeDuplicated)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := &mockRoomService{
		getByIDFn: func(ctx context.Context, id string) (*model.Room, error) {
			return nil, apperrors.NotFoundWithID("Room", id)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/id/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetAllPaginated(t *testing.T) {
	svc := &mockRoomService{
		getAllFn: func(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
			return []*model.Room{
				{ID: "room-1", Name: "Jade", Seats: 8, Active: true},
				{ID: "room-2", Name: "Amber", Seats: 4, Active: true},
			}, 2, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp httputil.PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Errorf("total_count = %d, want 2", resp.TotalCount)
	}
}

func TestDeleteDeactivates(t *testing.T) {
	var deactivated string
	svc := &mockRoomService{
		deactivateFn: func(ctx context.Context, id string) error {
			deactivated = id
			return nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rooms/id/room-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if deactivated != "room-1" {
		t.Errorf("deactivated id = %q, want %q", deactivated, "room-1")
	}
}
