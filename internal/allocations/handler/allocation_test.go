package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type mockAllocationService struct {
	createFn  func(ctx context.Context, req *model.CreateAllocationRequest) (*model.Allocation, error)
	getByIDFn func(ctx context.Context, id string) (*model.Allocation, error)
	updateFn  func(ctx context.Context, id string, req *model.UpdateAllocationRequest) (*model.Allocation, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockAllocationService) Create(ctx context.Context, req *model.CreateAllocationRequest) (*model.Allocation, error) {
	return m.createFn(ctx, req)
}

func (m *mockAllocationService) GetByID(ctx context.Context, id string) (*model.Allocation, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockAllocationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Allocation, int64, error) {
	return nil, 0, nil
}

func (m *mockAllocationService) GetByRoom(ctx context.Context, roomID string, limit int, offset int64) ([]*model.Allocation, error) {
	return nil, nil
}

func (m *mockAllocationService) Update(ctx context.Context, id string, req *model.UpdateAllocationRequest) (*model.Allocation, error) {
	return m.updateFn(ctx, id, req)
}

func (m *mockAllocationService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func newTestRouter(svc *mockAllocationService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	router := httprouter.New()
	NewAllocationHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreateReturnsCreated(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	svc := &mockAllocationService{
		createFn: func(ctx context.Context, req *model.CreateAllocationRequest) (*model.Allocation, error) {
			return &model.Allocation{
				ID:      "alloc-1",
				RoomID:  req.RoomID,
				Subject: req.Subject,
				StartAt: start,
				EndAt:   start.Add(time.Hour),
			}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"room_id":"room-1","subject":"Planning","employee_name":"Jordan Reyes","employee_email":"jordan@example.com","start_at":"2026-03-10T14:00:00Z","end_at":"2026-03-10T15:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/allocations", strings.NewReader(body))
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
	var created model.Allocation
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("failed to unmarshal allocation: %v", err)
	}
	if created.ID != "alloc-1" {
		t.Errorf("id = %q, want %q", created.ID, "alloc-1")
	}
}

func TestCreateMalformedBody(t *testing.T) {
	svc := &mockAllocationService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/allocations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateValidationErrorsKeepOrder(t *testing.T) {
	svc := &mockAllocationService{
		createFn: func(ctx context.Context, req *model.CreateAllocationRequest) (*model.Allocation, error) {
			var violations apperrors.Violations
			violations.Add("subject", apperrors.CodeMissing)
			violations.Add("start_at", apperrors.CodeInThePast)
			return nil, apperrors.InvalidRequest(violations)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/allocations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp httputil.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Violations) != 2 {
		t.Fatalf("violations = %v, want 2 entries", resp.Violations)
	}
	if resp.Violations[0].Field != "subject" || resp.Violations[1].Field != "start_at" {
		t.Errorf("violation order not preserved: %v", resp.Violations)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := &mockAllocationService{
		getByIDFn: func(ctx context.Context, id string) (*model.Allocation, error) {
			return nil, apperrors.NotFoundWithID("Allocation", id)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/allocations/id/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdateConflict(t *testing.T) {
	svc := &mockAllocationService{
		updateFn: func(ctx context.Context, id string, req *model.UpdateAllocationRequest) (*model.Allocation, error) {
			return nil, apperrors.Conflict("Another booking for this room is in progress. Please try again.")
		},
	}
	router := newTestRouter(svc)

	body := `{"subject":"Planning","start_at":"2026-03-10T14:00:00Z","end_at":"2026-03-10T15:00:00Z"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/allocations/id/alloc-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestDeleteNoContent(t *testing.T) {
	svc := &mockAllocationService{
		deleteFn: func(ctx context.Context, id string) error { return nil },
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/allocations/id/alloc-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
