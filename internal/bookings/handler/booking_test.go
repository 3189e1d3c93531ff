package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybridge/pkg/auth"
	apperrors "skybridge/pkg/errors"
	"skybridge/pkg/logger"
	"skybridge/pkg/model"
)

type mockBookingService struct {
	createFunc func(ctx context.Context, caller auth.Identity, req *model.BookingRequest) (*model.Booking, error)
	cancelFunc func(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error)
	getAllFunc func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}

func (m *mockBookingService) Create(ctx context.Context, caller auth.Identity, req *model.BookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, caller, req)
}

func (m *mockBookingService) GetMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, UserID: caller.UserID}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error) {
	return m.cancelFunc(ctx, caller, id)
}

func (m *mockBookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, body, userID, role string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
		req.Header.Set(auth.HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	var got *model.BookingRequest
	var gotCaller auth.Identity
	svc := &mockBookingService{createFunc: func(_ context.Context, caller auth.Identity, req *model.BookingRequest) (*model.Booking, error) {
		got, gotCaller = req, caller
		return &model.Booking{BookingRef: "GEM-ABC123", BookingStatus: model.BookingPending}, nil
	}}

	body := `{"property_id":"p","room_type_id":"r","check_in_date":"2026-03-01","check_out_date":"2026-03-04","adults":2}`
	rec := serve(newRouter(svc), http.MethodPost, "/api/v1/bookings", body, "user-1", "CUSTOMER")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "2026-03-01", got.CheckInDate)
	assert.Equal(t, 2, got.Adults)
	assert.Equal(t, "user-1", gotCaller.UserID)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "GEM-ABC123", resp.Data.BookingRef)
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     string
		svcErr     error
		wantStatus int
	}{
		{"unauthenticated", `{}`, "", nil, http.StatusUnauthorized},
		{"malformed body", `{"adults":`, "user-1", nil, http.StatusBadRequest},
		{"capacity", `{}`, "user-1", apperrors.CapacityExceeded("No rooms available for selected dates", nil), http.StatusUnprocessableEntity},
		{"validation", `{}`, "user-1", apperrors.Validation("Booking validation failed", nil), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockBookingService{createFunc: func(context.Context, auth.Identity, *model.BookingRequest) (*model.Booking, error) {
				called = true
				return nil, tt.svcErr
			}}

			rec := serve(newRouter(svc), http.MethodPost, "/api/v1/bookings", tt.body, tt.userID, "CUSTOMER")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.svcErr != nil, called)
		})
	}
}

func TestCancel(t *testing.T) {
	var gotID string
	svc := &mockBookingService{cancelFunc: func(_ context.Context, _ auth.Identity, id string) (*model.Booking, error) {
		gotID = id
		return &model.Booking{ID: id, BookingStatus: model.BookingCancelled}, nil
	}}

	rec := serve(newRouter(svc), http.MethodPatch, "/api/v1/bookings/id/65f0000000000000000000c1/cancel", "", "user-1", "CUSTOMER")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "65f0000000000000000000c1", gotID)
}

func TestAdminList_RequiresAdmin(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	svc := &mockBookingService{getAllFunc: func(_ context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
		gotLimit, gotOffset = limit, offset
		return []*model.Booking{{ID: "a"}}, 1, nil
	}}
	router := newRouter(svc)

	rec := serve(router, http.MethodGet, "/api/v1/admin/bookings", "", "user-1", "CUSTOMER")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/admin/bookings?limit=5&offset=10", "", "admin-1", "ADMIN")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, int64(10), gotOffset)
}

func TestGetMine_InvalidPagination(t *testing.T) {
	rec := serve(newRouter(&mockBookingService{}), http.MethodGet, "/api/v1/bookings/mine?limit=abc", "", "user-1", "CUSTOMER")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
