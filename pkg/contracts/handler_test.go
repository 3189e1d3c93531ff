package contracts

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type routeHandler struct {
	path string
}

func (h routeHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(h.path, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestHandlers_RegisterRoutes(t *testing.T) {
	router := httprouter.New()
	Handlers{routeHandler{"/api/v1/bookings/mine"}, routeHandler{"/api/v1/room-types"}}.RegisterRoutes(router)

	for _, path := range []string{"/api/v1/bookings/mine", "/api/v1/room-types"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("%s: status = %d, want 204", path, rec.Code)
		}
	}
}
