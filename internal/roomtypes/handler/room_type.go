package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skybridge/internal/roomtypes/service"
	"skybridge/pkg/auth"
	httputil "skybridge/pkg/http"
	"skybridge/pkg/logger"
	"skybridge/pkg/middleware"
	"skybridge/pkg/model"
)

type RoomTypeHandler struct {
	service service.RoomTypeService
	log     *logger.Logger
}

func NewRoomTypeHandler(service service.RoomTypeService, log *logger.Logger) *RoomTypeHandler {
	return &RoomTypeHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomTypeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rt model.RoomType
	if err := httputil.DecodeJSON(r, &rt); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	caller, _ := auth.FromContext(r.Context())
	if err := h.service.Create(r.Context(), caller, &rt); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, rt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RoomTypeHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rt, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, rt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomTypeHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "List", err)
		return
	}

	roomTypes, total, err := h.service.List(r.Context(), r.URL.Query().Get("property_id"), limit, offset)
	if err != nil {
		h.writeError(w, r, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, roomTypes, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *RoomTypeHandler) Quote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	quote, err := h.service.Quote(r.Context(), ps.ByName("id"), query.Get("check_in"), query.Get("check_out"))
	if err != nil {
		h.writeError(w, r, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomTypeHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Ctx(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// Catalog reads are public.
func (h *RoomTypeHandler) RegisterRoutes(router *httprouter.Router) {
	owners := middleware.RequireRoles(h.log, auth.RoleHotelOwner, auth.RoleAdmin)

	router.POST("/api/v1/room-types", owners(h.Create))
	router.GET("/api/v1/room-types", h.List)
	router.GET("/api/v1/room-types/id/:id", h.GetByID)
	router.GET("/api/v1/room-types/id/:id/quote", h.Quote)
}
