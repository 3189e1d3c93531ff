package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skybridge/internal/bookings/service"
	"skybridge/pkg/auth"
	httputil "skybridge/pkg/http"
	"skybridge/pkg/logger"
	"skybridge/pkg/middleware"
	"skybridge/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), caller(r), &req)
	if err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "GetMine", err)
		return
	}

	bookings, total, err := h.service.GetMine(r.Context(), caller(r), limit, offset)
	if err != nil {
		h.writeError(w, r, "GetMine", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), caller(r), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Cancel(r.Context(), caller(r), ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Ctx(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// caller is set by middleware.RequireRoles on every route below.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	anyone := middleware.RequireRoles(h.log)
	admin := middleware.RequireRoles(h.log, auth.RoleAdmin)

	router.POST("/api/v1/bookings", anyone(h.Create))
	router.GET("/api/v1/bookings/mine", anyone(h.GetMine))
	router.GET("/api/v1/bookings/id/:id", anyone(h.GetByID))
	router.PATCH("/api/v1/bookings/id/:id/cancel", anyone(h.Cancel))
	router.GET("/api/v1/admin/bookings", admin(h.GetAll))
}
