package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"skybridge/internal/properties/service"
	"skybridge/pkg/auth"
	apperrors "skybridge/pkg/errors"
	httputil "skybridge/pkg/http"
	"skybridge/pkg/logger"
	"skybridge/pkg/middleware"
	"skybridge/pkg/model"
)

type PropertyHandler struct {
	service service.PropertyService
	log     *logger.Logger
}

func NewPropertyHandler(service service.PropertyService, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: service,
		log:     log,
	}
}

func (h *PropertyHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var p model.Property
	if err := httputil.DecodeJSON(r, &p); err != nil {
		h.writeError(w, r, "Submit", err)
		return
	}

	caller, _ := auth.FromContext(r.Context())
	if err := h.service.Submit(r.Context(), caller, &p); err != nil {
		h.writeError(w, r, "Submit", err)
		return
	}

	if err := httputil.WriteCreated(w, p); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p model.Property
	if err := httputil.DecodeJSON(r, &p); err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	caller, _ := auth.FromContext(r.Context())
	updated, err := h.service.Update(r.Context(), caller, ps.ByName("id"), &p)
	if err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

// GetByID is public. Identity headers, when present, let owners and admins
// see listings that are not published yet.
func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := auth.FromRequest(r)

	detail, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "Search", err)
		return
	}

	q, err := parseSearch(r)
	if err != nil {
		h.writeError(w, r, "Search", err)
		return
	}

	properties, total, err := h.service.Search(r.Context(), q, limit, offset)
	if err != nil {
		h.writeError(w, r, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, properties, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *PropertyHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "GetMine", err)
		return
	}

	caller, _ := auth.FromContext(r.Context())
	properties, total, err := h.service.ListMine(r.Context(), caller, limit, offset)
	if err != nil {
		h.writeError(w, r, "GetMine", err)
		return
	}

	if err := httputil.WritePaginated(w, properties, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *PropertyHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listForReview(w, r, "GetAll", r.URL.Query().Get("status"))
}

func (h *PropertyHandler) GetPending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listForReview(w, r, "GetPending", string(model.PropertyPending))
}

func (h *PropertyHandler) listForReview(w http.ResponseWriter, r *http.Request, handler, status string) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, handler, err)
		return
	}

	properties, total, err := h.service.ListForReview(r.Context(), status, limit, offset)
	if err != nil {
		h.writeError(w, r, handler, err)
		return
	}

	if err := httputil.WritePaginated(w, properties, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "operation", "WritePaginated", "error", err)
	}
}

func (h *PropertyHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := auth.FromContext(r.Context())
	p, err := h.service.Approve(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, r, "Approve", err)
		return
	}

	if err := httputil.WriteSuccess(w, p); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

// Reject takes an optional {"rejection_reason": "..."} body.
func (h *PropertyHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var rejection model.PropertyRejection
	if err := httputil.DecodeOptionalJSON(r, &rejection); err != nil {
		h.writeError(w, r, "Reject", err)
		return
	}

	caller, _ := auth.FromContext(r.Context())
	p, err := h.service.Reject(r.Context(), caller, ps.ByName("id"), &rejection)
	if err != nil {
		h.writeError(w, r, "Reject", err)
		return
	}

	if err := httputil.WriteSuccess(w, p); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Ctx(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseSearch(r *http.Request) (model.PropertySearch, error) {
	query := r.URL.Query()
	q := model.PropertySearch{PropertyType: query.Get("property_type")}

	if s := query.Get("amenities"); s != "" {
		for _, a := range strings.Split(s, ",") {
			if a = strings.TrimSpace(a); a != "" {
				q.Amenities = append(q.Amenities, a)
			}
		}
	}

	var err error
	if q.MinPrice, err = parsePrice(query.Get("min_price"), "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice(query.Get("max_price"), "max_price"); err != nil {
		return q, err
	}
	return q, nil
}

func parsePrice(s, param string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + param + " parameter: " + s)
	}
	return v, nil
}

// Search and detail reads are public. Listing changes need a hotel owner,
// and review is admin only.
func (h *PropertyHandler) RegisterRoutes(router *httprouter.Router) {
	owners := middleware.RequireRoles(h.log, auth.RoleHotelOwner, auth.RoleAdmin)
	admin := middleware.RequireRoles(h.log, auth.RoleAdmin)

	router.GET("/api/v1/properties/search", h.Search)
	router.GET("/api/v1/properties/id/:id", h.GetByID)
	router.GET("/api/v1/properties/mine", owners(h.GetMine))
	router.POST("/api/v1/properties", owners(h.Submit))
	router.PUT("/api/v1/properties/id/:id", owners(h.Update))

	router.GET("/api/v1/admin/properties", admin(h.GetAll))
	router.GET("/api/v1/admin/properties/pending", admin(h.GetPending))
	router.PATCH("/api/v1/admin/properties/id/:id/approve", admin(h.Approve))
	router.PATCH("/api/v1/admin/properties/id/:id/reject", admin(h.Reject))
}
