package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skybridge/internal/payments/service"
	"skybridge/pkg/auth"
	httputil "skybridge/pkg/http"
	"skybridge/pkg/logger"
	"skybridge/pkg/middleware"
	"skybridge/pkg/model"
)

type WebhookAck struct {
	Received bool `json:"received"`
}

type PaymentHandler struct {
	service       service.PaymentService
	callbackToken string
	log           *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, callbackToken string, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		callbackToken: callbackToken,
		log:           log,
	}
}

func (h *PaymentHandler) CreateInvoice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.InvoiceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "CreateInvoice", err)
		return
	}

	caller, _ := auth.FromContext(r.Context())
	payment, err := h.service.CreateInvoice(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, r, "CreateInvoice", err)
		return
	}

	if err := httputil.WriteCreated(w, payment); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateInvoice", "operation", "WriteCreated", "error", err)
	}
}

// Webhook always acknowledges so the provider stops retrying. Failures are
// logged for manual reconciliation.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := h.log.Ctx(r.Context())

	var cb model.InvoiceCallback
	if err := httputil.DecodeJSON(r, &cb); err != nil {
		log.Warn("Ignoring malformed webhook payload", "error", err)
	} else if err := h.service.HandleWebhook(r.Context(), &cb); err != nil {
		log.Error("Failed to process webhook", "invoice_id", cb.ID, "status", cb.Status, "error", err)
	}

	if err := httputil.WriteSuccess(w, WebhookAck{Received: true}); err != nil {
		log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := auth.FromContext(r.Context())
	verification, err := h.service.Verify(r.Context(), caller, ps.ByName("ref"))
	if err != nil {
		h.writeError(w, r, "Verify", err)
		return
	}

	if err := httputil.WriteSuccess(w, verification); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Ctx(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	anyone := middleware.RequireRoles(h.log)

	router.POST("/api/v1/payments/invoices", anyone(h.CreateInvoice))
	router.POST("/api/v1/payments/webhook", middleware.CallbackToken(h.callbackToken, h.log)(h.Webhook))
	router.GET("/api/v1/payments/verify/:ref", anyone(h.Verify))
}
