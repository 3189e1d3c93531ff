// Package gateway talks to the Xendit invoice API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"skybridge/pkg/client"
	"skybridge/pkg/config"
	"skybridge/pkg/logger"
)

const (
	invoicesPath    = "/v2/invoices"
	defaultCurrency = "IDR"

	idempotencyHeader = "X-IDEMPOTENCY-KEY"
)

var (
	// ErrUnavailable means the breaker is open or the provider keeps failing.
	ErrUnavailable = errors.New("payment provider unavailable")

	ErrRejected = errors.New("payment provider rejected the request")
)

type CreateInvoiceParams struct {
	// IdempotencyKey makes the provider return the first invoice again when
	// a request is repeated.
	IdempotencyKey string

	ExternalID  string
	Amount      float64
	PayerEmail  string
	Description string
}

type Invoice struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Status     string    `json:"status"`
	Amount     float64   `json:"amount"`
	InvoiceURL string    `json:"invoice_url"`
	ExpiryDate time.Time `json:"expiry_date"`
}

type InvoiceGateway interface {
	CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error)
}

type createInvoiceRequest struct {
	ExternalID         string  `json:"external_id"`
	Amount             float64 `json:"amount"`
	PayerEmail         string  `json:"payer_email,omitempty"`
	Description        string  `json:"description"`
	InvoiceDuration    int64   `json:"invoice_duration"`
	Currency           string  `json:"currency"`
	SuccessRedirectURL string  `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string  `json:"failure_redirect_url,omitempty"`
}

type XenditGateway struct {
	client  *client.HttpClient
	breaker *gobreaker.CircuitBreaker
	cfg     config.XenditConfig
	log     *logger.Logger
}

func NewXenditGateway(cfg config.XenditConfig, log *logger.Logger) *XenditGateway {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "xendit",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &XenditGateway{
		client:  client.NewHttpClient(cfg.APIURL, cfg.Timeout).WithBasicAuth(cfg.SecretKey, ""),
		breaker: breaker,
		cfg:     cfg,
		log:     log,
	}
}

// CreateInvoice opens a hosted invoice for a booking. Network errors and 5xx
// answers count against the breaker; a 4xx is the caller's fault and does not.
func (g *XenditGateway) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
	body := createInvoiceRequest{
		ExternalID:         params.ExternalID,
		Amount:             params.Amount,
		PayerEmail:         params.PayerEmail,
		Description:        params.Description,
		InvoiceDuration:    int64(g.cfg.InvoiceDuration / time.Second),
		Currency:           defaultCurrency,
		SuccessRedirectURL: g.cfg.SuccessURL,
		FailureRedirectURL: g.cfg.FailureURL,
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		var headers map[string]string
		if params.IdempotencyKey != "" {
			headers = map[string]string{idempotencyHeader: params.IdempotencyKey}
		}
		resp, err := g.client.POSTWithHeaders(ctx, invoicesPath, body, headers)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("xendit returned %s", client.GetErrorMessage(resp))
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.log.Ctx(ctx).Warn("Xendit circuit is open", "external_id", params.ExternalID)
			return nil, ErrUnavailable
		}
		g.log.Ctx(ctx).Error("Xendit request failed", "external_id", params.ExternalID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp := result.(*client.Response)
	if !resp.IsSuccess() {
		msg := client.GetErrorMessage(resp)
		g.log.Ctx(ctx).Error("Xendit rejected invoice", "external_id", params.ExternalID, "status", resp.StatusCode, "message", msg)
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	var invoice Invoice
	if err := resp.DecodeJSON(&invoice); err != nil {
		return nil, fmt.Errorf("failed to decode invoice: %w", err)
	}
	if invoice.ID == "" || invoice.InvoiceURL == "" {
		return nil, fmt.Errorf("%w: invoice response is missing id or url", ErrRejected)
	}

	g.log.Ctx(ctx).Info("Xendit invoice created", "invoice_id", invoice.ID, "external_id", invoice.ExternalID)
	return &invoice, nil
}
