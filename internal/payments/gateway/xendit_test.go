package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybridge/pkg/config"
	"skybridge/pkg/logger"
)

func newGateway(url string) *XenditGateway {
	return NewXenditGateway(config.XenditConfig{
		APIURL:          url,
		SecretKey:       "xnd_development_secret",
		InvoiceDuration: 24 * time.Hour,
		Timeout:         2 * time.Second,
		SuccessURL:      "https://skybridge.local/payment/success",
	}, logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
}

func TestCreateInvoice(t *testing.T) {
	var got createInvoiceRequest
	var idempotencyKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, invoicesPath, r.URL.Path)
		idempotencyKey = r.Header.Get("X-IDEMPOTENCY-KEY")
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "xnd_development_secret", user)
		assert.Empty(t, pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"inv-1","external_id":"GEM-ABC123","status":"PENDING","amount":335.97,"invoice_url":"https://checkout.xendit.co/web/inv-1"}`))
	}))
	defer server.Close()

	invoice, err := newGateway(server.URL).CreateInvoice(context.Background(), CreateInvoiceParams{
		IdempotencyKey: "GEM-ABC123",
		ExternalID:     "GEM-ABC123",
		Amount:         335.97,
		PayerEmail:     "guest@example.com",
		Description:    "Deluxe King, 3 nights",
	})
	require.NoError(t, err)

	assert.Equal(t, "inv-1", invoice.ID)
	assert.Equal(t, "https://checkout.xendit.co/web/inv-1", invoice.InvoiceURL)
	assert.Equal(t, "GEM-ABC123", got.ExternalID)
	assert.Equal(t, "GEM-ABC123", idempotencyKey)
	assert.Equal(t, 335.97, got.Amount)
	assert.Equal(t, int64(86400), got.InvoiceDuration)
	assert.Equal(t, "IDR", got.Currency)
}

func TestCreateInvoice_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":"DUPLICATE_ERROR","message":"external_id already used"}`))
	}))
	defer server.Close()

	_, err := newGateway(server.URL).CreateInvoice(context.Background(), CreateInvoiceParams{ExternalID: "GEM-ABC123", Amount: 10})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "external_id already used")
}

func TestCreateInvoice_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	g := newGateway(server.URL)
	for i := 0; i < 5; i++ {
		_, err := g.CreateInvoice(context.Background(), CreateInvoiceParams{ExternalID: "GEM-ABC123", Amount: 10})
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	_, err := g.CreateInvoice(context.Background(), CreateInvoiceParams{ExternalID: "GEM-ABC123", Amount: 10})
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(5), hits.Load())
}
