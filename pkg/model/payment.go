package model

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID       string        `json:"booking_id" bson:"booking_id"`
	BookingRef      string        `json:"booking_ref" bson:"booking_ref"`
	UserID          string        `json:"user_id" bson:"user_id"`
	XenditInvoiceID string        `json:"xendit_invoice_id,omitempty" bson:"xendit_invoice_id,omitempty"`
	InvoiceURL      string        `json:"invoice_url,omitempty" bson:"invoice_url,omitempty"`
	Amount          float64       `json:"amount" bson:"amount"`
	PaidAmount      float64       `json:"paid_amount,omitempty" bson:"paid_amount,omitempty"`
	PaymentMethod   string        `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status" bson:"payment_status"`
	TransactionDate *time.Time    `json:"transaction_date,omitempty" bson:"transaction_date,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// HasInvoice is false while the provider invoice is still being created.
func (p *Payment) HasInvoice() bool {
	return p.XenditInvoiceID != ""
}

type InvoiceRequest struct {
	BookingRef string `json:"booking_ref" validate:"required,min=5,max=32"`
}

// InvoiceCallback is the payload the payment provider posts to the webhook.
type InvoiceCallback struct {
	ID            string  `json:"id"`
	ExternalID    string  `json:"external_id"`
	Status        string  `json:"status"`
	PaidAmount    float64 `json:"paid_amount"`
	PaymentMethod string  `json:"payment_method"`
}

// PaymentVerification is returned to a guest polling for payment status.
type PaymentVerification struct {
	BookingRef    string        `json:"booking_ref"`
	BookingStatus BookingStatus `json:"booking_status"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	TotalAmount   float64       `json:"total_amount"`
	InvoiceURL    string        `json:"invoice_url,omitempty"`
}
