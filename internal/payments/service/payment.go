package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"skybridge/internal/bookings/engine"
	bookingserrors "skybridge/internal/bookings/errors"
	"skybridge/internal/bookings/events"
	paymentserrors "skybridge/internal/payments/errors"
	"skybridge/internal/payments/gateway"
	"skybridge/internal/payments/repository"
	"skybridge/pkg/auth"
	"skybridge/pkg/config"
	apperrors "skybridge/pkg/errors"
	"skybridge/pkg/kafka"
	"skybridge/pkg/model"
	"skybridge/pkg/sanitizer"
)

// invoice statuses reported by the provider
const (
	statusPaid    = "PAID"
	statusSettled = "SETTLED"
	statusExpired = "EXPIRED"
	statusFailed  = "FAILED"
)

type PaymentService interface {
	CreateInvoice(ctx context.Context, caller auth.Identity, req *model.InvoiceRequest) (*model.Payment, error)
	HandleWebhook(ctx context.Context, cb *model.InvoiceCallback) error
	Verify(ctx context.Context, caller auth.Identity, ref string) (*model.PaymentVerification, error)
}

// BookingStore is the part of the booking repository payments drive.
type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByRef(ctx context.Context, ref string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, to model.BookingStatus, from ...model.BookingStatus) error
}

type paymentService struct {
	repo     repository.PaymentRepository
	bookings BookingStore
	gateway  gateway.InvoiceGateway
	events   *events.Emitter
	validate *validator.Validate
	policy   engine.Policy
	cfg      *config.Config
	now      func() time.Time

	reservationTTL time.Duration
}

func NewPaymentService(
	repo repository.PaymentRepository,
	bookings BookingStore,
	gw gateway.InvoiceGateway,
	emitter *events.Emitter,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:     repo,
		bookings: bookings,
		gateway:  gw,
		events:   emitter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		policy: engine.Policy{
			TaxRate:          cfg.TaxRate,
			NoticeDays:       cfg.CancellationNoticeDays,
			PaymentTolerance: cfg.PaymentTolerance,
		},
		cfg:            cfg,
		now:            time.Now,
		reservationTTL: reservationTTL(cfg.Xendit.Timeout),
	}
}

// reservationTTL outlives any single provider call.
func reservationTTL(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return time.Minute
	}
	return 2 * timeout
}

func (s *paymentService) CreateInvoice(ctx context.Context, caller auth.Identity, req *model.InvoiceRequest) (*model.Payment, error) {
	log := s.cfg.Log.Ctx(ctx)
	req.BookingRef = sanitizer.NormalizeRef(req.BookingRef)

	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation("Invoice request validation failed", map[string]any{
			"booking_ref": "booking_ref is required and must be 5 to 32 characters",
		})
	}

	booking, err := s.findBookingByRef(ctx, req.BookingRef)
	if err != nil {
		return nil, err
	}
	if booking.UserID != caller.UserID {
		return nil, apperrors.Forbidden("You are not authorized to create an invoice for this booking")
	}
	if booking.IsCancelled() {
		return nil, apperrors.Conflict("Booking is cancelled")
	}

	payment, reserved, err := s.reserve(ctx, booking)
	if err != nil {
		return nil, err
	}

	payerEmail := booking.GuestEmail
	if payerEmail == "" {
		payerEmail = sanitizer.NormalizeEmail(caller.Email)
	}

	invoice, err := s.gateway.CreateInvoice(ctx, gateway.CreateInvoiceParams{
		IdempotencyKey: booking.BookingRef,
		ExternalID:     booking.BookingRef,
		Amount:         booking.TotalAmount,
		PayerEmail:     payerEmail,
		Description:    fmt.Sprintf("Hotel booking %s, %d night(s)", booking.BookingRef, booking.NumberOfNights),
	})
	if err != nil {
		if reserved {
			s.release(ctx, payment)
		}
		if errors.Is(err, gateway.ErrRejected) {
			return nil, apperrors.Wrap(err, apperrors.CodeBadRequest, "Payment provider rejected the invoice", http.StatusBadGateway)
		}
		if errors.Is(err, gateway.ErrUnavailable) {
			return nil, apperrors.Unavailable("Payment provider")
		}
		return nil, apperrors.Internal("Failed to create payment invoice", err)
	}

	if err := s.repo.AttachInvoice(ctx, payment.ID, invoice.ID, invoice.InvoiceURL); err != nil {
		if errors.Is(err, paymentserrors.ErrStatusChanged) || errors.Is(err, paymentserrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict("An invoice already exists for this booking")
		}
		log.Error("Failed to store invoice", "booking_ref", booking.BookingRef, "invoice_id", invoice.ID, "error", err)
		return nil, apperrors.Internal("Failed to create payment invoice", err)
	}
	payment.XenditInvoiceID = invoice.ID
	payment.InvoiceURL = invoice.InvoiceURL

	log.Info("Payment invoice created",
		"booking_ref", booking.BookingRef,
		"invoice_id", invoice.ID,
		"amount", payment.Amount,
	)
	return payment, nil
}

// reserve claims the booking's single payment row before the provider is
// called, so concurrent requests cannot open two invoices. A row left without
// an invoice for longer than the reservation TTL is taken over; the
// idempotency key makes the provider hand back the same invoice.
func (s *paymentService) reserve(ctx context.Context, booking *model.Booking) (*model.Payment, bool, error) {
	existing, err := s.repo.FindByBookingID(ctx, booking.ID)
	switch {
	case err == nil:
		if existing.PaymentStatus == model.PaymentPaid {
			return nil, false, apperrors.Conflict("This booking has already been paid")
		}
		if existing.HasInvoice() {
			return nil, false, apperrors.Conflict("An invoice already exists for this booking").WithDetails(map[string]any{
				"invoice_id":     existing.XenditInvoiceID,
				"payment_status": existing.PaymentStatus,
			})
		}
		if s.now().Sub(existing.CreatedAt) < s.reservationTTL {
			return nil, false, apperrors.Conflict("An invoice is already being created for this booking")
		}
		s.cfg.Log.Ctx(ctx).Warn("Resuming stale invoice reservation", "booking_ref", booking.BookingRef, "payment_id", existing.ID)
		return existing, false, nil
	case !errors.Is(err, paymentserrors.ErrNotFound):
		s.cfg.Log.Ctx(ctx).Error("Failed to look up payment", "booking_id", booking.ID, "error", err)
		return nil, false, apperrors.Internal("Failed to retrieve payment", err)
	}

	payment := &model.Payment{
		BookingID:     booking.ID,
		BookingRef:    booking.BookingRef,
		UserID:        booking.UserID,
		Amount:        booking.TotalAmount,
		PaymentStatus: model.PaymentPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, paymentserrors.ErrAlreadyExists) {
			return nil, false, apperrors.Conflict("An invoice already exists for this booking")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to reserve payment", "booking_ref", booking.BookingRef, "error", err)
		return nil, false, apperrors.Internal("Failed to create payment invoice", err)
	}
	return payment, true, nil
}

// release drops a reservation whose invoice could not be created so the
// guest can try again.
func (s *paymentService) release(ctx context.Context, payment *model.Payment) {
	if err := s.repo.Delete(ctx, payment.ID); err != nil {
		s.cfg.Log.Ctx(ctx).Warn("Failed to release invoice reservation", "payment_id", payment.ID, "error", err)
	}
}

// HandleWebhook applies an invoice callback. Callbacks for unknown invoices
// or already settled payments are ignored so provider retries are harmless.
func (s *paymentService) HandleWebhook(ctx context.Context, cb *model.InvoiceCallback) error {
	log := s.cfg.Log.Ctx(ctx).With("invoice_id", cb.ID, "external_id", cb.ExternalID, "status", cb.Status)

	if cb.ID == "" || cb.ExternalID == "" || cb.Status == "" {
		log.Warn("Webhook is missing required fields")
		return nil
	}

	switch strings.ToUpper(cb.Status) {
	case statusPaid, statusSettled:
		return s.handlePaid(ctx, cb)
	case statusExpired, statusFailed:
		return s.handleFailed(ctx, cb)
	default:
		log.Info("Ignoring webhook status")
		return nil
	}
}

func (s *paymentService) handlePaid(ctx context.Context, cb *model.InvoiceCallback) error {
	log := s.cfg.Log.Ctx(ctx).With("invoice_id", cb.ID)

	payment, booking, err := s.load(ctx, cb)
	if err != nil || payment == nil {
		return err
	}
	if payment.PaymentStatus == model.PaymentPaid {
		log.Info("Payment already marked as PAID")
		return nil
	}

	if !s.policy.ReconcilePayment(booking.TotalAmount, cb.PaidAmount) {
		log.Warn("Payment amount mismatch",
			"booking_ref", booking.BookingRef,
			"expected", booking.TotalAmount,
			"paid", cb.PaidAmount,
		)
		return s.fail(ctx, payment, booking, cb.PaidAmount, "amount mismatch")
	}

	now := s.now()
	confirmed := false
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		confirmed = false
		if err := s.repo.MarkPaid(txCtx, payment.ID, cb.PaidAmount, cb.PaymentMethod, now); err != nil {
			return err
		}
		err := s.bookings.UpdateStatus(txCtx, booking.ID, model.BookingConfirmed, model.BookingPending)
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil
		}
		if err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	if errors.Is(err, paymentserrors.ErrStatusChanged) {
		log.Info("Payment settled concurrently")
		return nil
	}
	if err != nil {
		log.Error("Failed to settle payment", "booking_ref", booking.BookingRef, "error", err)
		return apperrors.Internal("Failed to settle payment", err)
	}

	if !confirmed {
		// paid for a booking that was cancelled meanwhile; needs a manual refund
		log.Warn("Payment received for a booking that is no longer pending",
			"booking_ref", booking.BookingRef,
			"booking_status", booking.BookingStatus,
		)
		return nil
	}

	booking.BookingStatus = model.BookingConfirmed
	booking.UpdatedAt = now.UTC()
	log.Info("Payment settled and booking confirmed", "booking_ref", booking.BookingRef, "amount", cb.PaidAmount)
	s.events.Emit(ctx, kafka.EventBookingConfirmed, booking, "")
	return nil
}

func (s *paymentService) handleFailed(ctx context.Context, cb *model.InvoiceCallback) error {
	payment, booking, err := s.load(ctx, cb)
	if err != nil || payment == nil {
		return err
	}
	if payment.HasInvoice() && payment.XenditInvoiceID != cb.ID {
		// a stray invoice lapsing must not cancel the booking's live one
		s.cfg.Log.Ctx(ctx).Info("Ignoring failure of a superseded invoice", "invoice_id", cb.ID, "payment_invoice_id", payment.XenditInvoiceID)
		return nil
	}
	if payment.PaymentStatus != model.PaymentPending {
		s.cfg.Log.Ctx(ctx).Info("Payment already settled", "invoice_id", cb.ID, "payment_status", payment.PaymentStatus)
		return nil
	}
	return s.fail(ctx, payment, booking, cb.PaidAmount, "invoice "+strings.ToLower(cb.Status))
}

// fail marks the payment FAILED and releases the room by cancelling the
// booking if it is still pending.
func (s *paymentService) fail(ctx context.Context, payment *model.Payment, booking *model.Booking, paid float64, reason string) error {
	log := s.cfg.Log.Ctx(ctx).With("invoice_id", payment.XenditInvoiceID, "booking_ref", booking.BookingRef)

	now := s.now()
	cancelled := false
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		cancelled = false
		if err := s.repo.MarkFailed(txCtx, payment.ID, paid, now); err != nil {
			return err
		}
		err := s.bookings.UpdateStatus(txCtx, booking.ID, model.BookingCancelled, model.BookingPending)
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil
		}
		if err != nil {
			return err
		}
		cancelled = true
		return nil
	})
	if errors.Is(err, paymentserrors.ErrStatusChanged) {
		log.Info("Payment settled concurrently")
		return nil
	}
	if err != nil {
		log.Error("Failed to mark payment as failed", "error", err)
		return apperrors.Internal("Failed to record payment failure", err)
	}

	if cancelled {
		booking.BookingStatus = model.BookingCancelled
		booking.UpdatedAt = now.UTC()
	}
	log.Info("Payment marked as FAILED", "reason", reason, "booking_cancelled", cancelled)
	s.events.Emit(ctx, kafka.EventPaymentFailed, booking, reason)
	return nil
}

// load finds the payment a callback refers to, first by invoice id and then
// by the booking ref sent as external_id. It returns a nil payment, and no
// error, when neither matches.
func (s *paymentService) load(ctx context.Context, cb *model.InvoiceCallback) (*model.Payment, *model.Booking, error) {
	log := s.cfg.Log.Ctx(ctx).With("invoice_id", cb.ID, "external_id", cb.ExternalID)

	payment, err := s.repo.FindByInvoiceID(ctx, cb.ID)
	if errors.Is(err, paymentserrors.ErrNotFound) {
		payment, err = s.findByExternalID(ctx, cb.ExternalID)
		if err == nil {
			log.Warn("Invoice matched by booking ref", "payment_invoice_id", payment.XenditInvoiceID)
		}
	}
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			log.Warn("Payment not found for invoice")
			return nil, nil, nil
		}
		log.Error("Failed to look up payment", "error", err)
		return nil, nil, apperrors.Internal("Failed to retrieve payment", err)
	}

	booking, err := s.bookings.FindByID(ctx, payment.BookingID)
	if err != nil {
		log.Error("Failed to load booking for payment", "booking_id", payment.BookingID, "error", err)
		return nil, nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return payment, booking, nil
}

func (s *paymentService) findByExternalID(ctx context.Context, ref string) (*model.Payment, error) {
	booking, err := s.bookings.FindByRef(ctx, sanitizer.NormalizeRef(ref))
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, paymentserrors.ErrNotFound
		}
		return nil, err
	}
	return s.repo.FindByBookingID(ctx, booking.ID)
}

func (s *paymentService) Verify(ctx context.Context, caller auth.Identity, ref string) (*model.PaymentVerification, error) {
	booking, err := s.findBookingByRef(ctx, sanitizer.NormalizeRef(ref))
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, apperrors.Forbidden("You do not have permission to view this booking")
	}

	verification := &model.PaymentVerification{
		BookingRef:    booking.BookingRef,
		BookingStatus: booking.BookingStatus,
		TotalAmount:   booking.TotalAmount,
	}

	payment, err := s.repo.FindByBookingID(ctx, booking.ID)
	switch {
	case err == nil:
		verification.PaymentStatus = payment.PaymentStatus
		verification.InvoiceURL = payment.InvoiceURL
	case !errors.Is(err, paymentserrors.ErrNotFound):
		s.cfg.Log.Ctx(ctx).Error("Failed to look up payment", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	return verification, nil
}

func (s *paymentService) findBookingByRef(ctx context.Context, ref string) (*model.Booking, error) {
	if ref == "" {
		return nil, apperrors.InvalidInput("Booking reference cannot be empty")
	}
	booking, err := s.bookings.FindByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", ref)
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to retrieve booking", "booking_ref", ref, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}
