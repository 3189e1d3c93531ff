package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"skybridge/internal/bookings/engine"
	bookingserrors "skybridge/internal/bookings/errors"
	"skybridge/internal/bookings/events"
	"skybridge/internal/bookings/repository"
	"skybridge/internal/bookings/validator"
	propertieserrors "skybridge/internal/properties/errors"
	roomtypeserrors "skybridge/internal/roomtypes/errors"
	"skybridge/pkg/auth"
	"skybridge/pkg/config"
	apperrors "skybridge/pkg/errors"
	"skybridge/pkg/kafka"
	"skybridge/pkg/model"
	"skybridge/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, caller auth.Identity, req *model.BookingRequest) (*model.Booking, error)
	GetMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error)
	Cancel(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}

// RoomTypeFinder is the part of the room type store a booking needs.
type RoomTypeFinder interface {
	FindByID(ctx context.Context, id string) (*model.RoomType, error)
}

// PropertyFinder is the part of the property catalog a booking needs.
type PropertyFinder interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	locks      repository.InventoryLockRepository
	roomTypes  RoomTypeFinder
	properties PropertyFinder
	validator  *validator.BookingValidator
	events     *events.Emitter
	policy     engine.Policy
	refs       *engine.RefGenerator
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	locks repository.InventoryLockRepository,
	roomTypes RoomTypeFinder,
	properties PropertyFinder,
	validator *validator.BookingValidator,
	emitter *events.Emitter,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		locks:      locks,
		roomTypes:  roomTypes,
		properties: properties,
		validator:  validator,
		events:     emitter,
		policy: engine.Policy{
			TaxRate:          cfg.TaxRate,
			NoticeDays:       cfg.CancellationNoticeDays,
			PaymentTolerance: cfg.PaymentTolerance,
		},
		refs: engine.NewRefGenerator(cfg.BookingRefPrefix, nil),
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, caller auth.Identity, req *model.BookingRequest) (*model.Booking, error) {
	log := s.cfg.Log.Ctx(ctx)
	req.GuestEmail = sanitizer.NormalizeEmail(req.GuestEmail)

	stay, err := s.validator.ValidateRequest(req)
	if err != nil {
		return nil, validationFailure("Booking validation failed", err)
	}

	rt, err := s.roomTypes.FindByID(ctx, req.RoomTypeID)
	if err != nil {
		return nil, roomTypeLookupError(req.RoomTypeID, err)
	}
	if rt.PropertyID != req.PropertyID {
		return nil, apperrors.NotFoundWithID("Room type", req.RoomTypeID)
	}
	if err := s.checkBookable(ctx, rt.PropertyID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateParty(rt, req.Adults, req.Children); err != nil {
		return nil, validationFailure("Party does not fit the room type", err)
	}

	quote, err := s.policy.Quote(rt.PricePerNight, stay.CheckIn, stay.CheckOut)
	if err != nil {
		return nil, engineError(err)
	}

	guestEmail := req.GuestEmail
	if guestEmail == "" {
		guestEmail = sanitizer.NormalizeEmail(caller.Email)
	}
	booking := &model.Booking{
		UserID:         caller.UserID,
		GuestEmail:     guestEmail,
		PropertyID:     rt.PropertyID,
		RoomTypeID:     rt.ID,
		CheckInDate:    stay.CheckIn,
		CheckOutDate:   stay.CheckOut,
		NumberOfNights: quote.Nights,
		Adults:         req.Adults,
		Children:       req.Children,
		Subtotal:       quote.Subtotal,
		TaxesAndFees:   quote.TaxesAndFees,
		TotalAmount:    quote.TotalAmount,
		BookingStatus:  model.BookingPending,
	}

	if err := s.reserve(ctx, rt, booking); err != nil {
		if appErr, ok := bookingserrors.FromEngine(err); ok {
			log.Warn("Booking rejected", "room_type_id", rt.ID, "reason", err.Error())
			return nil, appErr
		}
		log.Error("Failed to create booking", "room_type_id", rt.ID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	log.Info("Booking created successfully",
		"id", booking.ID,
		"booking_ref", booking.BookingRef,
		"room_type_id", booking.RoomTypeID,
		"check_in_date", booking.CheckInDate,
		"nights", booking.NumberOfNights,
		"total_amount", booking.TotalAmount,
	)
	s.events.Emit(ctx, kafka.EventBookingCreated, booking, "")
	return booking, nil
}

// reserve inserts booking if the room type still has a free room for its
// dates. The availability check and the insert share one transaction, and
// the inventory lock makes concurrent reservations of the same room type
// commit one at a time. A reference collision reruns the transaction with a
// fresh reference.
func (s *bookingService) reserve(ctx context.Context, rt *model.RoomType, booking *model.Booking) error {
	attempts := max(s.cfg.BookingRefMaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if booking.BookingRef, err = s.refs.Next(); err != nil {
			return err
		}

		err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			booking.ID = ""

			if err := s.locks.Touch(txCtx, rt.ID); err != nil {
				return err
			}
			existing, err := s.repo.FindOverlapping(txCtx, rt.ID, booking.CheckInDate, booking.CheckOutDate)
			if err != nil {
				return err
			}
			if err := engine.CheckAvailability(rt, existing, booking.CheckInDate, booking.CheckOutDate); err != nil {
				return err
			}
			return s.repo.Create(txCtx, booking)
		})
		if !errors.Is(err, bookingserrors.ErrDuplicateRef) {
			return err
		}
		s.cfg.Log.Ctx(ctx).Warn("Booking reference collision, retrying",
			"booking_ref", booking.BookingRef,
			"attempt", attempt,
		)
	}
	return err
}

func (s *bookingService) GetMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx,
		func(ctx context.Context) (int64, error) { return s.repo.CountByUser(ctx, caller.UserID) },
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindByUser(ctx, caller.UserID, limit, offset)
		},
	)
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx, s.repo.Count, func(ctx context.Context) ([]*model.Booking, error) {
		return s.repo.FindAll(ctx, limit, offset)
	})
}

// list runs the count and the page query concurrently.
func (s *bookingService) list(
	ctx context.Context,
	count func(context.Context) (int64, error),
	find func(context.Context) ([]*model.Booking, error),
) ([]*model.Booking, int64, error) {
	var total int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = find(ctx)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to count bookings", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to list bookings", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", errFind)
	}

	return bookings, total, nil
}

func (s *bookingService) GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, apperrors.Forbidden("You do not have permission to view this booking")
	}
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, caller auth.Identity, id string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != caller.UserID {
		return nil, apperrors.Forbidden("You do not have permission to cancel this booking")
	}

	now := s.now()
	if err := s.policy.CheckCancellable(booking, now); err != nil {
		return nil, engineError(err)
	}

	err = s.repo.UpdateStatus(ctx, booking.ID, model.BookingCancelled, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("booking is already cancelled")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	booking.BookingStatus = model.BookingCancelled
	booking.UpdatedAt = now.UTC()

	s.cfg.Log.Ctx(ctx).Info("Booking cancelled", "id", booking.ID, "booking_ref", booking.BookingRef)
	s.events.Emit(ctx, kafka.EventBookingCancelled, booking, "cancelled by guest")
	return booking, nil
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

// checkBookable admits bookings only against published properties.
func (s *bookingService) checkBookable(ctx context.Context, propertyID string) error {
	p, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) || errors.Is(err, propertieserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Property", propertyID)
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to retrieve property", "property_id", propertyID, "error", err)
		return apperrors.Internal("Failed to retrieve property", err)
	}
	if !p.IsPublished() {
		s.cfg.Log.Ctx(ctx).Warn("Booking rejected", "property_id", propertyID, "reason", "property not published", "status", p.Status)
		return apperrors.InvalidInput("Property is not available for booking")
	}
	return nil
}

func roomTypeLookupError(id string, err error) error {
	if errors.Is(err, roomtypeserrors.ErrNotFound) || errors.Is(err, roomtypeserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Room type", id)
	}
	return apperrors.Internal("Failed to retrieve room type", err)
}

func validationFailure(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func engineError(err error) error {
	if appErr, ok := bookingserrors.FromEngine(err); ok {
		return appErr
	}
	return apperrors.Internal("Unexpected booking rule failure", err)
}
