package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"skybridge/internal/bookings/engine"
	bookingserrors "skybridge/internal/bookings/errors"
	bookingsvalidator "skybridge/internal/bookings/validator"
	propertieserrors "skybridge/internal/properties/errors"
	roomtypeserrors "skybridge/internal/roomtypes/errors"
	"skybridge/internal/roomtypes/repository"
	"skybridge/internal/roomtypes/validator"
	"skybridge/pkg/auth"
	"skybridge/pkg/config"
	apperrors "skybridge/pkg/errors"
	"skybridge/pkg/model"
	"skybridge/pkg/sanitizer"
)

type RoomTypeService interface {
	Create(ctx context.Context, caller auth.Identity, rt *model.RoomType) error
	GetByID(ctx context.Context, id string) (*model.RoomType, error)
	List(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.RoomType, int64, error)
	Quote(ctx context.Context, id, checkIn, checkOut string) (*model.BookingQuote, error)
}

// BookingOverlapFinder loads the bookings that share nights with a stay.
type BookingOverlapFinder interface {
	FindOverlapping(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) ([]*model.Booking, error)
}

// PropertyFinder resolves the property a room type is listed under.
type PropertyFinder interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

type roomTypeService struct {
	repo       repository.RoomTypeRepository
	bookings   BookingOverlapFinder
	properties PropertyFinder
	validator  *validator.RoomTypeValidator
	policy     engine.Policy
	cfg        *config.Config
}

func NewRoomTypeService(
	repo repository.RoomTypeRepository,
	bookings BookingOverlapFinder,
	properties PropertyFinder,
	validator *validator.RoomTypeValidator,
	cfg *config.Config,
) RoomTypeService {
	return &roomTypeService{
		repo:       repo,
		bookings:   bookings,
		properties: properties,
		validator:  validator,
		policy: engine.Policy{
			TaxRate:          cfg.TaxRate,
			NoticeDays:       cfg.CancellationNoticeDays,
			PaymentTolerance: cfg.PaymentTolerance,
		},
		cfg: cfg,
	}
}

// Create adds a room type to a property the caller owns. Admins may add room
// types to any property; the room type is still owned by the property owner.
func (s *roomTypeService) Create(ctx context.Context, caller auth.Identity, rt *model.RoomType) error {
	rt.ID = ""
	rt.OwnerID = ""
	rt.PropertyID = sanitizer.TrimAndNormalize(rt.PropertyID)
	rt.Name = sanitizer.NormalizeName(rt.Name)
	rt.Description = sanitizer.NormalizeText(rt.Description)

	if err := s.validator.Validate(rt); err != nil {
		s.cfg.Log.Ctx(ctx).Warn("Room type validation failed", "name", rt.Name, "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Room type validation failed", verrs.Details())
		}
		return apperrors.Validation("Room type validation failed", map[string]any{"error": err.Error()})
	}

	property, err := s.properties.FindByID(ctx, rt.PropertyID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) || errors.Is(err, propertieserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Property", rt.PropertyID)
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to retrieve property", "property_id", rt.PropertyID, "error", err)
		return apperrors.Internal("Failed to retrieve property", err)
	}
	if !caller.CanAccess(property.OwnerID) {
		s.cfg.Log.Ctx(ctx).Warn("Room type rejected", "property_id", rt.PropertyID, "user_id", caller.UserID, "reason", "not the property owner")
		return apperrors.Forbidden("You do not have permission to add room types to this property")
	}
	rt.OwnerID = property.OwnerID

	if err := s.repo.Create(ctx, rt); err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to create room type", "name", rt.Name, "error", err)
		return apperrors.Internal("Failed to create room type", err)
	}

	s.cfg.Log.Ctx(ctx).Info("Room type created successfully",
		"id", rt.ID,
		"property_id", rt.PropertyID,
		"available_rooms", rt.AvailableRooms,
		"price_per_night", rt.PricePerNight,
	)
	return nil
}

func (s *roomTypeService) GetByID(ctx context.Context, id string) (*model.RoomType, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room type ID cannot be empty")
	}

	rt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomtypeserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room type", id)
		}
		if errors.Is(err, roomtypeserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room type ID format")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to retrieve room type", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve room type", err)
	}
	return rt, nil
}

func (s *roomTypeService) List(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.RoomType, int64, error) {
	propertyID = sanitizer.TrimAndNormalize(propertyID)

	var total int64
	var roomTypes []*model.RoomType
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = s.repo.CountByProperty(ctx, propertyID)
	}()

	go func() {
		defer wg.Done()
		roomTypes, errFind = s.repo.FindByProperty(ctx, propertyID, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to count room types", "property_id", propertyID, "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count room types", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to list room types", "property_id", propertyID, "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve room types", errFind)
	}

	return roomTypes, total, nil
}

// Quote prices a stay and reports whether a room is still free for it. The
// answer is advisory: only booking creation holds the inventory lock.
func (s *roomTypeService) Quote(ctx context.Context, id, checkIn, checkOut string) (*model.BookingQuote, error) {
	stay, err := bookingsvalidator.ParseStay(checkIn, checkOut)
	if err != nil {
		var verrs bookingsvalidator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Invalid stay dates", verrs.Details())
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	rt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	quote, err := s.policy.Quote(rt.PricePerNight, stay.CheckIn, stay.CheckOut)
	if err != nil {
		if appErr, ok := bookingserrors.FromEngine(err); ok {
			return nil, appErr
		}
		return nil, apperrors.Internal("Failed to price stay", err)
	}

	existing, err := s.bookings.FindOverlapping(ctx, rt.ID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to load overlapping bookings", "room_type_id", rt.ID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	return &model.BookingQuote{
		RoomTypeID:     rt.ID,
		CheckInDate:    stay.CheckIn,
		CheckOutDate:   stay.CheckOut,
		Available:      engine.IsAvailable(rt, existing, stay.CheckIn, stay.CheckOut),
		NumberOfNights: quote.Nights,
		Subtotal:       quote.Subtotal,
		TaxesAndFees:   quote.TaxesAndFees,
		TotalAmount:    quote.TotalAmount,
	}, nil
}
