package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	propertieserrors "skybridge/internal/properties/errors"
	"skybridge/internal/properties/repository"
	"skybridge/internal/properties/validator"
	"skybridge/pkg/auth"
	"skybridge/pkg/config"
	apperrors "skybridge/pkg/errors"
	"skybridge/pkg/kafka"
	"skybridge/pkg/logger"
	"skybridge/pkg/model"
	"skybridge/pkg/sanitizer"
)

// maxRoomTypesPerProperty caps the room types embedded in a property detail.
const maxRoomTypesPerProperty = 100

type PropertyService interface {
	Submit(ctx context.Context, caller auth.Identity, p *model.Property) error
	Update(ctx context.Context, caller auth.Identity, id string, p *model.Property) (*model.Property, error)
	GetByID(ctx context.Context, caller auth.Identity, id string) (*model.PropertyDetail, error)
	Search(ctx context.Context, q model.PropertySearch, limit int, offset int64) ([]*model.Property, int64, error)
	ListMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Property, int64, error)
	ListForReview(ctx context.Context, status string, limit int, offset int64) ([]*model.Property, int64, error)
	Approve(ctx context.Context, caller auth.Identity, id string) (*model.Property, error)
	Reject(ctx context.Context, caller auth.Identity, id string, rejection *model.PropertyRejection) (*model.Property, error)
}

// RoomTypeCatalog is the part of the room type store the catalog reads.
type RoomTypeCatalog interface {
	FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.RoomType, error)
	PropertyIDsInPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]string, error)
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type propertyService struct {
	repo      repository.PropertyRepository
	roomTypes RoomTypeCatalog
	validator *validator.PropertyValidator
	publisher Publisher
	source    string
	cfg       *config.Config
	now       func() time.Time
}

func NewPropertyService(
	repo repository.PropertyRepository,
	roomTypes RoomTypeCatalog,
	validator *validator.PropertyValidator,
	publisher Publisher,
	source string,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		roomTypes: roomTypes,
		validator: validator,
		publisher: publisher,
		source:    source,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Submit stores a new listing owned by the caller and queues it for review.
func (s *propertyService) Submit(ctx context.Context, caller auth.Identity, p *model.Property) error {
	s.normalize(p)
	if err := s.validate(ctx, p); err != nil {
		return err
	}

	p.ID = ""
	p.OwnerID = caller.UserID
	p.OwnerEmail = sanitizer.NormalizeEmail(caller.Email)
	p.Status = model.PropertyPending
	p.SubmissionDate = s.now().UTC().Truncate(time.Millisecond)
	p.ReviewedDate = nil
	p.ReviewedByID = ""
	p.RejectionReason = ""

	if err := s.repo.Create(ctx, p); err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to create property", "name", p.Name, "error", err)
		return apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Ctx(ctx).Info("Property submitted for review",
		"id", p.ID,
		"owner_id", p.OwnerID,
		"property_type", p.PropertyType,
	)
	s.emit(ctx, kafka.EventPropertySubmitted, p)
	return nil
}

// Update replaces the owner's listing and sends it back to review, even when
// it was already published.
func (s *propertyService) Update(ctx context.Context, caller auth.Identity, id string, p *model.Property) (*model.Property, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != caller.UserID {
		return nil, apperrors.Forbidden("You do not have permission to update this property")
	}

	s.normalize(p)
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}

	p.ID = existing.ID
	p.OwnerID = existing.OwnerID
	p.OwnerEmail = existing.OwnerEmail
	p.CreatedAt = existing.CreatedAt
	p.SubmissionDate = s.now().UTC().Truncate(time.Millisecond)

	if err := s.repo.Resubmit(ctx, p); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to update property", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update property", err)
	}

	s.cfg.Log.Ctx(ctx).Info("Property updated and resubmitted", "id", p.ID, "previous_status", existing.Status)
	return p, nil
}

// GetByID hides unpublished listings from everyone but their owner and admins.
func (s *propertyService) GetByID(ctx context.Context, caller auth.Identity, id string) (*model.PropertyDetail, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished() && !caller.CanAccess(p.OwnerID) {
		return nil, apperrors.NotFoundWithID("Property", id)
	}

	roomTypes, err := s.roomTypes.FindByProperty(ctx, p.ID, maxRoomTypesPerProperty, 0)
	if err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to load room types", "property_id", p.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve room types", err)
	}
	return &model.PropertyDetail{Property: p, RoomTypes: roomTypes}, nil
}

func (s *propertyService) Search(ctx context.Context, q model.PropertySearch, limit int, offset int64) ([]*model.Property, int64, error) {
	if q.MinPrice < 0 || q.MaxPrice < 0 || (q.MaxPrice > 0 && q.MinPrice > q.MaxPrice) {
		return nil, 0, apperrors.InvalidInput("Invalid price range")
	}

	filter := repository.Filter{
		Status:       model.PropertyPublished,
		PropertyType: strings.ToUpper(sanitizer.TrimAndNormalize(q.PropertyType)),
		Amenities:    q.Amenities,
	}
	if q.HasPriceFilter() {
		ids, err := s.roomTypes.PropertyIDsInPriceRange(ctx, q.MinPrice, q.MaxPrice)
		if err != nil {
			s.cfg.Log.Ctx(ctx).Error("Failed to filter by price", "min_price", q.MinPrice, "max_price", q.MaxPrice, "error", err)
			return nil, 0, apperrors.Internal("Failed to search properties", err)
		}
		if len(ids) == 0 {
			return []*model.Property{}, 0, nil
		}
		filter.IDs = ids
	}

	return s.list(ctx, filter, limit, offset)
}

func (s *propertyService) ListMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Property, int64, error) {
	return s.list(ctx, repository.Filter{OwnerID: caller.UserID}, limit, offset)
}

// ListForReview lists properties for admins. The pending queue is served
// oldest submission first.
func (s *propertyService) ListForReview(ctx context.Context, status string, limit int, offset int64) ([]*model.Property, int64, error) {
	filter := repository.Filter{}
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		st, ok := model.ParsePropertyStatus(status)
		if !ok {
			return nil, 0, apperrors.InvalidInput("Invalid property status: " + status)
		}
		filter.Status = st
		filter.OldestSubmissionFirst = st == model.PropertyPending
	}
	return s.list(ctx, filter, limit, offset)
}

func (s *propertyService) Approve(ctx context.Context, caller auth.Identity, id string) (*model.Property, error) {
	p, err := s.review(ctx, id, repository.Review{
		Status:       model.PropertyPublished,
		ReviewedByID: caller.UserID,
		At:           s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, kafka.EventPropertyApproved, p)
	return p, nil
}

func (s *propertyService) Reject(ctx context.Context, caller auth.Identity, id string, rejection *model.PropertyRejection) (*model.Property, error) {
	rejection.RejectionReason = sanitizer.NormalizeText(rejection.RejectionReason)
	if err := s.validator.ValidateRejection(rejection); err != nil {
		return nil, validationFailure("Rejection validation failed", err)
	}

	p, err := s.review(ctx, id, repository.Review{
		Status:          model.PropertyRejected,
		ReviewedByID:    caller.UserID,
		RejectionReason: rejection.RejectionReason,
		At:              s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, kafka.EventPropertyRejected, p)
	return p, nil
}

func (s *propertyService) review(ctx context.Context, id string, review repository.Review) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	p, err := s.repo.Review(ctx, id, review)
	if err != nil {
		if appErr := lookupError(id, err); appErr != nil {
			return nil, appErr
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to review property", "id", id, "status", review.Status, "error", err)
		return nil, apperrors.Internal("Failed to review property", err)
	}

	s.cfg.Log.Ctx(ctx).Info("Property reviewed",
		"id", p.ID,
		"status", p.Status,
		"reviewed_by", review.ReviewedByID,
	)
	return p, nil
}

func (s *propertyService) find(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErr := lookupError(id, err); appErr != nil {
			return nil, appErr
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to retrieve property", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}
	return p, nil
}

func (s *propertyService) list(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Property, int64, error) {
	var total int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = s.repo.Count(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		properties, errFind = s.repo.Find(ctx, filter, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to count properties", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count properties", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to list properties", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve properties", errFind)
	}
	return properties, total, nil
}

// every listing sits in the configured service area
func (s *propertyService) normalize(p *model.Property) {
	p.Name = sanitizer.NormalizeName(p.Name)
	p.Description = sanitizer.NormalizeText(p.Description)
	p.PropertyType = strings.ToUpper(sanitizer.TrimAndNormalize(p.PropertyType))
	p.Address = sanitizer.TrimAndNormalize(p.Address)
	p.City = s.cfg.ServiceAreaCity
	p.ContactEmail = sanitizer.NormalizeEmail(p.ContactEmail)
	p.CheckInTime = sanitizer.TrimAndNormalize(p.CheckInTime)
	p.CheckOutTime = sanitizer.TrimAndNormalize(p.CheckOutTime)
	p.Amenities = normalizeList(p.Amenities)
	p.Images = normalizeList(p.Images)
}

func (s *propertyService) validate(ctx context.Context, p *model.Property) error {
	if err := s.validator.Validate(p); err != nil {
		s.cfg.Log.Ctx(ctx).Warn("Property validation failed", "name", p.Name, "error", err)
		return validationFailure("Property validation failed", err)
	}
	return nil
}

// emit is best effort: the property change is already stored.
func (s *propertyService) emit(ctx context.Context, eventType string, p *model.Property) {
	if s.publisher == nil {
		return
	}
	log := s.cfg.Log.Ctx(ctx).With("event_type", eventType, "property_id", p.ID)

	msg, err := kafka.NewPropertyEventMessage(eventType, s.source, logger.RequestID(ctx), kafka.PropertyEvent{
		PropertyID:      p.ID,
		PropertyName:    p.Name,
		OwnerID:         p.OwnerID,
		OwnerEmail:      p.OwnerEmail,
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason,
	})
	if err != nil {
		log.Error("Failed to build property event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		log.Error("Failed to publish property event", "error", err)
		return
	}
	log.Debug("Property event published")
}

func lookupError(id string, err error) *apperrors.AppError {
	switch {
	case errors.Is(err, propertieserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Property", id)
	case errors.Is(err, propertieserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid property ID format")
	}
	return nil
}

func validationFailure(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// normalizeList trims entries and drops blanks and duplicates.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = sanitizer.TrimAndNormalize(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
