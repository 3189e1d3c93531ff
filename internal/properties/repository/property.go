package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	propertieserrors "skybridge/internal/properties/errors"
	"skybridge/pkg/config"
	mongotx "skybridge/pkg/db/mongo"
	"skybridge/pkg/model"
)

const (
	CollectionName = "Properties"
)

// Filter narrows a property listing. Zero fields do not filter. A non-nil
// IDs restricts the result to those ids, so an empty one matches nothing.
type Filter struct {
	Status       model.PropertyStatus
	OwnerID      string
	PropertyType string
	Amenities    []string
	IDs          []string

	// OldestSubmissionFirst orders a review queue; listings default to newest first.
	OldestSubmissionFirst bool
}

type Review struct {
	Status          model.PropertyStatus
	ReviewedByID    string
	RejectionReason string
	At              time.Time
}

type PropertyRepository interface {
	Create(ctx context.Context, p *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	Find(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Property, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Resubmit(ctx context.Context, p *model.Property) error
	Review(ctx context.Context, id string, review Review) (*model.Property, error)
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPropertyRepository) Create(ctx context.Context, p *model.Property) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	var p model.Property
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", propertieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &p, nil
}

func (r *mongoPropertyRepository) Find(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	if filter.OldestSubmissionFirst {
		sort = bson.D{{Key: "submission_date", Value: 1}, {Key: "_id", Value: 1}}
	}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(sort)

	cursor, err := r.collection.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []*model.Property{}
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

func (r *mongoPropertyRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

// Resubmit replaces the owner-editable fields and puts the property back in
// the review queue.
func (r *mongoPropertyRepository) Resubmit(ctx context.Context, p *model.Property) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, p.ID)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$set": bson.M{
				"name":            p.Name,
				"description":     p.Description,
				"property_type":   p.PropertyType,
				"address":         p.Address,
				"city":            p.City,
				"latitude":        p.Latitude,
				"longitude":       p.Longitude,
				"contact_email":   p.ContactEmail,
				"amenities":       p.Amenities,
				"images":          p.Images,
				"check_in_time":   p.CheckInTime,
				"check_out_time":  p.CheckOutTime,
				"status":          model.PropertyPending,
				"submission_date": p.SubmissionDate,
				"updated_at":      now,
			},
			"$unset": bson.M{
				"reviewed_date":    "",
				"reviewed_by_id":   "",
				"rejection_reason": "",
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", propertieserrors.ErrNotFound, p.ID)
	}

	p.Status = model.PropertyPending
	p.UpdatedAt = now
	p.ReviewedDate = nil
	p.ReviewedByID = ""
	p.RejectionReason = ""
	return nil
}

// Review records an admin decision and returns the updated property.
func (r *mongoPropertyRepository) Review(ctx context.Context, id string, review Review) (*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	at := review.At.UTC().Truncate(time.Millisecond)
	set := bson.M{
		"status":         review.Status,
		"reviewed_date":  at,
		"reviewed_by_id": review.ReviewedByID,
		"updated_at":     at,
	}
	update := bson.M{"$set": set}
	if review.RejectionReason != "" {
		set["rejection_reason"] = review.RejectionReason
	} else {
		update["$unset"] = bson.M{"rejection_reason": ""}
	}

	var p model.Property
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", propertieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to review property: %w", err)
	}
	return &p, nil
}

func (f Filter) toBSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.PropertyType != "" {
		filter["property_type"] = f.PropertyType
	}
	if len(f.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": f.Amenities}
	}
	if f.IDs != nil {
		ids := make([]primitive.ObjectID, 0, len(f.IDs))
		for _, id := range f.IDs {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				ids = append(ids, oid)
			}
		}
		filter["_id"] = bson.M{"$in": ids}
	}
	return filter
}
