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

	roomtypeserrors "skybridge/internal/roomtypes/errors"
	"skybridge/pkg/config"
	mongotx "skybridge/pkg/db/mongo"
	"skybridge/pkg/model"
)

const (
	CollectionName = "Room_types"
)

type RoomTypeRepository interface {
	Create(ctx context.Context, rt *model.RoomType) error
	FindByID(ctx context.Context, id string) (*model.RoomType, error)
	FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.RoomType, error)
	CountByProperty(ctx context.Context, propertyID string) (int64, error)
	PropertyIDsInPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]string, error)
}

type mongoRoomTypeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomTypeRepository(cfg *config.Config) RoomTypeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomTypeRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoomTypeRepository) Create(ctx context.Context, rt *model.RoomType) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, rt)
	if err != nil {
		return fmt.Errorf("failed to create room type: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rt.ID = oid.Hex()
	}

	return nil
}

func (r *mongoRoomTypeRepository) FindByID(ctx context.Context, id string) (*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomtypeserrors.ErrInvalidID, id)
	}

	var rt model.RoomType
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", roomtypeserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find room type: %w", err)
	}
	return &rt, nil
}

func (r *mongoRoomTypeRepository) FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "price_per_night", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, propertyFilter(propertyID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query room types: %w", err)
	}
	defer cursor.Close(ctx)

	roomTypes := []*model.RoomType{}
	if err = cursor.All(ctx, &roomTypes); err != nil {
		return nil, fmt.Errorf("failed to decode room types: %w", err)
	}

	return roomTypes, nil
}

func (r *mongoRoomTypeRepository) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, propertyFilter(propertyID))
	if err != nil {
		return 0, fmt.Errorf("failed to count room types: %w", err)
	}
	return count, nil
}

// PropertyIDsInPriceRange returns the properties with at least one room type
// priced inside the bounds. A zero bound is open.
func (r *mongoRoomTypeRepository) PropertyIDsInPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "property_id", priceFilter(minPrice, maxPrice))
	if err != nil {
		return nil, fmt.Errorf("failed to query room type prices: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func priceFilter(minPrice, maxPrice float64) bson.M {
	price := bson.M{}
	if minPrice > 0 {
		price["$gte"] = minPrice
	}
	if maxPrice > 0 {
		price["$lte"] = maxPrice
	}
	if len(price) == 0 {
		return bson.M{}
	}
	return bson.M{"price_per_night": price}
}

// an empty property id lists every room type
func propertyFilter(propertyID string) bson.M {
	if propertyID == "" {
		return bson.M{}
	}
	return bson.M{"property_id": propertyID}
}
