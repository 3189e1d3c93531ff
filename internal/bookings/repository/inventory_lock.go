package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skybridge/pkg/config"
	mongotx "skybridge/pkg/db/mongo"
)

const InventoryLockCollection = "Inventory_locks"

// InventoryLockRepository serializes bookings of one room type. Touch must
// run inside the booking transaction: two transactions touching the same
// room type write the same document, so MongoDB aborts one of them with a
// TransientTransactionError and WithTransaction retries it after the other
// has committed.
type InventoryLockRepository interface {
	Touch(ctx context.Context, roomTypeID string) error
}

type mongoInventoryLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewInventoryLockRepository(cfg *config.Config) InventoryLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInventoryLockRepository{
		cfg:        cfg,
		collection: db.Collection(InventoryLockCollection),
	}
}

func (r *mongoInventoryLockRepository) Touch(ctx context.Context, roomTypeID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": roomTypeID}, update, options.Update().SetUpsert(true))
	if err != nil {
		// keep the driver error in the chain so its transient label survives
		return fmt.Errorf("failed to lock inventory for room type %s: %w", roomTypeID, err)
	}
	return nil
}
