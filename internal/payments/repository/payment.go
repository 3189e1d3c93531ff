package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	paymentserrors "skybridge/internal/payments/errors"
	"skybridge/pkg/config"
	mongotx "skybridge/pkg/db/mongo"
	"skybridge/pkg/model"
)

const (
	CollectionName = "Payments"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByBookingID(ctx context.Context, bookingID string) (*model.Payment, error)
	FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error)
	AttachInvoice(ctx context.Context, id, invoiceID, invoiceURL string) error
	Delete(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string, paidAmount float64, method string, at time.Time) error
	MarkFailed(ctx context.Context, id string, paidAmount float64, at time.Time) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPaymentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPaymentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// Create inserts a payment. booking_id is unique, so a second payment for one
// booking fails with ErrAlreadyExists. The row may be inserted before the
// provider invoice exists; AttachInvoice fills it in.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	payment.CreatedAt = now
	payment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: booking %s", paymentserrors.ErrAlreadyExists, payment.BookingID)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		payment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPaymentRepository) findOne(ctx context.Context, filter bson.M) (*model.Payment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var payment model.Payment
	if err := r.collection.FindOne(ctx, filter).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

func (r *mongoPaymentRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"booking_id": bookingID})
}

func (r *mongoPaymentRepository) FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"xendit_invoice_id": invoiceID})
}

// AttachInvoice records the provider invoice on a payment that has none yet.
func (r *mongoPaymentRepository) AttachInvoice(ctx context.Context, id, invoiceID, invoiceURL string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "xendit_invoice_id": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"xendit_invoice_id": invoiceID,
			"invoice_url":       invoiceURL,
			"updated_at":        time.Now().UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: invoice %s", paymentserrors.ErrAlreadyExists, invoiceID)
		}
		return fmt.Errorf("failed to attach invoice: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymentserrors.ErrStatusChanged
	}
	return nil
}

// Delete removes a payment that never got an invoice.
func (r *mongoPaymentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":               objectID,
		"xendit_invoice_id": bson.M{"$exists": false},
	})
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if result.DeletedCount == 0 {
		return paymentserrors.ErrStatusChanged
	}
	return nil
}

// MarkPaid settles any payment that is not already PAID.
func (r *mongoPaymentRepository) MarkPaid(ctx context.Context, id string, paidAmount float64, method string, at time.Time) error {
	return r.updateStatus(ctx, id,
		bson.M{"$ne": model.PaymentPaid},
		bson.M{
			"payment_status":   model.PaymentPaid,
			"paid_amount":      paidAmount,
			"payment_method":   method,
			"transaction_date": at.UTC(),
		},
	)
}

// MarkFailed fails a payment that is still PENDING.
func (r *mongoPaymentRepository) MarkFailed(ctx context.Context, id string, paidAmount float64, at time.Time) error {
	return r.updateStatus(ctx, id,
		model.PaymentPending,
		bson.M{
			"payment_status":   model.PaymentFailed,
			"paid_amount":      paidAmount,
			"transaction_date": at.UTC(),
		},
	)
}

func (r *mongoPaymentRepository) updateStatus(ctx context.Context, id string, current any, set bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "payment_status": current},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymentserrors.ErrStatusChanged
	}
	return nil
}

func (r *mongoPaymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
