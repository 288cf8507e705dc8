package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Majorzinnn/botDC/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("payment status transition conflict")
)

// TransactionRepository is the persistence surface of the payment ledger.
// No business rules live here beyond the two invariants the ledger itself
// owns: forward-only status transitions and delivered monotonicity.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Transaction, error)
	// UpdateStatus applies a compare-and-set transition from -> to on a
	// single row. ErrStatusConflict means the row was no longer in the
	// expected state; callers re-read and converge.
	UpdateStatus(ctx context.Context, id, from, to, providerStatus string) error
	// MarkDelivered flips delivered to true, but only on a paid row that
	// has not been delivered yet. Returns true when this call won the
	// flip, false when another fulfillment already did.
	MarkDelivered(ctx context.Context, id string) (bool, error)
	FindAll(ctx context.Context, limit int64) ([]models.Transaction, error)
}

type mongoTransactionRepo struct {
	coll *mongo.Collection
}

func NewMongoTransactionRepo(db *mongo.Database) TransactionRepository {
	return &mongoTransactionRepo{coll: db.Collection("payment_transactions")}
}

func (r *mongoTransactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	_, err := r.coll.InsertOne(ctx, txn)
	return err
}

func (r *mongoTransactionRepo) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoTransactionRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"session_id": sessionID})
}

func (r *mongoTransactionRepo) findOne(ctx context.Context, filter bson.M) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.coll.FindOne(ctx, filter).Decode(&txn); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *mongoTransactionRepo) UpdateStatus(ctx context.Context, id, from, to, providerStatus string) error {
	if !models.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusConflict, from, to)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "payment_status": from},
		bson.M{"$set": bson.M{
			"payment_status":  to,
			"provider_status": providerStatus,
			"updated_at":      time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the row is gone or a concurrent update moved it first.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *mongoTransactionRepo) MarkDelivered(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "delivered": false, "payment_status": models.PaymentStatusPaid},
		bson.M{"$set": bson.M{
			"delivered":  true,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *mongoTransactionRepo) FindAll(ctx context.Context, limit int64) ([]models.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txns []models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}
