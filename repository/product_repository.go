package repository

import (
	"context"
	"errors"

	"github.com/Majorzinnn/botDC/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository is the catalog data access surface. Stock mutation is
// a single-document conditional update so concurrent fulfillments never
// drive the counter negative.
type ProductRepository interface {
	FindActive(ctx context.Context) ([]models.Product, error)
	FindActiveByID(ctx context.Context, id string) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Deactivate(ctx context.Context, id string) error
	// DecrementStock subtracts qty, guarded by stock >= qty.
	DecrementStock(ctx context.Context, id string, qty int) error
	// ClampStockToZero floors the counter when a decrement lost a race.
	ClampStockToZero(ctx context.Context, id string) error
}

type mongoProductRepo struct {
	coll *mongo.Collection
}

func NewMongoProductRepo(db *mongo.Database) ProductRepository {
	return &mongoProductRepo{coll: db.Collection("products")}
}

func (r *mongoProductRepo) FindActive(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
	cursor, err := r.coll.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *mongoProductRepo) FindActiveByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, bson.M{"id": id, "active": true}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *mongoProductRepo) Insert(ctx context.Context, p *models.Product) error {
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *mongoProductRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "active": true},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := r.findAnyByID(ctx, id); ferr != nil {
			return ferr
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *mongoProductRepo) ClampStockToZero(ctx context.Context, id string) error {
	// Only reached when a decrement lost a race: whatever is left (if
	// anything) is drained, never pushed negative.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "stock": bson.M{"$gt": 0}},
		bson.M{"$set": bson.M{"stock": 0}},
	)
	return err
}

func (r *mongoProductRepo) findAnyByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
