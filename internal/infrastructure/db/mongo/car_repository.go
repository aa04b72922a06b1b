package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

const carsCollection = "cars"

var _ ports.CarRepository = (*CarRepository)(nil)

type CarRepository struct {
	col      *mongo.Collection
	bookings *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{
		col:      db.Collection(carsCollection),
		bookings: db.Collection(bookingsCollection),
	}
}

func (r *CarRepository) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Car
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.RecordNotFound("car", id)
		}
		return nil, fmt.Errorf("find car: %w", err)
	}
	return &c, nil
}

// List applies the size and availability filters, newest first.
func (r *CarRepository) List(ctx context.Context, f ports.ListCarsFilter) ([]*domain.Car, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Size != "" {
		filter["size"] = string(f.Size)
	}
	if !f.AvailableAt.IsZero() {
		busy, err := r.bookings.Distinct(ctx, "car_id", bson.M{
			"rent_started_at": bson.M{"$lte": f.AvailableAt.UTC()},
			"rent_ended_at":   bson.M{"$gt": f.AvailableAt.UTC()},
		})
		if err != nil {
			return nil, 0, fmt.Errorf("list cars: booked ids: %w", err)
		}
		if len(busy) > 0 {
			filter["_id"] = bson.M{"$nin": busy}
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list cars: count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list cars: find: %w", err)
	}
	defer cur.Close(ctx)

	cars := make([]*domain.Car, 0, f.Limit)
	if err := cur.All(ctx, &cars); err != nil {
		return nil, 0, fmt.Errorf("list cars: decode: %w", err)
	}
	return cars, total, nil
}

func (r *CarRepository) Create(ctx context.Context, car *domain.Car) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, car)
	return err
}

func (r *CarRepository) Update(ctx context.Context, car *domain.Car) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": car.ID}, car)
	if err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.RecordNotFound("car", car.ID)
	}
	return nil
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.RecordNotFound("car", id)
	}
	return nil
}

// EnsureIndexes creates indexes backing the list filters.
func (r *CarRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "size", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
