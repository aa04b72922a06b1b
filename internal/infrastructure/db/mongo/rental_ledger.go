package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

const bookingsCollection = "bookings"

// RentalLedger implements ports.RentalLedger using MongoDB. Mongo has no
// range exclusion constraint, so overlap safety depends on the car lock.
type RentalLedger struct {
	col *mongo.Collection
}

var _ ports.RentalLedger = (*RentalLedger)(nil)

// NewRentalLedger creates a new RentalLedger.
func NewRentalLedger(db *mongo.Database) *RentalLedger {
	return &RentalLedger{col: db.Collection(bookingsCollection)}
}

// FindOverlapping returns bookings of carID with start < end AND end > start.
func (r *RentalLedger) FindOverlapping(ctx context.Context, carID string, start, end time.Time) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"car_id":          carID,
		"rent_started_at": bson.M{"$lt": end.UTC()},
		"rent_ended_at":   bson.M{"$gt": start.UTC()},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find overlapping: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Booking
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("find overlapping: decode: %w", err)
	}
	return out, nil
}

// Create inserts a booking document.
func (r *RentalLedger) Create(ctx context.Context, b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, b)
	return err
}

// ListByUser returns a renter's bookings, newest first.
func (r *RentalLedger) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Booking, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals: count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals: find: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Booking, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("list rentals: decode: %w", err)
	}
	return out, total, nil
}

// EnsureIndexes creates the compound index used by the overlap query.
func (r *RentalLedger) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "car_id", Value: 1}, {Key: "rent_started_at", Value: 1}, {Key: "rent_ended_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
