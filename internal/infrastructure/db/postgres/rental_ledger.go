package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

var _ ports.RentalLedger = (*RentalLedger)(nil)

// RentalLedger stores bookings. The bookings_no_overlap constraint makes
// Create fail with domain.ErrRentalConflict when another writer got there
// first, even without a car lock.
type RentalLedger struct {
	pool *pgxpool.Pool
}

func NewRentalLedger(pool *pgxpool.Pool) *RentalLedger {
	return &RentalLedger{pool: pool}
}

const bookingColumns = `id, car_id, user_id, rent_started_at, rent_ended_at, created_at`

func (l *RentalLedger) FindOverlapping(ctx context.Context, carID string, start, end time.Time) ([]*domain.Booking, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE car_id = $1 AND rent_started_at < $3 AND rent_ended_at > $2
		 ORDER BY rent_started_at`,
		carID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("find overlapping: %w", err)
	}
	return collectBookings(rows)
}

func (l *RentalLedger) Create(ctx context.Context, b *domain.Booking) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.CarID, b.UserID, b.RentStartedAt, b.RentEndedAt, b.CreatedAt)
	if err != nil {
		if pgCode(err) == codeExclusionViolation {
			return domain.ErrRentalConflict
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (l *RentalLedger) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Booking, int64, error) {
	var total int64
	if err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	rows, err := l.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1
		 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	out, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func collectBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	defer rows.Close()

	var out []*domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.CarID, &b.UserID, &b.RentStartedAt, &b.RentEndedAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.RentStartedAt = b.RentStartedAt.UTC()
		b.RentEndedAt = b.RentEndedAt.UTC()
		b.CreatedAt = b.CreatedAt.UTC()
		out = append(out, &b)
	}
	return out, rows.Err()
}
