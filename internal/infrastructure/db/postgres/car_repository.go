package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

var _ ports.CarRepository = (*CarRepository)(nil)

type CarRepository struct {
	pool *pgxpool.Pool
}

func NewCarRepository(pool *pgxpool.Pool) *CarRepository {
	return &CarRepository{pool: pool}
}

const carColumns = `id, name, price, size, image, created_at, updated_at`

func (r *CarRepository) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id = $1`, id)
	c, err := scanCar(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.RecordNotFound("car", id)
		}
		return nil, fmt.Errorf("find car: %w", err)
	}
	return c, nil
}

// List builds the WHERE clause from the filter and returns one window,
// newest first, together with the total match count.
func (r *CarRepository) List(ctx context.Context, f ports.ListCarsFilter) ([]*domain.Car, int64, error) {
	var (
		conds []string
		args  []any
	)
	if f.Size != "" {
		args = append(args, string(f.Size))
		conds = append(conds, fmt.Sprintf("c.size = $%d", len(args)))
	}
	if !f.AvailableAt.IsZero() {
		args = append(args, f.AvailableAt.UTC())
		conds = append(conds, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.car_id = c.id AND b.rent_started_at <= $%[1]d AND b.rent_ended_at > $%[1]d)`, len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cars c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cars: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM cars c%s ORDER BY c.created_at DESC, c.id LIMIT $%d OFFSET $%d`,
		prefixed("c", carColumns), where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	cars := make([]*domain.Car, 0, f.Limit)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	return cars, total, rows.Err()
}

func (r *CarRepository) Create(ctx context.Context, car *domain.Car) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO cars (`+carColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		car.ID, car.Name, car.Price, string(car.Size), car.Image, car.CreatedAt, car.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert car: %w", err)
	}
	return nil
}

func (r *CarRepository) Update(ctx context.Context, car *domain.Car) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cars SET name = $2, price = $3, size = $4, image = $5, updated_at = $6 WHERE id = $1`,
		car.ID, car.Name, car.Price, string(car.Size), car.Image, car.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.RecordNotFound("car", car.ID)
	}
	return nil
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.RecordNotFound("car", id)
	}
	return nil
}

func scanCar(row pgx.Row) (*domain.Car, error) {
	var (
		c    domain.Car
		size string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Price, &size, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Size = domain.CarSize(size)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
