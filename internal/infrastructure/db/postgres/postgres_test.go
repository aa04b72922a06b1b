package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func seedCar(t *testing.T, repo *CarRepository, size domain.CarSize, createdAt time.Time) *domain.Car {
	t.Helper()
	car := &domain.Car{ID: uuid.NewString(), Name: "car", Price: 100, Size: size, CreatedAt: createdAt, UpdatedAt: createdAt}
	if err := repo.Create(context.Background(), car); err != nil {
		t.Fatalf("create car: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), car.ID) })
	return car
}

func TestPostgres_UserRepository(t *testing.T) {
	pool := setupPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &domain.User{ID: uuid.NewString(), Name: "john", Email: email, PasswordHash: "h", Role: domain.RoleCustomer, CreatedAt: now, UpdatedAt: now}
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID) })

	created, err := repo.Create(ctx, u)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("created_at mismatch: %s vs %s", created.CreatedAt, now)
	}

	dup := *u
	dup.ID = uuid.NewString()
	if _, err := repo.Create(ctx, &dup); !errors.Is(err, domain.ErrEmailAlreadyTaken) {
		t.Fatalf("expected EmailAlreadyTaken, got %v", err)
	}

	if _, err := repo.FindByEmail(ctx, "nobody-"+email); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
	got, err := repo.FindByID(ctx, u.ID)
	if err != nil || got.Email != email || got.Role != domain.RoleCustomer {
		t.Fatalf("FindByID = %+v, %v", got, err)
	}
}

func TestPostgres_ExclusionConstraint(t *testing.T) {
	pool := setupPool(t)
	cars := NewCarRepository(pool)
	ledger := NewRentalLedger(pool)
	ctx := context.Background()

	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	car := seedCar(t, cars, domain.CarSizeSmall, start)

	book := func(s, e time.Time) error {
		return ledger.Create(ctx, &domain.Booking{
			ID: uuid.NewString(), CarID: car.ID, UserID: "u1",
			RentStartedAt: s, RentEndedAt: e, CreatedAt: time.Now().UTC(),
		})
	}

	if err := book(start, start.Add(time.Hour)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if err := book(start.Add(time.Hour), start.Add(2*time.Hour)); err != nil {
		t.Fatalf("adjacent booking must succeed: %v", err)
	}
	if err := book(start.Add(-30*time.Minute), start.Add(30*time.Minute)); !errors.Is(err, domain.ErrRentalConflict) {
		t.Fatalf("expected ErrRentalConflict, got %v", err)
	}

	// Without any application lock, concurrent inserts still yield one winner.
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	later := start.Add(24 * time.Hour)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := book(later, later.Add(time.Hour)); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}

	found, err := ledger.FindOverlapping(ctx, car.ID, start.Add(30*time.Minute), start.Add(90*time.Minute))
	if err != nil || len(found) != 2 {
		t.Fatalf("FindOverlapping = %d, %v", len(found), err)
	}

	list, total, err := ledger.ListByUser(ctx, "u1", 0, 2)
	if err != nil || total < 3 || len(list) != 2 {
		t.Fatalf("ListByUser = %d/%d, %v", len(list), total, err)
	}
}

func TestPostgres_CarListAvailability(t *testing.T) {
	pool := setupPool(t)
	cars := NewCarRepository(pool)
	ledger := NewRentalLedger(pool)
	ctx := context.Background()

	at := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	busy := seedCar(t, cars, domain.CarSizeLarge, at)
	free := seedCar(t, cars, domain.CarSizeLarge, at.Add(time.Second))
	if err := ledger.Create(ctx, &domain.Booking{
		ID: uuid.NewString(), CarID: busy.ID, UserID: "u1",
		RentStartedAt: at.Add(-time.Hour), RentEndedAt: at.Add(time.Hour), CreatedAt: at,
	}); err != nil {
		t.Fatalf("booking: %v", err)
	}

	list, _, err := cars.List(ctx, ports.ListCarsFilter{Size: domain.CarSizeLarge, AvailableAt: at, Limit: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var sawFree bool
	for _, c := range list {
		if c.ID == busy.ID {
			t.Fatal("booked car must be filtered out")
		}
		if c.ID == free.ID {
			sawFree = true
		}
	}
	if !sawFree {
		t.Fatal("free car missing from list")
	}
}
