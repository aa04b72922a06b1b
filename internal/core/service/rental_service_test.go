package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/lock"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubLedger struct {
	mu        sync.Mutex
	bookings  []*domain.Booking
	readDelay time.Duration // widens the check-then-create window
	createErr error
	findErr   error
}

func (l *stubLedger) FindOverlapping(_ context.Context, carID string, start, end time.Time) ([]*domain.Booking, error) {
	if l.findErr != nil {
		return nil, l.findErr
	}
	l.mu.Lock()
	var out []*domain.Booking
	for _, b := range l.bookings {
		if b.CarID == carID && b.OverlapsWith(start, end) {
			clone := *b
			out = append(out, &clone)
		}
	}
	l.mu.Unlock()
	time.Sleep(l.readDelay)
	return out, nil
}

func (l *stubLedger) Create(_ context.Context, b *domain.Booking) error {
	if l.createErr != nil {
		return l.createErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	clone := *b
	l.bookings = append(l.bookings, &clone)
	return nil
}

func (l *stubLedger) ListByUser(_ context.Context, userID string, offset, limit int) ([]*domain.Booking, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var mine []*domain.Booking
	for _, b := range l.bookings {
		if b.UserID == userID {
			clone := *b
			mine = append(mine, &clone)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	total := int64(len(mine))
	if offset >= len(mine) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], total, nil
}

func (l *stubLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bookings)
}

// noLock grants every caller immediately, leaving exclusion to the store.
type noLock struct{}

func (noLock) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type failingLock struct{ err error }

func (f failingLock) Lock(context.Context, string) (func(), error) { return nil, f.err }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func newRentalFixture(locker ports.CarLocker) (ports.RentalService, *stubLedger, *domain.Car) {
	cars := newStubCarRepo()
	car := cars.add(&domain.Car{ID: "car-1", Name: "Civic", Price: 4500, Size: domain.CarSizeMedium})
	ledger := &stubLedger{}
	return NewRentalService(cars, ledger, locker, pagination.Default, discardLogger), ledger, car
}

func rent(svc ports.RentalService, renter string, start, end time.Time) (*domain.Booking, error) {
	return svc.RequestRental(context.Background(), ports.RentalRequest{
		CarID:    "car-1",
		RenterID: renter,
		Start:    start,
		End:      end,
	})
}

// ---------------------------------------------------------------------------
// RequestRental
// ---------------------------------------------------------------------------

func TestRentalService_Grant(t *testing.T) {
	svc, ledger, _ := newRentalFixture(lock.NewKeyed())

	b, err := rent(svc, "user-1", at(10, 0), at(11, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID == "" || b.CarID != "car-1" || b.UserID != "user-1" {
		t.Errorf("unexpected booking: %+v", b)
	}
	if !b.RentStartedAt.Equal(at(10, 0)) || !b.RentEndedAt.Equal(at(11, 0)) {
		t.Errorf("unexpected interval: %s - %s", b.RentStartedAt, b.RentEndedAt)
	}
	if ledger.count() != 1 {
		t.Errorf("expected 1 stored booking, got %d", ledger.count())
	}
}

func TestRentalService_BoundaryCases(t *testing.T) {
	svc, _, _ := newRentalFixture(lock.NewKeyed())
	if _, err := rent(svc, "user-1", at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    error
	}{
		{"adjacent after", at(11, 0), at(12, 0), nil},
		{"adjacent before", at(9, 0), at(10, 0), nil},
		{"overlaps start", at(9, 30), at(10, 30), domain.ErrCarAlreadyRented},
		{"overlaps end", at(10, 59), at(11, 30), domain.ErrCarAlreadyRented},
		{"contained", at(10, 15), at(10, 45), domain.ErrCarAlreadyRented},
		{"contains", at(8, 0), at(13, 0), domain.ErrCarAlreadyRented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rent(svc, "user-2", tt.start, tt.end)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRentalService_DeniedCarriesCar(t *testing.T) {
	svc, _, car := newRentalFixture(lock.NewKeyed())
	_, _ = rent(svc, "user-1", at(10, 0), at(11, 0))

	_, err := rent(svc, "user-2", at(10, 0), at(11, 0))
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindCarAlreadyRented {
		t.Fatalf("expected CarAlreadyRented, got %v", err)
	}
	got, ok := de.Details["car"].(*domain.Car)
	if !ok || got.ID != car.ID {
		t.Fatalf("expected car in details, got %+v", de.Details)
	}
}

func TestRentalService_InvalidInterval(t *testing.T) {
	svc, ledger, _ := newRentalFixture(lock.NewKeyed())

	cases := map[string][2]time.Time{
		"end before start": {at(11, 0), at(10, 0)},
		"empty interval":   {at(10, 0), at(10, 0)},
		"missing start":    {{}, at(10, 0)},
		"missing end":      {at(10, 0), {}},
	}
	for name, iv := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := rent(svc, "user-1", iv[0], iv[1]); !errors.Is(err, domain.ErrInvalidInterval) {
				t.Fatalf("expected InvalidInterval, got %v", err)
			}
		})
	}
	if ledger.count() != 0 {
		t.Errorf("no booking should be stored, got %d", ledger.count())
	}
}

func TestRentalService_TimesStoredAtMillisecondPrecision(t *testing.T) {
	svc, ledger, _ := newRentalFixture(lock.NewKeyed())

	first, err := rent(svc, "user-1", at(10, 0).Add(300*time.Microsecond), at(11, 0).Add(700*time.Microsecond))
	if err != nil {
		t.Fatalf("first rental: %v", err)
	}
	if !first.RentStartedAt.Equal(at(10, 0)) || !first.RentEndedAt.Equal(at(11, 0)) {
		t.Fatalf("expected millisecond-aligned times, got %v - %v", first.RentStartedAt, first.RentEndedAt)
	}

	// Within the same millisecond as the stored end: adjacent once aligned.
	if _, err := rent(svc, "user-2", at(11, 0).Add(200*time.Microsecond), at(12, 0)); err != nil {
		t.Fatalf("adjacent rental after alignment should succeed, got %v", err)
	}

	// Sub-millisecond intervals collapse to empty.
	if _, err := rent(svc, "user-3", at(13, 0).Add(100*time.Microsecond), at(13, 0).Add(900*time.Microsecond)); !errors.Is(err, domain.ErrInvalidInterval) {
		t.Fatalf("expected InvalidInterval for a sub-millisecond interval, got %v", err)
	}
	if ledger.count() != 2 {
		t.Errorf("expected 2 bookings, got %d", ledger.count())
	}
}

func TestRentalService_UnknownCar(t *testing.T) {
	svc, _, _ := newRentalFixture(lock.NewKeyed())

	_, err := svc.RequestRental(context.Background(), ports.RentalRequest{
		CarID: "ghost", RenterID: "user-1", Start: at(10, 0), End: at(11, 0),
	})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
}

func TestRentalService_StoreConflictIsCarAlreadyRented(t *testing.T) {
	svc, ledger, _ := newRentalFixture(noLock{})
	ledger.createErr = domain.ErrRentalConflict

	if _, err := rent(svc, "user-1", at(10, 0), at(11, 0)); !errors.Is(err, domain.ErrCarAlreadyRented) {
		t.Fatalf("expected CarAlreadyRented, got %v", err)
	}
}

func TestRentalService_StoreFailuresAreUnclassified(t *testing.T) {
	svc, ledger, _ := newRentalFixture(lock.NewKeyed())
	ledger.findErr = errors.New("connection reset")

	_, err := rent(svc, "user-1", at(10, 0), at(11, 0))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := domain.KindOf(err); ok {
		t.Fatalf("expected unclassified fault, got %v", err)
	}

	svc, _, _ = newRentalFixture(failingLock{err: context.DeadlineExceeded})
	if _, err := rent(svc, "user-1", at(10, 0), at(11, 0)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected lock error to propagate, got %v", err)
	}
}

func TestRentalService_ConcurrentOverlapping_ExactlyOneWins(t *testing.T) {
	svc, ledger, _ := newRentalFixture(lock.NewKeyed())
	ledger.readDelay = 5 * time.Millisecond

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		denied  int
		other   []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := rent(svc, "user", at(10, i), at(11, i))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, domain.ErrCarAlreadyRented):
				denied++
			default:
				other = append(other, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if granted != 1 || denied != n-1 || len(other) != 0 {
		t.Fatalf("expected 1 granted and %d denied, got %d/%d (other: %v)", n-1, granted, denied, other)
	}
	if ledger.count() != 1 {
		t.Fatalf("expected exactly one stored booking, got %d", ledger.count())
	}
}

func TestRentalService_ConcurrentDisjoint_AllSucceed(t *testing.T) {
	svc, ledger, _ := newRentalFixture(lock.NewKeyed())
	ledger.readDelay = time.Millisecond

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, hour := range []int{10, 11} {
		wg.Add(1)
		go func(i, hour int) {
			defer wg.Done()
			_, errs[i] = rent(svc, "user", at(hour, 0), at(hour+1, 0))
		}(i, hour)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d: unexpected error %v", i, err)
		}
	}
	if ledger.count() != 2 {
		t.Errorf("expected 2 bookings, got %d", ledger.count())
	}
}

// ---------------------------------------------------------------------------
// ListRentals
// ---------------------------------------------------------------------------

func TestRentalService_ListRentals(t *testing.T) {
	svc, ledger, _ := newRentalFixture(lock.NewKeyed())
	for i := 0; i < 12; i++ {
		ledger.bookings = append(ledger.bookings, &domain.Booking{
			ID: "b", CarID: "car-1", UserID: "user-1",
			RentStartedAt: at(i, 0), RentEndedAt: at(i, 30),
			CreatedAt: at(i, 0),
		})
	}
	ledger.bookings = append(ledger.bookings, &domain.Booking{CarID: "car-1", UserID: "user-2"})

	res, err := svc.ListRentals(context.Background(), "user-1", 2, 5)
	if err != nil {
		t.Fatalf("ListRentals: %v", err)
	}
	if len(res.Rentals) != 5 {
		t.Errorf("expected 5 rentals, got %d", len(res.Rentals))
	}
	want := pagination.Envelope{Page: 2, PageSize: 5, PageCount: 3, TotalCount: 12}
	if res.Pagination != want {
		t.Errorf("expected %+v, got %+v", want, res.Pagination)
	}

	empty, err := svc.ListRentals(context.Background(), "nobody", 0, 0)
	if err != nil {
		t.Fatalf("ListRentals: %v", err)
	}
	if empty.Rentals == nil || len(empty.Rentals) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty.Rentals)
	}
}
