// Package memory holds map-backed implementations of the storage ports. They
// back STORE_DRIVER=memory and the HTTP end-to-end tests.
package memory

// Store bundles the three repositories. Cars consults Rentals to answer
// availability filters.
type Store struct {
	Users   *UserRepository
	Cars    *CarRepository
	Rentals *RentalLedger
}

// NewStore returns an empty Store.
func NewStore() *Store {
	rentals := NewRentalLedger()
	return &Store{
		Users:   NewUserRepository(),
		Cars:    NewCarRepository(rentals),
		Rentals: rentals,
	}
}

// bounds returns the [start, end) indexes of one window over n items.
func bounds(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
