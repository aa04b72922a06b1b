// Package metrics defines the custom Prometheus metrics of the car rental
// API. It is the single source of truth for metric names, labels and help
// strings. HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bcr-rental/car-rental-api/internal/core/domain"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

const namespace = "car_rental"

// ── Rental metrics ────────────────────────────────────────────────────────────

// RentalDecisionsTotal counts Availability Arbiter outcomes.
// Label:
//   - result: "granted", "already_rented", "invalid_interval", "not_found" or "error"
var RentalDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rental_decisions_total",
		Help:      "Total number of rental requests, by decision.",
	},
	[]string{"result"},
)

// RentalLockWaitSeconds measures time spent acquiring the per-car lock.
var RentalLockWaitSeconds = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rental_lock_wait_seconds",
		Help:      "Time spent waiting for the per-car rental lock.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "wrong_password", "not_registered" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "email_taken" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RentalResult maps an Arbiter outcome to its result label.
func RentalResult(err error) string {
	if err == nil {
		return "granted"
	}
	kind, _ := domain.KindOf(err)
	switch kind {
	case domain.KindCarAlreadyRented:
		return "already_rented"
	case domain.KindInvalidInterval:
		return "invalid_interval"
	case domain.KindRecordNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// LoginResult maps a login outcome to its result label.
func LoginResult(err error) string {
	if err == nil {
		return "success"
	}
	kind, _ := domain.KindOf(err)
	switch kind {
	case domain.KindWrongPassword:
		return "wrong_password"
	case domain.KindEmailNotRegistered:
		return "not_registered"
	default:
		return "error"
	}
}

// RegistrationResult maps a registration outcome to its result label.
func RegistrationResult(err error) string {
	if err == nil {
		return "success"
	}
	if kind, _ := domain.KindOf(err); kind == domain.KindEmailAlreadyTaken {
		return "email_taken"
	}
	return "error"
}

type instrumentedLocker struct {
	next ports.CarLocker
}

// InstrumentLocker records lock acquisition time into RentalLockWaitSeconds.
func InstrumentLocker(next ports.CarLocker) ports.CarLocker {
	return instrumentedLocker{next: next}
}

func (l instrumentedLocker) Lock(ctx context.Context, carID string) (func(), error) {
	start := time.Now()
	unlock, err := l.next.Lock(ctx, carID)
	RentalLockWaitSeconds.Observe(time.Since(start).Seconds())
	return unlock, err
}
