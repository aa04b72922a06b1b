package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2026-03-01 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps_HalfOpenBoundaries(t *testing.T) {
	existing := &Booking{RentStartedAt: at("10:00"), RentEndedAt: at("11:00")}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"adjacent after", at("11:00"), at("12:00"), false},
		{"adjacent before", at("09:00"), at("10:00"), false},
		{"straddles start", at("09:30"), at("10:30"), true},
		{"straddles end", at("10:30"), at("11:30"), true},
		{"contained", at("10:15"), at("10:45"), true},
		{"contains", at("09:00"), at("12:00"), true},
		{"identical", at("10:00"), at("11:00"), true},
		{"disjoint", at("13:00"), at("14:00"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := existing.OverlapsWith(tc.start, tc.end); got != tc.want {
				t.Fatalf("OverlapsWith(%s, %s) = %v, want %v", tc.start.Format("15:04"), tc.end.Format("15:04"), got, tc.want)
			}
		})
	}
}

func TestBooking_Covers(t *testing.T) {
	b := &Booking{RentStartedAt: at("10:00"), RentEndedAt: at("11:00")}
	if !b.Covers(at("10:00")) {
		t.Fatal("start instant must be covered")
	}
	if b.Covers(at("11:00")) {
		t.Fatal("end instant must not be covered")
	}
}

func TestError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("register: %w", EmailAlreadyTaken("a@x.com"))
	if !errors.Is(err, ErrEmailAlreadyTaken) {
		t.Fatalf("expected EmailAlreadyTaken kind, got %v", err)
	}
	if errors.Is(err, ErrEmailNotRegistered) {
		t.Fatal("kinds must not cross-match")
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindEmailAlreadyTaken {
		t.Fatalf("KindOf = %q, %v", kind, ok)
	}
}

func TestCarAlreadyRented_CarriesCar(t *testing.T) {
	car := &Car{ID: "c1", Name: "avanza veloz"}
	err := CarAlreadyRented(car)
	if err.Details["car"] != car {
		t.Fatalf("expected car in details, got %+v", err.Details)
	}
	if err.Error() != "avanza veloz is already rented!!" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
