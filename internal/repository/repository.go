// Package repository holds the booking and flight stores. Each store has an
// interface plus a Postgres and a MongoDB implementation.
package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

type BookingRepository interface {
	// Create persists a new booking together with its seeded timeline.
	Create(ctx context.Context, b *domain.Booking) error
	// GetByRefID returns domain.ErrNotFound when no booking has that refId.
	GetByRefID(ctx context.Context, refID string) (*domain.Booking, error)
	// SaveTransition rewrites the status and appends one timeline entry as a single atomic write.
	SaveTransition(ctx context.Context, refID string, status domain.BookingStatus, event domain.TimelineEvent, updatedAt time.Time) error
	// List returns bookings newest first.
	List(ctx context.Context, filter domain.BookingFilter, page domain.PaginationParams) ([]domain.Booking, error)
	Count(ctx context.Context, filter domain.BookingFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error)
	Ping(ctx context.Context) error
}

type FlightRepository interface {
	GetByID(ctx context.Context, flightID string) (*domain.Flight, error)
	// CountByIDs returns how many of the given flight ids exist.
	CountByIDs(ctx context.Context, flightIDs []string) (int, error)
	List(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error)
	// FindDirect returns origin->destination flights departing in [from, to).
	FindDirect(ctx context.Context, origin, destination string, from, to time.Time, limit int) ([]domain.Flight, error)
	// FindDepartingFrom returns flights leaving origin in [from, to) that do not land at excludeDestination.
	FindDepartingFrom(ctx context.Context, origin, excludeDestination string, from, to time.Time, limit int) ([]domain.Flight, error)
	// FindArrivingAt returns flights landing at destination that depart in [from, to).
	FindArrivingAt(ctx context.Context, destination string, from, to time.Time, limit int) ([]domain.Flight, error)
	Airports(ctx context.Context) ([]domain.Airport, error)
	// Upsert inserts or replaces flights by flight id and returns how many were written.
	Upsert(ctx context.Context, flights []domain.Flight) (int, error)
}
