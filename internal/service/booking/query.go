package booking

import (
	"context"
	"strings"

	"github.com/Domenick1991/aircargo/internal/domain"
)

// Get reads a booking without taking any lock.
func (s *BookingService) Get(ctx context.Context, refID string) (*domain.Booking, error) {
	refID = strings.TrimSpace(refID)
	if refID == "" {
		return nil, domain.NewValidationError("refId", "refId is required")
	}

	var b *domain.Booking
	err := s.timed(func() (err error) {
		b, err = s.bookings.GetByRefID(ctx, refID)
		return err
	})
	return b, err
}

// List returns one page of bookings, newest first, with the total matching count.
func (s *BookingService) List(ctx context.Context, filter domain.BookingFilter, page domain.PaginationParams) (*domain.BookingPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "status must be one of BOOKED, DEPARTED, ARRIVED, DELIVERED, CANCELLED")
	}
	filter.Origin = normalizeCode(filter.Origin)
	filter.Destination = normalizeCode(filter.Destination)
	page = page.Normalize(s.listDef, s.listMax)

	var items []domain.Booking
	if err := s.timed(func() (err error) {
		items, err = s.bookings.List(ctx, filter, page)
		return err
	}); err != nil {
		return nil, err
	}

	var total int64
	if err := s.timed(func() (err error) {
		total, err = s.bookings.Count(ctx, filter)
		return err
	}); err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.Booking{}
	}
	return &domain.BookingPage{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// StatusCounts returns how many bookings are in each status.
func (s *BookingService) StatusCounts(ctx context.Context) (map[domain.BookingStatus]int64, error) {
	var counts map[domain.BookingStatus]int64
	err := s.timed(func() (err error) {
		counts, err = s.bookings.CountByStatus(ctx)
		return err
	})
	return counts, err
}
