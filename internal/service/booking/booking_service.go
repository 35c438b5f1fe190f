package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/kafka"
	"github.com/Domenick1991/aircargo/internal/lock"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/monitoring"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/Domenick1991/aircargo/internal/validator"
)

type BookingUseCase interface {
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	Transition(ctx context.Context, refID string, t domain.Transition, input TransitionInput) (*domain.Booking, error)
	Depart(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error)
	Arrive(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error)
	Deliver(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error)
	Cancel(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error)
	Get(ctx context.Context, refID string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter, page domain.PaginationParams) (*domain.BookingPage, error)
}

type EventProducer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value any, maxRetries int) error
}

const defaultPublishAttempts = 3

// Metrics receives booking, lock and store outcomes. It never affects results.
type Metrics interface {
	RecordBookingEvent(kind monitoring.BookingEventKind, status domain.BookingStatus)
	RecordLock(acquired bool)
	RecordLockRelease(released bool)
	RecordQuery(elapsed time.Duration)
	RecordStoreError()
}

type CreateBookingInput struct {
	Origin      string   `json:"origin" validate:"required,iata"`
	Destination string   `json:"destination" validate:"required,iata,nefield=Origin"`
	Pieces      int      `json:"pieces" validate:"gte=1"`
	WeightKg    float64  `json:"weightKg" validate:"gt=0"`
	FlightIDs   []string `json:"flightIds" validate:"unique,dive,required"`
}

// TransitionInput carries the optional parts of a timeline entry. FlightInfo
// is only recorded on depart.
type TransitionInput struct {
	Location   string  `json:"location,omitempty"`
	FlightInfo *string `json:"flightInfo,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

type BookingService struct {
	bookings  repository.BookingRepository
	flights   repository.FlightRepository
	locker    lock.Locker
	keys      lock.KeyStrategy
	lockTTL   time.Duration
	retry     lock.RetryPolicy
	producer  EventProducer
	topic     string
	attempts  int
	listDef   int
	listMax   int
	metrics   Metrics
	validator *validator.Validator
	log       *logger.Logger
	now       func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithKeyStrategy(keys lock.KeyStrategy) BookingServiceOption {
	return func(s *BookingService) {
		s.keys = keys
	}
}

func WithLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithRetryPolicy(policy lock.RetryPolicy) BookingServiceOption {
	return func(s *BookingService) {
		s.retry = policy
	}
}

// WithEventProducer publishes a BookingEvent to topic after every committed mutation.
func WithEventProducer(producer EventProducer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

// WithPublishAttempts sets how many times an event write is tried before it is dropped.
func WithPublishAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithListLimits sets the page size used when none is asked for and the largest one allowed.
func WithListLimits(defaultLimit, maxLimit int) BookingServiceOption {
	return func(s *BookingService) {
		if maxLimit > 0 {
			s.listMax = maxLimit
		}
		if defaultLimit > 0 {
			s.listDef = min(defaultLimit, s.listMax)
		}
	}
}

func WithMetrics(m Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	locker lock.Locker,
	v *validator.Validator,
	log *logger.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings:  bookings,
		flights:   flights,
		locker:    locker,
		keys:      lock.PerBookingKeys{},
		lockTTL:   lock.DefaultTTL,
		retry:     lock.RetryPolicy{Attempts: 1},
		attempts:  defaultPublishAttempts,
		listDef:   domain.DefaultPageLimit,
		listMax:   domain.MaxPageLimit,
		metrics:   nopMetrics{},
		validator: v,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	input.Origin = normalizeCode(input.Origin)
	input.Destination = normalizeCode(input.Destination)
	flightIDs := make([]string, 0, len(input.FlightIDs))
	for _, id := range input.FlightIDs {
		flightIDs = append(flightIDs, strings.TrimSpace(id))
	}
	input.FlightIDs = flightIDs
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	var created *domain.Booking
	err := s.withLock(ctx, s.keys.CreateKey(), func(ctx context.Context) error {
		if len(input.FlightIDs) > 0 {
			var found int
			err := s.timed(func() (err error) {
				found, err = s.flights.CountByIDs(ctx, input.FlightIDs)
				return err
			})
			if err != nil {
				return err
			}
			if found != len(input.FlightIDs) {
				return domain.NewValidationError("flightIds", "One or more flight IDs are invalid")
			}
		}

		now := s.clock()
		b := domain.NewBooking(domain.NewRefID(now), input.Origin, input.Destination, input.Pieces, input.WeightKg, input.FlightIDs, now)
		if err := s.timed(func() error { return s.bookings.Create(ctx, b) }); err != nil {
			return err
		}

		created = b
		s.metrics.RecordBookingEvent(monitoring.BookingCreated, b.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, created, created.Timeline[0])

	s.log.Info("booking created", "refId", created.RefID, "origin", created.Origin, "destination", created.Destination)
	return created, nil
}

// Transition applies t to the booking under its update lock. The booking is
// re-read after the lock is held so the table check sees the latest status.
// The event is published once the lock is released.
func (s *BookingService) Transition(ctx context.Context, refID string, t domain.Transition, input TransitionInput) (*domain.Booking, error) {
	refID = strings.TrimSpace(refID)
	if refID == "" {
		return nil, domain.NewValidationError("refId", "refId is required")
	}
	if _, err := domain.ParseTransition(string(t)); err != nil {
		return nil, err
	}

	var (
		updated *domain.Booking
		event   domain.TimelineEvent
	)
	err := s.withLock(ctx, s.keys.UpdateKey(refID), func(ctx context.Context) error {
		var b *domain.Booking
		err := s.timed(func() (err error) {
			b, err = s.bookings.GetByRefID(ctx, refID)
			return err
		})
		if err != nil {
			return err
		}

		details := domain.TransitionDetails{
			Location:   strings.TrimSpace(input.Location),
			FlightInfo: input.FlightInfo,
			Notes:      strings.TrimSpace(input.Notes),
		}
		ev, err := b.Apply(t, details, s.clock())
		if err != nil {
			return err
		}

		if err := s.timed(func() error {
			return s.bookings.SaveTransition(ctx, b.RefID, b.Status, ev, b.UpdatedAt)
		}); err != nil {
			return err
		}

		updated, event = b, ev
		kind := monitoring.BookingUpdated
		if t == domain.TransitionCancel {
			kind = monitoring.BookingCancelled
		}
		s.metrics.RecordBookingEvent(kind, b.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated, event)

	s.log.Info("booking status updated", "refId", updated.RefID, "transition", t, "status", updated.Status)
	return updated, nil
}

func (s *BookingService) Depart(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error) {
	return s.Transition(ctx, refID, domain.TransitionDepart, input)
}

func (s *BookingService) Arrive(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error) {
	return s.Transition(ctx, refID, domain.TransitionArrive, input)
}

func (s *BookingService) Deliver(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error) {
	return s.Transition(ctx, refID, domain.TransitionDeliver, input)
}

func (s *BookingService) Cancel(ctx context.Context, refID string, input TransitionInput) (*domain.Booking, error) {
	return s.Transition(ctx, refID, domain.TransitionCancel, input)
}

// withLock runs fn while holding resource. A lock that cannot be taken, for any
// reason, is reported as domain.ErrLockBusy and fn is never called.
func (s *BookingService) withLock(ctx context.Context, resource string, fn func(ctx context.Context) error) error {
	lease, err := lock.AcquireWithRetry(ctx, s.locker, resource, s.lockTTL, s.retry)
	if err != nil || !lease.Acquired {
		s.metrics.RecordLock(false)
		if err != nil && !errors.Is(err, lock.ErrNotAcquired) {
			s.log.Error("lock acquisition failed", "resource", resource, "error", err)
		}
		return fmt.Errorf("%w: %s", domain.ErrLockBusy, resource)
	}
	s.metrics.RecordLock(true)

	defer func() {
		released, err := s.locker.Release(context.WithoutCancel(ctx), lease)
		if err != nil {
			s.log.Error("lock release failed", "resource", resource, "error", err)
			return
		}
		s.metrics.RecordLockRelease(released)
		if !released {
			s.log.Warn("lock expired before release", "resource", resource)
		}
	}()

	return fn(ctx)
}

// timed runs a store call and reports its latency and failure to metrics.
func (s *BookingService) timed(fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.RecordQuery(time.Since(start))
	if err != nil && errors.Is(err, domain.ErrStore) {
		s.metrics.RecordStoreError()
	}
	return err
}

func (s *BookingService) publish(ctx context.Context, b *domain.Booking, ev domain.TimelineEvent) {
	if s.producer == nil {
		return
	}
	event := kafka.NewBookingEvent(b, ev)
	if err := s.producer.PublishWithRetry(context.WithoutCancel(ctx), s.topic, b.RefID, event, s.attempts); err != nil {
		s.log.Warn("failed to publish booking event", "refId", b.RefID, "type", event.Type, "error", err)
	}
}

func (s *BookingService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type nopMetrics struct{}

func (nopMetrics) RecordBookingEvent(monitoring.BookingEventKind, domain.BookingStatus) {}
func (nopMetrics) RecordLock(bool)                                                     {}
func (nopMetrics) RecordLockRelease(bool)                                              {}
func (nopMetrics) RecordQuery(time.Duration)                                           {}
func (nopMetrics) RecordStoreError()                                                   {}

var _ BookingUseCase = (*BookingService)(nil)
var _ Metrics = (*monitoring.Collector)(nil)
