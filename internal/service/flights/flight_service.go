package flights

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/repository"
	"github.com/Domenick1991/aircargo/internal/validator"
)

const (
	DefaultDirectLimit = 20
	DefaultLegLimit    = 50
)

type FlightUseCase interface {
	SearchRoutes(ctx context.Context, origin, destination, departureDate string) (*domain.RouteSearchResult, error)
	List(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error)
	GetByID(ctx context.Context, flightID string) (*domain.Flight, error)
	Airports(ctx context.Context) ([]domain.Airport, error)
}

// FlightCache is the read-through cache in front of the flight store. A nil
// result with a nil error is a miss.
type FlightCache interface {
	GetFlights(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error)
	SetFlights(ctx context.Context, page domain.PaginationParams, flights []domain.Flight) error
	GetRoutes(ctx context.Context, q domain.RouteQuery) (*domain.RouteSearchResult, error)
	SetRoutes(ctx context.Context, q domain.RouteQuery, result *domain.RouteSearchResult) error
}

type FlightService struct {
	repo        repository.FlightRepository
	cache       FlightCache
	validator   *validator.Validator
	log         *logger.Logger
	search      SearchOptions
	directLimit int
	legLimit    int
	now         func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithSearchOptions(opts SearchOptions) FlightServiceOption {
	return func(s *FlightService) {
		s.search = opts
	}
}

// WithQueryLimits caps how many direct flights and how many flights per leg are read from the store.
func WithQueryLimits(direct, leg int) FlightServiceOption {
	return func(s *FlightService) {
		if direct > 0 {
			s.directLimit = direct
		}
		if leg > 0 {
			s.legLimit = leg
		}
	}
}

func WithFlightClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

// NewFlightService builds the service. cache may be nil.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, v *validator.Validator, log *logger.Logger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo:        repo,
		cache:       cache,
		validator:   v,
		log:         log,
		search:      DefaultSearchOptions(),
		directLimit: DefaultDirectLimit,
		legLimit:    DefaultLegLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type routeSearchInput struct {
	Origin      string `json:"origin" validate:"required,iata"`
	Destination string `json:"destination" validate:"required,iata,nefield=Origin"`
}

func (s *FlightService) SearchRoutes(ctx context.Context, origin, destination, departureDate string) (*domain.RouteSearchResult, error) {
	in := routeSearchInput{
		Origin:      strings.ToUpper(strings.TrimSpace(origin)),
		Destination: strings.ToUpper(strings.TrimSpace(destination)),
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	date, err := ParseDepartureDate(strings.TrimSpace(departureDate), s.now())
	if err != nil {
		return nil, err
	}

	q := domain.RouteQuery{Origin: in.Origin, Destination: in.Destination, DepartureDate: date.Format(dateLayout)}
	if s.cache != nil {
		cached, err := s.cache.GetRoutes(ctx, q)
		if err != nil {
			s.log.Warn("route cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	window := DayWindow(date)
	var c Candidates
	if c.Direct, err = s.repo.FindDirect(ctx, q.Origin, q.Destination, window.From, window.To, s.directLimit); err != nil {
		return nil, err
	}
	if c.FirstLegs, err = s.repo.FindDepartingFrom(ctx, q.Origin, q.Destination, window.From, window.To, s.legLimit); err != nil {
		return nil, err
	}
	if c.SecondLegs, err = s.repo.FindArrivingAt(ctx, q.Destination, window.From, window.To, s.legLimit); err != nil {
		return nil, err
	}

	result := SearchRoutes(q, window, c, s.search)
	s.log.Debug("route search",
		"origin", q.Origin,
		"destination", q.Destination,
		"date", q.DepartureDate,
		"direct", len(result.DirectFlights),
		"transit", len(result.TransitRoutes),
	)

	if s.cache != nil {
		if err := s.cache.SetRoutes(ctx, q, &result); err != nil {
			s.log.Warn("route cache write failed", "error", err)
		}
	}
	return &result, nil
}

func (s *FlightService) List(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, page); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, page, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, flightID string) (*domain.Flight, error) {
	flightID = strings.TrimSpace(flightID)
	if flightID == "" {
		return nil, domain.NewValidationError("flightId", "flightId is required")
	}
	return s.repo.GetByID(ctx, flightID)
}

func (s *FlightService) Airports(ctx context.Context) ([]domain.Airport, error) {
	return s.repo.Airports(ctx)
}

var _ FlightUseCase = (*FlightService)(nil)
