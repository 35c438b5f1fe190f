package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/Domenick1991/aircargo/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) GetByID(ctx context.Context, flightID string) (*domain.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) CountByIDs(ctx context.Context, flightIDs []string) (int, error) {
	args := m.Called(ctx, flightIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) List(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FindDirect(ctx context.Context, origin, destination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, from, to, limit)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FindDepartingFrom(ctx context.Context, origin, excludeDestination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, excludeDestination, from, to, limit)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) FindArrivingAt(ctx context.Context, destination string, from, to time.Time, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, destination, from, to, limit)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Airports(ctx context.Context) ([]domain.Airport, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

func (m *MockFlightRepository) Upsert(ctx context.Context, flights []domain.Flight) (int, error) {
	args := m.Called(ctx, flights)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context, page domain.PaginationParams) ([]domain.Flight, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, page domain.PaginationParams, flights []domain.Flight) error {
	args := m.Called(ctx, page, flights)
	return args.Error(0)
}

func (m *MockCache) GetRoutes(ctx context.Context, q domain.RouteQuery) (*domain.RouteSearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteSearchResult), args.Error(1)
}

func (m *MockCache) SetRoutes(ctx context.Context, q domain.RouteQuery, result *domain.RouteSearchResult) error {
	args := m.Called(ctx, q, result)
	return args.Error(0)
}

func newTestService(repo *MockFlightRepository, cache FlightCache) *FlightService {
	now := func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	return NewFlightService(repo, cache, validator.New(logger.Nop()), logger.Nop(),
		WithFlightClock(now), WithQueryLimits(20, 50))
}

func TestFlightService_SearchRoutes_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, mockCache)
	ctx := context.Background()

	from := searchDay
	to := searchDay.AddDate(0, 0, 1)
	q := domain.RouteQuery{Origin: "DEL", Destination: "BLR", DepartureDate: "2026-03-10"}
	direct := []domain.Flight{flight("AI101-0", "DEL", "BLR", at(10, 0), 150*time.Minute)}
	first := []domain.Flight{flight("AI102-0", "DEL", "BOM", at(8, 0), 2*time.Hour)}
	second := []domain.Flight{flight("SG202-0", "BOM", "BLR", at(12, 0), 90*time.Minute)}

	mockCache.On("GetRoutes", ctx, q).Return(nil, nil).Once()
	mockRepo.On("FindDirect", ctx, "DEL", "BLR", from, to, 20).Return(direct, nil).Once()
	mockRepo.On("FindDepartingFrom", ctx, "DEL", "BLR", from, to, 50).Return(first, nil).Once()
	mockRepo.On("FindArrivingAt", ctx, "BLR", from, to, 50).Return(second, nil).Once()
	mockCache.On("SetRoutes", ctx, q, mock.AnythingOfType("*domain.RouteSearchResult")).Return(nil).Once()

	res, err := service.SearchRoutes(ctx, "del", " blr ", "")

	require.NoError(t, err)
	assert.Len(t, res.DirectFlights, 1)
	require.Len(t, res.TransitRoutes, 1)
	assert.Equal(t, 5.5, res.TransitRoutes[0].TotalDuration)
	assert.Equal(t, q, res.SearchParams)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_SearchRoutes_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, mockCache)
	ctx := context.Background()

	q := domain.RouteQuery{Origin: "DEL", Destination: "BLR", DepartureDate: "2026-03-11"}
	cached := &domain.RouteSearchResult{DirectFlights: []domain.Flight{}, TransitRoutes: []domain.TransitRoute{}, SearchParams: q}
	mockCache.On("GetRoutes", ctx, q).Return(cached, nil).Once()

	res, err := service.SearchRoutes(ctx, "DEL", "BLR", "2026-03-11")

	require.NoError(t, err)
	assert.Same(t, cached, res)
	mockRepo.AssertNotCalled(t, "FindDirect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_SearchRoutes_CacheErrorsAreIgnored(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetRoutes", ctx, mock.Anything).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("FindDirect", ctx, "DEL", "BLR", mock.Anything, mock.Anything, 20).Return([]domain.Flight{}, nil).Once()
	mockRepo.On("FindDepartingFrom", ctx, "DEL", "BLR", mock.Anything, mock.Anything, 50).Return([]domain.Flight{}, nil).Once()
	mockRepo.On("FindArrivingAt", ctx, "BLR", mock.Anything, mock.Anything, 50).Return([]domain.Flight{}, nil).Once()
	mockCache.On("SetRoutes", ctx, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	res, err := service.SearchRoutes(ctx, "DEL", "BLR", "2026-03-10")

	require.NoError(t, err)
	assert.Empty(t, res.DirectFlights)
	assert.Empty(t, res.TransitRoutes)
}

func TestFlightService_SearchRoutes_Validation(t *testing.T) {
	cases := []struct {
		name, origin, destination, date string
	}{
		{"missing origin", "", "BLR", ""},
		{"missing destination", "DEL", "", ""},
		{"not an airport code", "DELHI", "BLR", ""},
		{"same airport", "DEL", "del", ""},
		{"bad date", "DEL", "BLR", "10-03-2026"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &MockFlightRepository{}
			service := newTestService(mockRepo, nil)

			_, err := service.SearchRoutes(context.Background(), tc.origin, tc.destination, tc.date)

			assert.ErrorIs(t, err, domain.ErrValidation)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestFlightService_SearchRoutes_StoreErrorPropagates(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newTestService(mockRepo, nil)
	ctx := context.Background()

	storeErr := domain.StoreError("find direct flights", errors.New("connection reset"))
	mockRepo.On("FindDirect", ctx, "DEL", "BLR", mock.Anything, mock.Anything, 20).Return([]domain.Flight(nil), storeErr).Once()

	_, err := service.SearchRoutes(ctx, "DEL", "BLR", "")

	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, mockCache)
	ctx := context.Background()
	page := domain.PaginationParams{Page: 1, Limit: 20}

	flights := []domain.Flight{flight("AI101-0", "DEL", "BLR", at(10, 0), 150*time.Minute)}

	mockCache.On("GetFlights", ctx, page).Return([]domain.Flight(nil), nil).Once()
	mockRepo.On("List", ctx, page).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, page, flights).Return(nil).Once()

	got, err := service.List(ctx, page)

	assert.NoError(t, err)
	assert.Equal(t, flights, got)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newTestService(mockRepo, mockCache)
	ctx := context.Background()
	page := domain.PaginationParams{Page: 2, Limit: 10}

	cached := []domain.Flight{{FlightID: "SG202-1"}}
	mockCache.On("GetFlights", ctx, page).Return(cached, nil).Once()

	got, err := service.List(ctx, page)

	assert.NoError(t, err)
	assert.Equal(t, cached, got)
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestFlightService_GetByID(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newTestService(mockRepo, nil)
	ctx := context.Background()

	want := &domain.Flight{FlightID: "AI101-0"}
	mockRepo.On("GetByID", ctx, "AI101-0").Return(want, nil).Once()
	mockRepo.On("GetByID", ctx, "XX000-0").Return(nil, domain.ErrNotFound).Once()

	got, err := service.GetByID(ctx, "AI101-0")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = service.GetByID(ctx, "XX000-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.GetByID(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlightService_Airports(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newTestService(mockRepo, nil)
	ctx := context.Background()

	airports := []domain.Airport{{Code: "BLR"}, {Code: "DEL"}}
	mockRepo.On("Airports", ctx).Return(airports, nil).Once()

	got, err := service.Airports(ctx)

	assert.NoError(t, err)
	assert.Equal(t, airports, got)
}
