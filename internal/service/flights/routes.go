package flights

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

const (
	DefaultMinLayover   = 2 * time.Hour
	DefaultMaxLayover   = 8 * time.Hour
	DefaultTransitLimit = 5

	dateLayout = "2006-01-02"
)

// SearchOptions bounds the transit pairing. The layover bounds are inclusive.
type SearchOptions struct {
	MinLayover   time.Duration
	MaxLayover   time.Duration
	TransitLimit int
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MinLayover:   DefaultMinLayover,
		MaxLayover:   DefaultMaxLayover,
		TransitLimit: DefaultTransitLimit,
	}
}

// Window is a half-open departure interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// DayWindow covers one UTC calendar day.
func DayWindow(date time.Time) Window {
	y, m, d := date.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Candidates are the flights fetched from the store for one search.
type Candidates struct {
	Direct     []domain.Flight
	FirstLegs  []domain.Flight
	SecondLegs []domain.Flight
}

// SearchRoutes builds the direct and one-stop itineraries for q from the
// candidate flights. It does no I/O and never fails; no match is an empty result.
func SearchRoutes(q domain.RouteQuery, window Window, c Candidates, opts SearchOptions) domain.RouteSearchResult {
	direct := make([]domain.Flight, 0, len(c.Direct))
	for _, f := range c.Direct {
		if f.Origin == q.Origin && f.Destination == q.Destination && window.Contains(f.DepartureDateTime) {
			direct = append(direct, f)
		}
	}
	slices.SortStableFunc(direct, func(a, b domain.Flight) int {
		return a.DepartureDateTime.Compare(b.DepartureDateTime)
	})

	type candidate struct {
		route   domain.TransitRoute
		departs time.Time
	}
	var pairs []candidate
	for _, first := range c.FirstLegs {
		if first.Origin != q.Origin || first.Destination == q.Destination || !window.Contains(first.DepartureDateTime) {
			continue
		}
		for _, second := range c.SecondLegs {
			if second.Destination != q.Destination || second.Origin != first.Destination || !window.Contains(second.DepartureDateTime) {
				continue
			}
			layover := second.DepartureDateTime.Sub(first.ArrivalDateTime)
			if layover < opts.MinLayover || layover > opts.MaxLayover {
				continue
			}
			total := layover + first.Duration() + second.Duration()
			pairs = append(pairs, candidate{
				route: domain.TransitRoute{
					FirstFlight:   first,
					SecondFlight:  second,
					LayoverHours:  roundHours(layover),
					TotalDuration: roundHours(total),
				},
				departs: first.DepartureDateTime,
			})
		}
	}

	slices.SortStableFunc(pairs, func(a, b candidate) int {
		if n := cmp.Compare(a.route.TotalDuration, b.route.TotalDuration); n != 0 {
			return n
		}
		return a.departs.Compare(b.departs)
	})

	limit := opts.TransitLimit
	if limit <= 0 {
		limit = DefaultTransitLimit
	}
	transit := make([]domain.TransitRoute, 0, min(limit, len(pairs)))
	for _, p := range pairs[:min(limit, len(pairs))] {
		transit = append(transit, p.route)
	}

	return domain.RouteSearchResult{
		DirectFlights: direct,
		TransitRoutes: transit,
		SearchParams:  q,
	}
}

// roundHours converts d to hours rounded to one decimal place.
func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*10) / 10
}

// ParseDepartureDate accepts YYYY-MM-DD or an RFC3339 timestamp. An empty value means today in UTC.
func ParseDepartureDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return DayWindow(now).From, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError("departureDate", "departureDate must be YYYY-MM-DD or RFC3339")
	}
	return DayWindow(t).From, nil
}
