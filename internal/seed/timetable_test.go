package seed

import (
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	start := time.Date(2026, 3, 10, 17, 45, 0, 0, time.UTC)

	got := Generate(BaseTimetable, start, 2)

	require.Len(t, got, 2*len(BaseTimetable))
	first := got[0]
	assert.Equal(t, "AI101-0", first.FlightID)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), first.DepartureDateTime)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC), first.ArrivalDateTime)
	assert.Equal(t, domain.FlightStatusScheduled, first.Status)

	second := got[len(BaseTimetable)]
	assert.Equal(t, "AI101-1", second.FlightID)
	assert.Equal(t, first.DepartureDateTime.AddDate(0, 0, 1), second.DepartureDateTime)

	ids := make(map[string]bool, len(got))
	for _, f := range got {
		assert.False(t, ids[f.FlightID], "duplicate id %s", f.FlightID)
		ids[f.FlightID] = true
		assert.True(t, f.ArrivalDateTime.After(f.DepartureDateTime), f.FlightID)
	}
}

func TestGenerate_NoDays(t *testing.T) {
	assert.Empty(t, Generate(BaseTimetable, time.Now(), 0))
	assert.Empty(t, Generate(BaseTimetable, time.Now(), -3))
}

// DEL->BLR on the seeded schedule has two direct flights and three one-stop
// connections inside the default layover bounds.
func TestGenerate_ProducesTransitRoute(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	all := Generate(BaseTimetable, day, 1)

	var c flights.Candidates
	for _, f := range all {
		switch {
		case f.Origin == "DEL" && f.Destination == "BLR":
			c.Direct = append(c.Direct, f)
		case f.Origin == "DEL":
			c.FirstLegs = append(c.FirstLegs, f)
		}
		if f.Destination == "BLR" && f.Origin != "DEL" {
			c.SecondLegs = append(c.SecondLegs, f)
		}
	}

	q := domain.RouteQuery{Origin: "DEL", Destination: "BLR", DepartureDate: "2026-03-10"}
	result := flights.SearchRoutes(q, flights.DayWindow(day), c, flights.DefaultSearchOptions())

	assert.Len(t, result.DirectFlights, 2)
	require.Len(t, result.TransitRoutes, 3)
	best := result.TransitRoutes[0]
	assert.Equal(t, "SG401-0", best.FirstFlight.FlightID)
	assert.Equal(t, "IG601-0", best.SecondFlight.FlightID)
	assert.Equal(t, 5.5, best.TotalDuration)
	assert.Equal(t, 2.0, best.LayoverHours)

	var totals []float64
	for _, r := range result.TransitRoutes {
		totals = append(totals, r.TotalDuration)
	}
	assert.Equal(t, []float64{5.5, 8.5, 9.5}, totals)
}
