// Package seed generates the demo flight schedule loaded by cargoctl.
package seed

import (
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

// BaseFlight is one daily service in the repeating timetable. Times are UTC.
type BaseFlight struct {
	FlightID     string
	FlightNumber string
	AirlineName  string
	Origin       string
	Destination  string
	DepHour      int
	DepMin       int
	ArrHour      int
	ArrMin       int
}

const (
	defaultAircraft = "A320F"
	defaultCapacity = 20000
)

// BaseTimetable is the domestic schedule repeated every day.
var BaseTimetable = []BaseFlight{
	{"AI101", "AI-101", "Air India", "DEL", "BLR", 10, 0, 12, 30},
	{"SG202", "SG-202", "SpiceJet", "DEL", "BLR", 14, 0, 16, 30},
	{"AI501", "AI-501", "Air India", "MAA", "BLR", 9, 0, 10, 30},
	{"IG601", "IG-601", "IndiGo", "MAA", "BLR", 15, 0, 16, 30},
	{"SG701", "SG-701", "SpiceJet", "MAA", "BLR", 18, 0, 19, 30},
	{"AI502", "AI-502", "Air India", "BLR", "MAA", 11, 30, 13, 0},
	{"IG602", "IG-602", "IndiGo", "BLR", "MAA", 17, 30, 19, 0},
	{"AI201", "AI-201", "Air India", "DEL", "HYD", 8, 0, 10, 30},
	{"IG301", "IG-301", "IndiGo", "HYD", "BLR", 12, 0, 13, 30},
	{"IG302", "IG-302", "IndiGo", "HYD", "BLR", 9, 0, 10, 30},
	{"AI801", "AI-801", "Air India", "MAA", "HYD", 7, 0, 8, 30},
	{"SG802", "SG-802", "SpiceJet", "MAA", "HYD", 13, 0, 14, 30},
	{"IG303", "IG-303", "IndiGo", "HYD", "BLR", 10, 0, 11, 30},
	{"AI304", "AI-304", "Air India", "HYD", "BLR", 16, 0, 17, 30},
	{"SG401", "SG-401", "SpiceJet", "DEL", "MAA", 11, 0, 13, 0},
	{"AI901", "AI-901", "Air India", "BLR", "BOM", 16, 0, 18, 0},
	{"IG902", "IG-902", "IndiGo", "MAA", "BOM", 12, 0, 14, 0},
}

// Generate expands base into days consecutive UTC days starting at the day of
// start. Flight ids get a "-<dayOffset>" suffix so every instance is unique.
func Generate(base []BaseFlight, start time.Time, days int) []domain.Flight {
	start = start.UTC()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	flights := make([]domain.Flight, 0, len(base)*max(days, 0))
	for offset := 0; offset < days; offset++ {
		date := day.AddDate(0, 0, offset)
		for _, b := range base {
			flights = append(flights, domain.Flight{
				FlightID:          fmt.Sprintf("%s-%d", b.FlightID, offset),
				FlightNumber:      b.FlightNumber,
				AirlineName:       b.AirlineName,
				Origin:            b.Origin,
				Destination:       b.Destination,
				DepartureDateTime: date.Add(clock(b.DepHour, b.DepMin)),
				ArrivalDateTime:   date.Add(clock(b.ArrHour, b.ArrMin)),
				AircraftType:      defaultAircraft,
				Capacity:          defaultCapacity,
				AvailableSpace:    defaultCapacity,
				Status:            domain.FlightStatusScheduled,
			})
		}
	}
	return flights
}

func clock(hour, minute int) time.Duration {
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute
}
