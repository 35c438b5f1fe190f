package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusBoarding  FlightStatus = "BOARDING"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusArrived   FlightStatus = "ARRIVED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

type Flight struct {
	FlightID          string       `json:"flightId" bson:"flight_id"`
	FlightNumber      string       `json:"flightNumber" bson:"flight_number"`
	AirlineName       string       `json:"airlineName" bson:"airline_name"`
	Origin            string       `json:"origin" bson:"origin"`
	Destination       string       `json:"destination" bson:"destination"`
	DepartureDateTime time.Time    `json:"departureDateTime" bson:"departure_date_time"`
	ArrivalDateTime   time.Time    `json:"arrivalDateTime" bson:"arrival_date_time"`
	AircraftType      string       `json:"aircraftType,omitempty" bson:"aircraft_type,omitempty"`
	Capacity          int          `json:"capacity" bson:"capacity"`
	AvailableSpace    int          `json:"availableSpace" bson:"available_space"`
	Status            FlightStatus `json:"status" bson:"status"`
}

// Duration is the scheduled block time of the flight.
func (f Flight) Duration() time.Duration {
	return f.ArrivalDateTime.Sub(f.DepartureDateTime)
}

type Airport struct {
	Code string `json:"code"`
}

// TransitRoute is a one-stop itinerary made of two flights joined by a layover.
type TransitRoute struct {
	FirstFlight   Flight  `json:"firstFlight"`
	SecondFlight  Flight  `json:"secondFlight"`
	LayoverHours  float64 `json:"layoverHours"`
	TotalDuration float64 `json:"totalDuration"`
}

type RouteSearchResult struct {
	DirectFlights []Flight       `json:"directFlights"`
	TransitRoutes []TransitRoute `json:"transitRoutes"`
	SearchParams  RouteQuery     `json:"searchParams"`
}

type RouteQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
}
