package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/monitoring"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingDeparted  = "booking.departed"
	EventBookingArrived   = "booking.arrived"
	EventBookingDelivered = "booking.delivered"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published once per committed booking mutation, keyed by refId.
type BookingEvent struct {
	Type        string               `json:"type"`
	RefID       string               `json:"refId"`
	Status      domain.BookingStatus `json:"status"`
	Origin      string               `json:"origin"`
	Destination string               `json:"destination"`
	Location    string               `json:"location"`
	FlightInfo  *string              `json:"flightInfo,omitempty"`
	OccurredAt  time.Time            `json:"occurredAt"`
}

// EventType maps the status a booking entered to its event type.
func EventType(status domain.BookingStatus) string {
	if status == domain.BookingStatusBooked {
		return EventBookingCreated
	}
	return "booking." + strings.ToLower(string(status))
}

// EventKind maps an event type onto the collector's booking counter.
func EventKind(eventType string) monitoring.BookingEventKind {
	switch eventType {
	case EventBookingCreated:
		return monitoring.BookingCreated
	case EventBookingCancelled:
		return monitoring.BookingCancelled
	default:
		return monitoring.BookingUpdated
	}
}

// NewBookingEvent describes the booking state right after ev was appended.
func NewBookingEvent(b *domain.Booking, ev domain.TimelineEvent) BookingEvent {
	return BookingEvent{
		Type:        EventType(ev.EventType),
		RefID:       b.RefID,
		Status:      b.Status,
		Origin:      b.Origin,
		Destination: b.Destination,
		Location:    ev.Location,
		FlightInfo:  ev.FlightInfo,
		OccurredAt:  ev.Timestamp,
	}
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var ev BookingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if ev.Type == "" || ev.RefID == "" {
		return BookingEvent{}, fmt.Errorf("decode booking event: missing type or refId")
	}
	return ev, nil
}
