package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

type TimelineEvent struct {
	EventType  BookingStatus `json:"eventType" bson:"event_type"`
	Location   string        `json:"location" bson:"location"`
	FlightInfo *string       `json:"flightInfo" bson:"flight_info,omitempty"`
	Timestamp  time.Time     `json:"timestamp" bson:"timestamp"`
	Notes      string        `json:"notes" bson:"notes"`
}

type Booking struct {
	RefID       string          `json:"refId" bson:"ref_id"`
	Origin      string          `json:"origin" bson:"origin"`
	Destination string          `json:"destination" bson:"destination"`
	Pieces      int             `json:"pieces" bson:"pieces"`
	WeightKg    float64         `json:"weightKg" bson:"weight_kg"`
	Status      BookingStatus   `json:"status" bson:"status"`
	FlightIDs   []string        `json:"flightIds" bson:"flight_ids"`
	Timeline    []TimelineEvent `json:"timeline" bson:"timeline"`
	CreatedAt   time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" bson:"updated_at"`
}

// NewBooking builds a booking in status BOOKED together with its initial timeline
// entry. This is the only place a booking comes into existence.
func NewBooking(refID, origin, destination string, pieces int, weightKg float64, flightIDs []string, now time.Time) *Booking {
	if flightIDs == nil {
		flightIDs = []string{}
	}
	now = now.UTC()
	return &Booking{
		RefID:       refID,
		Origin:      origin,
		Destination: destination,
		Pieces:      pieces,
		WeightKg:    weightKg,
		Status:      BookingStatusBooked,
		FlightIDs:   flightIDs,
		Timeline: []TimelineEvent{{
			EventType: BookingStatusBooked,
			Location:  origin,
			Timestamp: now,
			Notes:     "Booking created",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionDetails carries the optional caller-supplied parts of a timeline entry.
type TransitionDetails struct {
	Location   string
	FlightInfo *string
	Notes      string
}

// Apply performs t on the booking if the transition table allows it, appending
// exactly one timeline entry and rewriting Status. On error the booking is untouched.
func (b *Booking) Apply(t Transition, details TransitionDetails, now time.Time) (TimelineEvent, error) {
	if err := CheckTransition(b.Status, t); err != nil {
		return TimelineEvent{}, err
	}

	event := TimelineEvent{
		EventType: t.Target(),
		Location:  details.Location,
		Timestamp: now.UTC(),
		Notes:     details.Notes,
	}
	if event.Location == "" {
		event.Location = b.defaultLocation(t)
	}
	if event.Notes == "" {
		event.Notes = defaultNotes[t]
	}
	if t == TransitionDepart {
		event.FlightInfo = details.FlightInfo
	}

	b.Timeline = append(b.Timeline, event)
	b.Status = event.EventType
	b.UpdatedAt = event.Timestamp
	return event, nil
}

// LastEvent returns the most recently appended timeline entry.
func (b *Booking) LastEvent() (TimelineEvent, bool) {
	if len(b.Timeline) == 0 {
		return TimelineEvent{}, false
	}
	return b.Timeline[len(b.Timeline)-1], true
}

func (b *Booking) defaultLocation(t Transition) string {
	switch t {
	case TransitionArrive, TransitionDeliver:
		return b.Destination
	default:
		return b.Origin
	}
}

var defaultNotes = map[Transition]string{
	TransitionDepart:  "Package departed",
	TransitionArrive:  "Package arrived",
	TransitionDeliver: "Package delivered successfully",
	TransitionCancel:  "Booking cancelled",
}

// NewRefID returns a booking reference of the form CRG<unix-millis><3 digits>.
func NewRefID(now time.Time) string {
	return fmt.Sprintf("CRG%d%03d", now.UnixMilli(), rand.IntN(1000))
}

type BookingFilter struct {
	Status      BookingStatus
	Origin      string
	Destination string
}

// BookingPage is one page of a filtered booking listing.
type BookingPage struct {
	Items []Booking `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
