package domain

import (
	"fmt"
	"strings"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusDeparted  BookingStatus = "DEPARTED"
	BookingStatusArrived   BookingStatus = "ARRIVED"
	BookingStatusDelivered BookingStatus = "DELIVERED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// AllBookingStatuses lists every status in lifecycle order.
var AllBookingStatuses = []BookingStatus{
	BookingStatusBooked,
	BookingStatusDeparted,
	BookingStatusArrived,
	BookingStatusDelivered,
	BookingStatusCancelled,
}

func (s BookingStatus) Valid() bool {
	for _, st := range AllBookingStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition can leave s.
func (s BookingStatus) Terminal() bool {
	for _, t := range AllTransitions {
		if CanTransition(s, t) {
			return false
		}
	}
	return true
}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, raw)
	}
	return s, nil
}

type Transition string

const (
	TransitionDepart  Transition = "depart"
	TransitionArrive  Transition = "arrive"
	TransitionDeliver Transition = "deliver"
	TransitionCancel  Transition = "cancel"
)

var AllTransitions = []Transition{
	TransitionDepart,
	TransitionArrive,
	TransitionDeliver,
	TransitionCancel,
}

type transitionRule struct {
	target  BookingStatus
	from    map[BookingStatus]bool
	refusal map[BookingStatus]string
}

// transitionTable is the single source of truth for lifecycle legality.
// Every (status, transition) pair must be listed in either from or refusal.
var transitionTable = map[Transition]transitionRule{
	TransitionDepart: {
		target: BookingStatusDeparted,
		from: map[BookingStatus]bool{
			BookingStatusBooked:   true,
			BookingStatusDeparted: true,
		},
		refusal: map[BookingStatus]string{
			BookingStatusArrived:   "Cannot depart a booking that has already arrived",
			BookingStatusDelivered: "Cannot depart a booking that has already been delivered",
			BookingStatusCancelled: "Cannot update cancelled booking",
		},
	},
	TransitionArrive: {
		target: BookingStatusArrived,
		from: map[BookingStatus]bool{
			BookingStatusBooked:   true,
			BookingStatusDeparted: true,
			BookingStatusArrived:  true,
		},
		refusal: map[BookingStatus]string{
			BookingStatusDelivered: "Cannot arrive a booking that has already been delivered",
			BookingStatusCancelled: "Cannot update cancelled booking",
		},
	},
	TransitionDeliver: {
		target: BookingStatusDelivered,
		from: map[BookingStatus]bool{
			BookingStatusArrived: true,
		},
		refusal: map[BookingStatus]string{
			BookingStatusBooked:    "Booking must be arrived before delivery",
			BookingStatusDeparted:  "Booking must be arrived before delivery",
			BookingStatusDelivered: "Booking must be arrived before delivery",
			BookingStatusCancelled: "Cannot update cancelled booking",
		},
	},
	TransitionCancel: {
		target: BookingStatusCancelled,
		from: map[BookingStatus]bool{
			BookingStatusBooked:   true,
			BookingStatusDeparted: true,
		},
		refusal: map[BookingStatus]string{
			BookingStatusArrived:   "Cannot cancel booking that has already arrived or been delivered",
			BookingStatusDelivered: "Cannot cancel booking that has already arrived or been delivered",
			BookingStatusCancelled: "Cannot update cancelled booking",
		},
	},
}

func ParseTransition(raw string) (Transition, error) {
	t := Transition(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := transitionTable[t]; !ok {
		return "", fmt.Errorf("%w: unknown transition %q", ErrValidation, raw)
	}
	return t, nil
}

// Target returns the status a booking ends up in after t.
func (t Transition) Target() BookingStatus {
	return transitionTable[t].target
}

func CanTransition(from BookingStatus, t Transition) bool {
	rule, ok := transitionTable[t]
	if !ok {
		return false
	}
	return rule.from[from]
}

// CheckTransition returns a *TransitionError naming the violated rule when t is not
// allowed from the given status.
func CheckTransition(from BookingStatus, t Transition) error {
	rule, ok := transitionTable[t]
	if !ok {
		return &TransitionError{From: from, Transition: t, Reason: fmt.Sprintf("unknown transition %q", t)}
	}
	if rule.from[from] {
		return nil
	}
	reason, ok := rule.refusal[from]
	if !ok {
		reason = fmt.Sprintf("cannot %s a booking in status %s", t, from)
	}
	return &TransitionError{From: from, Transition: t, Reason: reason}
}
