// Package monitoring keeps in-process request, booking, lock and store counters
// and raises alerts when they cross configured thresholds.
package monitoring

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

type BookingEventKind string

const (
	BookingCreated   BookingEventKind = "created"
	BookingUpdated   BookingEventKind = "updated"
	BookingCancelled BookingEventKind = "cancelled"
)

// Collector is safe for concurrent use. The zero value is not usable; call NewCollector.
type Collector struct {
	mu  sync.Mutex
	now func() time.Time

	startedAt time.Time

	requestsTotal   int64
	byEndpoint      map[string]int64
	byStatusCode    map[string]int64
	responseTimeSum time.Duration
	responseCount   int64

	bookingsCreated   int64
	bookingsUpdated   int64
	bookingsCancelled int64
	bookingsRejected  int64
	bookingsByStatus  map[domain.BookingStatus]int64

	queries      int64
	queryTimeSum time.Duration
	storeErrors  int64

	systemErrors     int64
	lockAcquisitions int64
	lockFailures     int64
	lockReleases     int64
	lockMismatches   int64
}

func NewCollector() *Collector {
	c := &Collector{now: time.Now}
	c.startedAt = c.now()
	c.byEndpoint = make(map[string]int64)
	c.byStatusCode = make(map[string]int64)
	c.bookingsByStatus = make(map[domain.BookingStatus]int64, len(domain.AllBookingStatuses))
	for _, s := range domain.AllBookingStatuses {
		c.bookingsByStatus[s] = 0
	}
	return c
}

// WithClock replaces the time source; uptime is measured from the moment it is set.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	c.startedAt = now()
	return c
}

// RecordRequest counts one HTTP response. 5xx responses also count as system errors.
func (c *Collector) RecordRequest(method, path string, statusCode int, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestsTotal++
	c.byEndpoint[method+" "+path]++
	c.byStatusCode[fmt.Sprint(statusCode)]++
	c.responseTimeSum += elapsed
	c.responseCount++
	if statusCode >= 500 {
		c.systemErrors++
	}
}

// RecordBookingEvent counts one booking change. Events carrying an unknown
// status are only counted as rejected.
func (c *Collector) RecordBookingEvent(kind BookingEventKind, status domain.BookingStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if status != "" && !status.Valid() {
		c.bookingsRejected++
		return
	}
	switch kind {
	case BookingCreated:
		c.bookingsCreated++
	case BookingUpdated:
		c.bookingsUpdated++
	case BookingCancelled:
		c.bookingsCancelled++
	}
	if status != "" {
		c.bookingsByStatus[status]++
	}
}

// RecordRejectedEvent counts a booking event that was dropped before recording.
func (c *Collector) RecordRejectedEvent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookingsRejected++
}

func (c *Collector) RecordQuery(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	c.queryTimeSum += elapsed
}

func (c *Collector) RecordStoreError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeErrors++
}

func (c *Collector) RecordSystemError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemErrors++
}

func (c *Collector) RecordLock(acquired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if acquired {
		c.lockAcquisitions++
	} else {
		c.lockFailures++
	}
}

// RecordLockRelease counts releases; released=false means the token no longer matched.
func (c *Collector) RecordLockRelease(released bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if released {
		c.lockReleases++
	} else {
		c.lockMismatches++
	}
}

// ResetWindow clears the per-endpoint and per-status-code breakdowns. Totals are kept.
func (c *Collector) ResetWindow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byEndpoint = make(map[string]int64)
	c.byStatusCode = make(map[string]int64)
}

type RequestMetrics struct {
	Total      int64            `json:"total"`
	ByEndpoint map[string]int64 `json:"byEndpoint"`
	ByStatus   map[string]int64 `json:"byStatus"`
}

type BookingMetrics struct {
	Created   int64                          `json:"created"`
	Updated   int64                          `json:"updated"`
	Cancelled int64                          `json:"cancelled"`
	Rejected  int64                          `json:"rejected"`
	ByStatus  map[domain.BookingStatus]int64 `json:"byStatus"`
}

type DatabaseMetrics struct {
	Queries int64 `json:"queries"`
	Errors  int64 `json:"errors"`
}

type SystemMetrics struct {
	StartedAt        time.Time `json:"startedAt"`
	Errors           int64     `json:"errors"`
	LockAcquisitions int64     `json:"lockAcquisitions"`
	LockFailures     int64     `json:"lockFailures"`
	LockReleases     int64     `json:"lockReleases"`
	LockMismatches   int64     `json:"lockReleaseMismatches"`
}

type Computed struct {
	UptimeMs          int64   `json:"uptime"`
	AvgResponseTimeMs float64 `json:"avgResponseTime"`
	AvgQueryTimeMs    float64 `json:"avgQueryTime"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	ErrorRate         float64 `json:"errorRate"`
	LockSuccessRate   float64 `json:"lockSuccessRate"`
}

type Snapshot struct {
	Requests RequestMetrics  `json:"requests"`
	Bookings BookingMetrics  `json:"bookings"`
	Database DatabaseMetrics `json:"database"`
	System   SystemMetrics   `json:"system"`
	Computed Computed        `json:"computed"`
}

// Snapshot copies the counters and derives the averages and rates.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	uptime := c.now().Sub(c.startedAt)

	comp := Computed{UptimeMs: uptime.Milliseconds(), LockSuccessRate: 1}
	if c.responseCount > 0 {
		comp.AvgResponseTimeMs = round2(ms(c.responseTimeSum) / float64(c.responseCount))
	}
	if c.queries > 0 {
		comp.AvgQueryTimeMs = round2(ms(c.queryTimeSum) / float64(c.queries))
	}
	if uptime > 0 {
		comp.RequestsPerSecond = float64(c.requestsTotal) / uptime.Seconds()
	}
	if c.requestsTotal > 0 {
		comp.ErrorRate = float64(c.systemErrors) / float64(c.requestsTotal)
	}
	if attempts := c.lockAcquisitions + c.lockFailures; attempts > 0 {
		comp.LockSuccessRate = float64(c.lockAcquisitions) / float64(attempts)
	}

	return Snapshot{
		Requests: RequestMetrics{
			Total:      c.requestsTotal,
			ByEndpoint: copyMap(c.byEndpoint),
			ByStatus:   copyMap(c.byStatusCode),
		},
		Bookings: BookingMetrics{
			Created:   c.bookingsCreated,
			Updated:   c.bookingsUpdated,
			Cancelled: c.bookingsCancelled,
			Rejected:  c.bookingsRejected,
			ByStatus:  copyMap(c.bookingsByStatus),
		},
		Database: DatabaseMetrics{Queries: c.queries, Errors: c.storeErrors},
		System: SystemMetrics{
			StartedAt:        c.startedAt,
			Errors:           c.systemErrors,
			LockAcquisitions: c.lockAcquisitions,
			LockFailures:     c.lockFailures,
			LockReleases:     c.lockReleases,
			LockMismatches:   c.lockMismatches,
		},
		Computed: comp,
	}
}

func copyMap[K comparable](m map[K]int64) map[K]int64 {
	out := make(map[K]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
