package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fakePinger struct {
	err   error
	delay time.Duration
	clock *clock
}

func (p *fakePinger) Ping(context.Context) error {
	p.clock.t = p.clock.t.Add(p.delay)
	return p.err
}

func lowMemory() (uint64, uint64) { return 10 << 20, 100 << 20 }

func newMonitor(t *testing.T, db Pinger, clk *clock) (*Monitor, *Collector) {
	t.Helper()
	c := NewCollector().WithClock(clk.now)
	m := NewMonitor(c, db, logger.Nop(), WithMonitorClock(clk.now), WithMemStats(lowMemory))
	return m, c
}

func TestCollector_SnapshotComputesRates(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	c := NewCollector().WithClock(clk.now)

	c.RecordRequest("GET", "/bookings/:refId", 200, 100*time.Millisecond)
	c.RecordRequest("GET", "/bookings/:refId", 200, 200*time.Millisecond)
	c.RecordRequest("POST", "/bookings", 500, 300*time.Millisecond)
	c.RecordRequest("POST", "/bookings", 429, 0)
	c.RecordLock(true)
	c.RecordLock(true)
	c.RecordLock(true)
	c.RecordLock(false)
	c.RecordQuery(10 * time.Millisecond)
	c.RecordQuery(20 * time.Millisecond)
	c.RecordBookingEvent(BookingCreated, domain.BookingStatusBooked)
	c.RecordBookingEvent(BookingCancelled, domain.BookingStatusCancelled)
	clk.t = clk.t.Add(2 * time.Second)

	snap := c.Snapshot()

	assert.Equal(t, int64(4), snap.Requests.Total)
	assert.Equal(t, int64(2), snap.Requests.ByEndpoint["GET /bookings/:refId"])
	assert.Equal(t, int64(1), snap.Requests.ByStatus["429"])
	assert.Equal(t, 150.0, snap.Computed.AvgResponseTimeMs)
	assert.Equal(t, 15.0, snap.Computed.AvgQueryTimeMs)
	assert.Equal(t, 0.25, snap.Computed.ErrorRate)
	assert.Equal(t, 0.75, snap.Computed.LockSuccessRate)
	assert.Equal(t, 2.0, snap.Computed.RequestsPerSecond)
	assert.Equal(t, int64(2000), snap.Computed.UptimeMs)
	assert.Equal(t, int64(1), snap.Bookings.Created)
	assert.Equal(t, int64(1), snap.Bookings.ByStatus[domain.BookingStatusCancelled])
	assert.Equal(t, int64(0), snap.Bookings.ByStatus[domain.BookingStatusDelivered])
}

func TestCollector_EmptySnapshotDefaults(t *testing.T) {
	snap := NewCollector().Snapshot()
	assert.Zero(t, snap.Computed.ErrorRate)
	assert.Equal(t, 1.0, snap.Computed.LockSuccessRate)
}

func TestCollector_ResetWindowKeepsTotals(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("GET", "/health", 200, time.Millisecond)
	c.ResetWindow()

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.Requests.Total)
	assert.Empty(t, snap.Requests.ByEndpoint)
}

func TestCollector_UnknownStatusIsRejected(t *testing.T) {
	c := NewCollector()
	c.RecordBookingEvent(BookingUpdated, domain.BookingStatusDeparted)
	c.RecordBookingEvent(BookingUpdated, "LOST_IN_TRANSIT")
	c.RecordRejectedEvent()

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.Bookings.Updated)
	assert.Equal(t, int64(2), snap.Bookings.Rejected)
	assert.Len(t, snap.Bookings.ByStatus, len(domain.AllBookingStatuses))
	assert.NotContains(t, snap.Bookings.ByStatus, domain.BookingStatus("LOST_IN_TRANSIT"))
}

func TestMonitor_RunWithNonPositiveIntervals(t *testing.T) {
	m := NewMonitor(NewCollector(), &fakePinger{}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() { m.Run(ctx, -time.Second, 0) })
}

func TestMonitor_CheckSystemRaisesAlerts(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	m, c := newMonitor(t, nil, clk)

	c.RecordRequest("GET", "/flights/routes", 500, 1500*time.Millisecond)
	m.CheckSystem()

	alerts := m.Alerts("")
	require.Len(t, alerts, 2)
	assert.Equal(t, AlertHighErrorRate, alerts[0].Type)
	assert.Equal(t, SeverityHigh, alerts[0].Severity)
	assert.Equal(t, AlertHighResponseTime, alerts[1].Type)
	assert.Equal(t, SeverityMedium, alerts[1].Severity)
	assert.Equal(t, "warning", m.Status().Status)
}

func TestMonitor_HealthyWhenUnderThresholds(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	m, c := newMonitor(t, nil, clk)

	c.RecordRequest("GET", "/health", 200, 5*time.Millisecond)
	m.CheckSystem()

	assert.Empty(t, m.Alerts(""))
	status := m.Status()
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 10, status.Memory.Usage)
}

func TestMonitor_HighMemory(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	c := NewCollector().WithClock(clk.now)
	m := NewMonitor(c, nil, logger.Nop(), WithMonitorClock(clk.now),
		WithMemStats(func() (uint64, uint64) { return 90, 100 }))

	m.CheckSystem()

	alerts := m.Alerts(SeverityHigh)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertHighMemoryUsage, alerts[0].Type)
}

func TestMonitor_CheckDatabase(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}

	t.Run("slow ping", func(t *testing.T) {
		m, _ := newMonitor(t, &fakePinger{delay: 700 * time.Millisecond, clock: clk}, clk)
		m.CheckDatabase(context.Background())

		alerts := m.Alerts("")
		require.Len(t, alerts, 1)
		assert.Equal(t, AlertSlowDBConnection, alerts[0].Type)
		assert.Equal(t, "Database connection time: 700ms", alerts[0].Message)
		assert.Equal(t, "connected", m.Status().Database.Status)
	})

	t.Run("failed ping is critical", func(t *testing.T) {
		m, _ := newMonitor(t, &fakePinger{err: errors.New("connection refused"), clock: clk}, clk)
		m.CheckDatabase(context.Background())

		critical := m.Alerts(SeverityCritical)
		require.Len(t, critical, 1)
		assert.Equal(t, AlertDBConnectionFailed, critical[0].Type)

		status := m.Status()
		assert.Equal(t, "critical", status.Status)
		assert.Equal(t, "disconnected", status.Database.Status)
		assert.Equal(t, 1, status.Alerts.Critical)
	})
}

func TestMonitor_KeepsLastHundredAndPrunes(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	m, _ := newMonitor(t, nil, clk)

	for i := 0; i < 120; i++ {
		m.raise(AlertHighResponseTime, "slow")
	}
	assert.Len(t, m.Alerts(""), 100)

	clk.t = clk.t.Add(30 * time.Minute)
	m.raise(AlertHighErrorRate, "errors")

	clk.t = clk.t.Add(45 * time.Minute)
	remaining := m.Prune()

	assert.Equal(t, 1, remaining)
	assert.Equal(t, AlertHighErrorRate, m.Alerts("")[0].Type)
	assert.Len(t, m.Status().Alerts.Recent, 1)
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityOf(AlertDBConnectionFailed))
	assert.Equal(t, SeverityHigh, SeverityOf(AlertHealthCheckFailed))
	assert.Equal(t, SeverityLow, SeverityOf("SOMETHING_ELSE"))
}
