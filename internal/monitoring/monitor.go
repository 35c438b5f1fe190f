package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AlertType string

const (
	AlertHighResponseTime   AlertType = "HIGH_RESPONSE_TIME"
	AlertHighErrorRate      AlertType = "HIGH_ERROR_RATE"
	AlertHighMemoryUsage    AlertType = "HIGH_MEMORY_USAGE"
	AlertSlowDBConnection   AlertType = "SLOW_DB_CONNECTION"
	AlertDBConnectionFailed AlertType = "DATABASE_CONNECTION_FAILED"
	AlertHealthCheckFailed  AlertType = "HEALTH_CHECK_FAILED"
)

var severities = map[AlertType]Severity{
	AlertHighResponseTime:   SeverityMedium,
	AlertHighErrorRate:      SeverityHigh,
	AlertHighMemoryUsage:    SeverityHigh,
	AlertSlowDBConnection:   SeverityMedium,
	AlertDBConnectionFailed: SeverityCritical,
	AlertHealthCheckFailed:  SeverityHigh,
}

// SeverityOf returns the fixed severity of an alert type; unknown types are low.
func SeverityOf(t AlertType) Severity {
	if s, ok := severities[t]; ok {
		return s
	}
	return SeverityLow
}

type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

type Thresholds struct {
	ResponseTime time.Duration
	ErrorRate    float64
	MemoryUsage  float64
	DBPing       time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ResponseTime: time.Second,
		ErrorRate:    0.05,
		MemoryUsage:  0.85,
		DBPing:       500 * time.Millisecond,
	}
}

const (
	maxAlerts      = 100
	alertRetention = time.Hour
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	mu         sync.Mutex
	collector  *Collector
	db         Pinger
	log        *logger.Logger
	thresholds Thresholds
	alerts     []Alert // newest first
	now        func() time.Time
	memStats   func() (used, total uint64)
	dbUp       bool
}

type MonitorOption func(*Monitor)

func WithThresholds(t Thresholds) MonitorOption {
	return func(m *Monitor) {
		m.thresholds = t
	}
}

func WithMonitorClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithMemStats replaces the heap reader, used by tests.
func WithMemStats(fn func() (used, total uint64)) MonitorOption {
	return func(m *Monitor) {
		m.memStats = fn
	}
}

func NewMonitor(collector *Collector, db Pinger, log *logger.Logger, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		collector:  collector,
		db:         db,
		log:        log,
		thresholds: DefaultThresholds(),
		now:        time.Now,
		memStats:   heapStats,
		dbUp:       true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func heapStats() (uint64, uint64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, ms.HeapSys
}

// CheckSystem compares the collector's averages against the thresholds.
func (m *Monitor) CheckSystem() {
	defer func() {
		if r := recover(); r != nil {
			m.raise(AlertHealthCheckFailed, fmt.Sprint(r))
		}
	}()

	snap := m.collector.Snapshot()
	if snap.Computed.AvgResponseTimeMs > ms(m.thresholds.ResponseTime) {
		m.raise(AlertHighResponseTime, fmt.Sprintf("Average response time: %.2fms", snap.Computed.AvgResponseTimeMs))
	}
	if snap.Computed.ErrorRate > m.thresholds.ErrorRate {
		m.raise(AlertHighErrorRate, fmt.Sprintf("Error rate: %.2f%%", snap.Computed.ErrorRate*100))
	}
	if used, total := m.memStats(); total > 0 {
		if usage := float64(used) / float64(total); usage > m.thresholds.MemoryUsage {
			m.raise(AlertHighMemoryUsage, fmt.Sprintf("Memory usage: %.2f%%", usage*100))
		}
	}

	m.log.Info("system health check completed",
		"avgResponseTimeMs", snap.Computed.AvgResponseTimeMs,
		"errorRate", snap.Computed.ErrorRate,
		"uptimeMs", snap.Computed.UptimeMs,
	)
}

// CheckDatabase times a store ping.
func (m *Monitor) CheckDatabase(ctx context.Context) {
	if m.db == nil {
		return
	}

	start := m.now()
	err := m.db.Ping(ctx)
	elapsed := m.now().Sub(start)

	m.mu.Lock()
	m.dbUp = err == nil
	m.mu.Unlock()

	if err != nil {
		m.log.Error("database health check failed", "error", err)
		m.raise(AlertDBConnectionFailed, err.Error())
		return
	}
	if elapsed > m.thresholds.DBPing {
		m.raise(AlertSlowDBConnection, fmt.Sprintf("Database connection time: %dms", elapsed.Milliseconds()))
	}
	m.log.Info("database health check completed", "connectionTimeMs", elapsed.Milliseconds())
}

func (m *Monitor) Check(ctx context.Context) {
	m.CheckSystem()
	m.CheckDatabase(ctx)
}

func (m *Monitor) raise(t AlertType, message string) {
	alert := Alert{
		ID:        uuid.NewString(),
		Type:      t,
		Message:   message,
		Severity:  SeverityOf(t),
		Timestamp: m.now().UTC(),
	}

	m.mu.Lock()
	m.alerts = append([]Alert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}
	m.mu.Unlock()

	m.log.Warn("alert raised", "type", t, "severity", alert.Severity, "message", message)
}

// Prune drops alerts older than an hour.
func (m *Monitor) Prune() int {
	cutoff := m.now().Add(-alertRetention)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.alerts[:0]
	for _, a := range m.alerts {
		if a.Timestamp.After(cutoff) {
			kept = append(kept, a)
		}
	}
	m.alerts = kept
	return len(kept)
}

// Alerts returns alerts newest first. An empty severity returns all of them.
func (m *Monitor) Alerts(severity Severity) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if severity == "" || a.Severity == severity {
			out = append(out, a)
		}
	}
	return out
}

type MemoryStatus struct {
	UsedMB  uint64 `json:"used"`
	TotalMB uint64 `json:"total"`
	Usage   int    `json:"usage"`
}

type DatabaseStatus struct {
	Status       string  `json:"status"`
	Queries      int64   `json:"queries"`
	AvgQueryTime float64 `json:"avgQueryTime"`
	Errors       int64   `json:"errors"`
}

type AlertSummary struct {
	Total    int     `json:"total"`
	Critical int     `json:"critical"`
	High     int     `json:"high"`
	Recent   []Alert `json:"recent"`
}

type SystemStatus struct {
	Status   string         `json:"status"`
	Metrics  Computed       `json:"metrics"`
	Memory   MemoryStatus   `json:"memory"`
	Database DatabaseStatus `json:"database"`
	Alerts   AlertSummary   `json:"alerts"`
}

// Status is critical with any critical alert, warning with any high alert, healthy otherwise.
func (m *Monitor) Status() SystemStatus {
	snap := m.collector.Snapshot()
	all := m.Alerts("")
	critical := m.Alerts(SeverityCritical)
	high := m.Alerts(SeverityHigh)

	status := "healthy"
	switch {
	case len(critical) > 0:
		status = "critical"
	case len(high) > 0:
		status = "warning"
	}

	m.mu.Lock()
	dbState := "connected"
	if !m.dbUp {
		dbState = "disconnected"
	}
	m.mu.Unlock()

	used, total := m.memStats()
	mem := MemoryStatus{UsedMB: used / (1 << 20), TotalMB: total / (1 << 20)}
	if total > 0 {
		mem.Usage = int(float64(used) / float64(total) * 100)
	}

	return SystemStatus{
		Status:  status,
		Metrics: snap.Computed,
		Memory:  mem,
		Database: DatabaseStatus{
			Status:       dbState,
			Queries:      snap.Database.Queries,
			AvgQueryTime: snap.Computed.AvgQueryTimeMs,
			Errors:       snap.Database.Errors,
		},
		Alerts: AlertSummary{
			Total:    len(all),
			Critical: len(critical),
			High:     len(high),
			Recent:   all[:min(5, len(all))],
		},
	}
}

const (
	DefaultCheckInterval = 30 * time.Second
	DefaultPruneInterval = time.Hour
)

// Run checks health every checkEvery and prunes alerts every pruneEvery until ctx is done.
// Non-positive intervals fall back to the defaults.
func (m *Monitor) Run(ctx context.Context, checkEvery, pruneEvery time.Duration) {
	if checkEvery <= 0 {
		checkEvery = DefaultCheckInterval
	}
	if pruneEvery <= 0 {
		pruneEvery = DefaultPruneInterval
	}
	check := time.NewTicker(checkEvery)
	defer check.Stop()
	prune := time.NewTicker(pruneEvery)
	defer prune.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-check.C:
			m.Check(ctx)
		case <-prune.C:
			remaining := m.Prune()
			m.collector.ResetWindow()
			m.log.Info("cleaned old alerts", "remaining", remaining)
		}
	}
}
