package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/monitoring"
	"github.com/gin-gonic/gin"
)

type MetricsSource interface {
	Snapshot() monitoring.Snapshot
}

type AlertSource interface {
	Status() monitoring.SystemStatus
	Alerts(severity monitoring.Severity) []monitoring.Alert
}

// BookingStats reads per-status totals straight from the store.
type BookingStats interface {
	StatusCounts(ctx context.Context) (map[domain.BookingStatus]int64, error)
}

type MonitoringHandler struct {
	metrics MetricsSource
	alerts  AlertSource
	stats   BookingStats
}

func NewMonitoringHandler(metrics MetricsSource, alerts AlertSource, stats BookingStats) *MonitoringHandler {
	return &MonitoringHandler{metrics: metrics, alerts: alerts, stats: stats}
}

func (h *MonitoringHandler) Register(router *gin.RouterGroup) {
	router.GET("/metrics", h.getMetrics)
	router.GET("/status", h.status)
	router.GET("/alerts", h.listAlerts)
	router.GET("/dashboard", h.dashboard)
}

func (h *MonitoringHandler) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

func (h *MonitoringHandler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.alerts.Status())
}

func (h *MonitoringHandler) listAlerts(c *gin.Context) {
	severity := monitoring.Severity(c.Query("severity"))
	switch severity {
	case "", monitoring.SeverityLow, monitoring.SeverityMedium, monitoring.SeverityHigh, monitoring.SeverityCritical:
	default:
		writeBadRequest(c, "severity must be one of low, medium, high, critical")
		return
	}
	c.JSON(http.StatusOK, h.alerts.Alerts(severity))
}

type dashboardOverview struct {
	TotalRequests     int64   `json:"totalRequests"`
	AvgResponseTime   float64 `json:"avgResponseTime"`
	ErrorRate         float64 `json:"errorRate"`
	Uptime            int64   `json:"uptime"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

type dashboardBookings struct {
	Created   int64                          `json:"created"`
	Updated   int64                          `json:"updated"`
	Cancelled int64                          `json:"cancelled"`
	ByStatus  map[domain.BookingStatus]int64 `json:"byStatus"`
}

type dashboardLocks struct {
	Acquisitions int64   `json:"acquisitions"`
	Failures     int64   `json:"failures"`
	SuccessRate  float64 `json:"successRate"`
}

type dashboardPerformance struct {
	Database monitoring.DatabaseStatus `json:"database"`
	Locks    dashboardLocks            `json:"locks"`
}

type Dashboard struct {
	Overview    dashboardOverview       `json:"overview"`
	System      monitoring.SystemStatus `json:"system"`
	Bookings    dashboardBookings       `json:"bookings"`
	Performance dashboardPerformance    `json:"performance"`
}

// dashboard merges the in-process counters with per-status totals from the store.
func (h *MonitoringHandler) dashboard(c *gin.Context) {
	byStatus, err := h.stats.StatusCounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	snap := h.metrics.Snapshot()
	status := h.alerts.Status()
	c.JSON(http.StatusOK, Dashboard{
		Overview: dashboardOverview{
			TotalRequests:     snap.Requests.Total,
			AvgResponseTime:   snap.Computed.AvgResponseTimeMs,
			ErrorRate:         snap.Computed.ErrorRate,
			Uptime:            snap.Computed.UptimeMs,
			RequestsPerSecond: snap.Computed.RequestsPerSecond,
		},
		System: status,
		Bookings: dashboardBookings{
			Created:   snap.Bookings.Created,
			Updated:   snap.Bookings.Updated,
			Cancelled: snap.Bookings.Cancelled,
			ByStatus:  byStatus,
		},
		Performance: dashboardPerformance{
			Database: status.Database,
			Locks: dashboardLocks{
				Acquisitions: snap.System.LockAcquisitions,
				Failures:     snap.System.LockFailures,
				SuccessRate:  snap.Computed.LockSuccessRate,
			},
		},
	})
}
