package api

import (
	_ "embed"
	"net/http"

	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.yaml
var openAPISpec []byte

type RouterDeps struct {
	Bookings   *BookingHandler
	Flights    *FlightHandler
	Monitoring *MonitoringHandler
	Health     *HealthHandler
	Recorder   RequestRecorder
	Log        *logger.Logger
}

// NewRouter wires middleware and every handler onto a fresh gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(RequestID())
	if deps.Recorder != nil {
		r.Use(Metrics(deps.Recorder))
	}
	r.Use(RequestLogging(deps.Log), Recovery(deps.Log))

	r.NoRoute(func(c *gin.Context) {
		writeNotFound(c, "Route not found")
	})

	deps.Bookings.Register(r.Group("/bookings"))
	deps.Flights.Register(r.Group("/flights"))
	deps.Monitoring.Register(r.Group("/monitoring"))
	r.GET("/health", deps.Health.Handle)

	r.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", openAPISpec)
	})
	r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml"))))

	return r
}
