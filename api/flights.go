package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type routesQuery struct {
	Origin        string `form:"origin"`
	Destination   string `form:"destination"`
	DepartureDate string `form:"departureDate"`
}

type pageQuery struct {
	Page  *int `form:"page"`
	Limit *int `form:"limit"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/routes", h.routes)
	router.GET("/airports", h.airports)
	router.GET("/:flightId", h.get)
}

func (h *FlightHandler) routes(c *gin.Context) {
	var q routesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBadRequest(c, "Invalid query parameters")
		return
	}
	if q.Origin == "" || q.Destination == "" {
		writeBadRequest(c, "Origin and destination are required")
		return
	}

	result, err := h.service.SearchRoutes(c.Request.Context(), q.Origin, q.Destination, q.DepartureDate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlightHandler) list(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBadRequest(c, "page and limit must be integers")
		return
	}

	list, err := h.service.List(c.Request.Context(), domain.NewPaginationParams(q.Page, q.Limit))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) airports(c *gin.Context) {
	airports, err := h.service.Airports(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, airports)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("flightId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(c, "Flight not found")
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}
