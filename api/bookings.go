package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type listBookingsQuery struct {
	Status      string `form:"status"`
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Page        *int   `form:"page"`
	Limit       *int   `form:"limit"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:refId", h.get)
	router.PATCH("/:refId/depart", h.transition(domain.TransitionDepart))
	router.PATCH("/:refId/arrive", h.transition(domain.TransitionArrive))
	router.PATCH("/:refId/deliver", h.transition(domain.TransitionDeliver))
	router.PATCH("/:refId/cancel", h.transition(domain.TransitionCancel))
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) list(c *gin.Context) {
	var q listBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBadRequest(c, "page and limit must be integers")
		return
	}

	filter := domain.BookingFilter{Origin: q.Origin, Destination: q.Destination}
	if q.Status != "" {
		status, err := domain.ParseBookingStatus(q.Status)
		if err != nil {
			writeError(c, domain.NewValidationError("status", "status must be one of BOOKED, DEPARTED, ARRIVED, DELIVERED, CANCELLED"))
			return
		}
		filter.Status = status
	}

	page, err := h.service.List(c.Request.Context(), filter, domain.RawPagination(q.Page, q.Limit))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("refId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(c, "Booking not found")
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// transition handles the four PATCH lifecycle endpoints. The body is optional.
func (h *BookingHandler) transition(t domain.Transition) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req booking.TransitionInput
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			writeBadRequest(c, "Invalid request body")
			return
		}

		b, err := h.service.Transition(c.Request.Context(), c.Param("refId"), t, req)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeNotFound(c, "Booking not found")
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
