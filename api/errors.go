package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeResourceBusy      = "RESOURCE_BUSY"
	CodeInternal          = "INTERNAL_ERROR"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// errorStatus maps a service error onto the HTTP status and public error body.
// Store and unknown failures never leak their cause to the client.
func errorStatus(err error) (int, ErrorBody) {
	var verrs domain.ValidationErrors
	var terr *domain.TransitionError

	switch {
	case errors.As(err, &verrs):
		msg := "Validation failed"
		if len(verrs) == 1 {
			msg = verrs[0].Message
		}
		return http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: msg, Details: []domain.ValidationError(verrs)}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: err.Error()}
	case errors.As(err, &terr):
		return http.StatusBadRequest, ErrorBody{
			Code:    CodeInvalidTransition,
			Message: terr.Reason,
			Details: gin.H{"status": terr.From, "transition": terr.Transition},
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "Resource not found"}
	case errors.Is(err, domain.ErrLockBusy):
		return http.StatusTooManyRequests, ErrorBody{
			Code:    CodeResourceBusy,
			Message: "Resource is currently being modified by another request. Please try again.",
		}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: "Internal server error"}
	}
}

// writeError aborts the request with the mapped error body. The raw error is
// attached to the gin context so the logging middleware can report it.
func writeError(c *gin.Context, err error) {
	status, body := errorStatus(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

func writeNotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: ErrorBody{Code: CodeNotFound, Message: message}})
}

func writeBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{Code: CodeValidation, Message: message}})
}
