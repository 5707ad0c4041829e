package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/repository"
	"carshare/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidRentalID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidRentalPeriod),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrInvalidDailyFee),
		errors.Is(err, service.ErrInvalidInventory):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrVehicleUnavailable),
		errors.Is(err, service.ErrOpenRentalExists),
		errors.Is(err, service.ErrRentalAlreadyClosed),
		errors.Is(err, service.ErrRentalStillOpen),
		errors.Is(err, service.ErrAlreadyPaid),
		errors.Is(err, service.ErrBookingInProgress),
		errors.Is(err, service.ErrPaymentInProgress):
		return http.StatusConflict

	// Access errors
	case errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrNotRentalOwner):
		return http.StatusForbidden

	// External dependency failure
	case errors.Is(err, service.ErrSessionCreationFailed):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
