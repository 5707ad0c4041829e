package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/middleware"
	"carshare/internal/repository"
	"carshare/internal/service"
)

// dateLayout is the wire format for rental dates.
const dateLayout = "2006-01-02"

// RentalHandler handles HTTP requests for rentals.
type RentalHandler struct {
	rentalService *service.RentalService
}

// NewRentalHandler creates a new RentalHandler.
func NewRentalHandler(rentalService *service.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

// BookRentalRequest is the HTTP request body for booking a rental.
type BookRentalRequest struct {
	VehicleID  string `json:"vehicle_id"`
	RentalDate string `json:"rental_date"`
	ReturnDate string `json:"return_date"`
}

// RentalResponse is the HTTP response for rental operations.
type RentalResponse struct {
	ID               string `json:"id"`
	CustomerID       string `json:"customer_id"`
	VehicleID        string `json:"vehicle_id"`
	RentalDate       string `json:"rental_date"`
	ReturnDate       string `json:"return_date"`
	ActualReturnDate string `json:"actual_return_date,omitempty"`
	Active           bool   `json:"active"`
}

// BookRental handles POST /v1/rentals
func (h *RentalHandler) BookRental(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	var req BookRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rentalDate, err := time.Parse(dateLayout, req.RentalDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rental_date must be YYYY-MM-DD"})
		return
	}
	returnDate, err := time.Parse(dateLayout, req.ReturnDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "return_date must be YYYY-MM-DD"})
		return
	}

	rental, err := h.rentalService.BookRental(c.Request.Context(), service.BookRentalRequest{
		CustomerID: principal.CustomerID,
		VehicleID:  req.VehicleID,
		RentalDate: rentalDate,
		ReturnDate: returnDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRentalResponse(rental))
}

// ReturnRental handles POST /v1/rentals/:id/return
func (h *RentalHandler) ReturnRental(c *gin.Context) {
	rental, err := h.rentalService.CloseRental(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRentalResponse(rental))
}

// GetRental handles GET /v1/rentals/:id
func (h *RentalHandler) GetRental(c *gin.Context) {
	rental, err := h.rentalService.GetRental(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRentalResponse(rental))
}

// ListRentals handles GET /v1/rentals?customer_id=&is_active=
func (h *RentalHandler) ListRentals(c *gin.Context) {
	filter := repository.RentalFilter{
		CustomerID: c.Query("customer_id"),
	}

	if isActive := c.Query("is_active"); isActive != "" {
		active := isActive == "true"
		filter.Active = &active
	}

	rentals, err := h.rentalService.ListRentals(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RentalResponse, 0, len(rentals))
	for _, rental := range rentals {
		response = append(response, toRentalResponse(rental))
	}
	respondJSON(c, http.StatusOK, response)
}

func toRentalResponse(rental *domain.Rental) RentalResponse {
	resp := RentalResponse{
		ID:         rental.ID,
		CustomerID: rental.CustomerID,
		VehicleID:  rental.VehicleID,
		RentalDate: rental.RentalDate.Format(dateLayout),
		ReturnDate: rental.ReturnDate.Format(dateLayout),
		Active:     rental.Open(),
	}
	if !rental.Open() {
		resp.ActualReturnDate = rental.ActualReturnDate.Format(dateLayout)
	}
	return resp
}
