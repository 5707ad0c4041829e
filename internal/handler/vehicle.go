package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/middleware"
	"carshare/internal/service"
)

// VehicleHandler handles HTTP requests for the vehicle catalogue.
type VehicleHandler struct {
	fleetService *service.FleetService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(fleetService *service.FleetService) *VehicleHandler {
	return &VehicleHandler{fleetService: fleetService}
}

// VehicleRequest is the HTTP request body for creating or updating a vehicle.
type VehicleRequest struct {
	Brand     string  `json:"brand"`
	Model     string  `json:"model"`
	Type      string  `json:"type"`
	Inventory int     `json:"inventory"`
	DailyFee  float64 `json:"daily_fee"`
}

// VehicleResponse is the HTTP response for vehicle operations.
type VehicleResponse struct {
	ID        string  `json:"id"`
	Brand     string  `json:"brand"`
	Model     string  `json:"model"`
	Type      string  `json:"type"`
	Inventory int     `json:"inventory"`
	DailyFee  float64 `json:"daily_fee"`
}

// CreateVehicle handles POST /v1/vehicles (manager only).
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicle, err := h.fleetService.CreateVehicle(c.Request.Context(), service.CreateVehicleRequest{
		Brand:     req.Brand,
		Model:     req.Model,
		Type:      req.Type,
		Inventory: req.Inventory,
		DailyFee:  req.DailyFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.fleetService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// ListVehicles handles GET /v1/vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.fleetService.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		response = append(response, toVehicleResponse(vehicle))
	}
	respondJSON(c, http.StatusOK, response)
}

// UpdateVehicle handles PUT /v1/vehicles/:id (manager only).
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicle, err := h.fleetService.UpdateVehicle(c.Request.Context(), service.UpdateVehicleRequest{
		VehicleID: c.Param("id"),
		Brand:     req.Brand,
		Model:     req.Model,
		Type:      req.Type,
		DailyFee:  req.DailyFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// DeleteVehicle handles DELETE /v1/vehicles/:id (manager only).
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	if err := h.fleetService.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func requireManager(c *gin.Context) bool {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return false
	}
	if !principal.IsManager() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "manager role required"})
		return false
	}
	return true
}

func toVehicleResponse(vehicle *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:        vehicle.ID,
		Brand:     vehicle.Brand,
		Model:     vehicle.Model,
		Type:      string(vehicle.Type),
		Inventory: vehicle.Inventory,
		DailyFee:  vehicle.DailyFee,
	}
}
