package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/middleware"
	"carshare/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for creating a payment.
type CreatePaymentRequest struct {
	RentalID string `json:"rental_id"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID         string  `json:"id"`
	RentalID   string  `json:"rental_id"`
	Status     string  `json:"status"`
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
	SessionID  string  `json:"session_id"`
	SessionURL string  `json:"session_url"`
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.RentalID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rental_id is required"})
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), principal, req.RentalID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// ListPayments handles GET /v1/payments?customer_id=
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	customerID := c.Query("customer_id")
	if customerID == "" {
		customerID = principal.CustomerID
	}

	payments, err := h.paymentService.ListPaymentsForCustomer(c.Request.Context(), principal, customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		response = append(response, toPaymentResponse(payment))
	}
	respondJSON(c, http.StatusOK, response)
}

// PaymentSuccess handles GET /v1/payments/success/:id
// The external provider redirects here after a completed checkout.
func (h *PaymentHandler) PaymentSuccess(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	if err := h.paymentService.MarkPaid(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "payment successful"})
}

// PaymentCancel handles GET /v1/payments/cancel/:id
// The session stays payable until it expires; nothing changes server-side.
func (h *PaymentHandler) PaymentCancel(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{
		"message": "payment cancelled, the session remains available for 24 hours",
	})
}

func toPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         payment.ID,
		RentalID:   payment.RentalID,
		Status:     string(payment.Status),
		Type:       string(payment.Type),
		Amount:     payment.Amount,
		SessionID:  payment.SessionID,
		SessionURL: payment.SessionURL,
	}
}
