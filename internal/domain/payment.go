package domain

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// PaymentType distinguishes a regular rental payment from a fine.
type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeFine    PaymentType = "FINE"
)

// Payment represents a checkout for a closed rental. Amount is computed
// once at creation time and is immutable afterwards, even after the
// external session is confirmed.
type Payment struct {
	ID         string
	RentalID   string
	Status     PaymentStatus
	Type       PaymentType
	Amount     float64
	SessionID  string
	SessionURL string
}
