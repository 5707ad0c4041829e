package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"carshare/internal/domain"
)

// Notifier delivers a message to a chat destination. Implementations must
// not be relied on for correctness: business operations treat delivery as
// fire-and-forget and only log failures.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, message string) error
}

// notifyTimeout bounds the fire-and-forget deliveries that outlive the
// request context.
const notifyTimeout = 10 * time.Second

// NotificationService wraps a Notifier with the domain's message catalogue.
// Every method swallows delivery errors after logging them; a failed
// notification never fails the business operation that triggered it.
type NotificationService struct {
	notifier  Notifier
	opsChatID int64 // destination for fleet-wide notices such as the overdue sweep
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifier Notifier, opsChatID int64) *NotificationService {
	return &NotificationService{notifier: notifier, opsChatID: opsChatID}
}

// NotifyRentalCreated tells the customer their booking succeeded.
func (s *NotificationService) NotifyRentalCreated(rental *domain.Rental, customer *domain.Customer) {
	msg := fmt.Sprintf("New rental created for user %s", customer.Name)
	s.send(customer.TelegramChatID, msg)
}

// NotifyRentalReturned tells the customer their return was recorded.
func (s *NotificationService) NotifyRentalReturned(rental *domain.Rental, customer *domain.Customer) {
	s.send(customer.TelegramChatID, "You have just returned the rental")
}

// NotifyPaymentCreated tells the customer a checkout session is ready.
func (s *NotificationService) NotifyPaymentCreated(payment *domain.Payment, customer *domain.Customer) {
	msg := fmt.Sprintf("Payment of $%.2f created for rental %s", payment.Amount, payment.RentalID)
	s.send(customer.TelegramChatID, msg)
}

// NotifyNoOverdueRentals posts the daily all-clear to the ops chat.
func (s *NotificationService) NotifyNoOverdueRentals() {
	s.send(s.opsChatID, "No rentals overdue today!")
}

// NotifyOverdueRental flags one overdue rental in the ops chat.
func (s *NotificationService) NotifyOverdueRental(rental *domain.Rental) {
	s.send(s.opsChatID, fmt.Sprintf("Overdue rental with id: %s", rental.ID))
}

func (s *NotificationService) send(chatID int64, message string) {
	if s == nil || s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, chatID, message); err != nil {
		zap.S().Errorw("failed to send notification",
			"chat_id", chatID,
			"message", message,
			"error", err,
		)
	}
}

// LogNotifier is a Notifier that only writes to the log. It is the default
// when no Telegram bot token is configured.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the message instead of delivering it.
func (n *LogNotifier) Notify(ctx context.Context, chatID int64, message string) error {
	zap.S().Infow("notification", "chat_id", chatID, "message", message)
	return nil
}
