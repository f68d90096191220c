package services

import (
	"log/slog"
	"sync"

	"southcoast-promotion/internal/models"
)

// MockEmailService records emails instead of sending them. Used in
// development when no API key is configured, and in tests.
type MockEmailService struct {
	logger *slog.Logger

	mu   sync.Mutex
	Sent []MockEmail
}

// MockEmail records one email the mock service would have sent
type MockEmail struct {
	To      string
	Subject string
}

// NewMockEmailService creates a new mock email service
func NewMockEmailService(logger *slog.Logger) *MockEmailService {
	return &MockEmailService{logger: logger}
}

func (m *MockEmailService) record(to, subject string) {
	m.mu.Lock()
	m.Sent = append(m.Sent, MockEmail{To: to, Subject: subject})
	m.mu.Unlock()
	m.logger.Info("mock email sent", "to", to, "subject", subject)
}

// SendBookingConfirmation records a booking confirmation email
func (m *MockEmailService) SendBookingConfirmation(booking *models.Booking) error {
	m.record(booking.CustomerEmail, "Booking received - "+booking.BookingNumber)
	return nil
}

// SendContractSignedNotification records a contract confirmation email
func (m *MockEmailService) SendContractSignedNotification(booking *models.Booking) error {
	m.record(booking.CustomerEmail, "Contract signed - "+booking.BookingNumber)
	return nil
}
