package services

import (
	"fmt"
	"log/slog"
	"strings"

	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/pricing"
	"southcoast-promotion/internal/repositories"
)

// CustomerInfo is the contact detail captured at checkout
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// BookingService turns a cart into a booking and manages the booking
// lifecycle after checkout.
type BookingService struct {
	repo    BookingStore
	pricing pricing.Config
	email   EmailService
	logger  *slog.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(repo BookingStore, pricingCfg pricing.Config, email EmailService, logger *slog.Logger) *BookingService {
	return &BookingService{
		repo:    repo,
		pricing: pricingCfg,
		email:   email,
		logger:  logger,
	}
}

// Quote returns the pricing breakdown for a cart without creating
// anything.
func (s *BookingService) Quote(cart *models.Cart) pricing.Breakdown {
	return pricing.Calculate(cart.Items, s.pricing)
}

// CreateFromCart creates a booking from the cart contents and the
// customer's details, snapshotting the pricing breakdown at booking
// time. Campaign slots are reserved atomically; the confirmation email
// is best effort.
func (s *BookingService) CreateFromCart(cart *models.Cart, info CustomerInfo, userID int) (*models.Booking, error) {
	if cart.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	breakdown := pricing.Calculate(cart.Items, s.pricing)

	req := &models.BookingCreateRequest{
		UserID:          userID,
		CustomerName:    strings.TrimSpace(info.Name),
		CustomerEmail:   strings.TrimSpace(info.Email),
		CustomerPhone:   strings.TrimSpace(info.Phone),
		CustomerCompany: strings.TrimSpace(info.Company),
		Items:           cart.Items,
		Subtotal:        breakdown.SubtotalPence(),
		DiscountAmount:  breakdown.DiscountPence(),
		VAT:             breakdown.VATPence(),
		TotalAmount:     breakdown.TotalPence(),
	}

	booking, err := s.repo.Create(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"booking_number", booking.BookingNumber,
		"campaigns", len(booking.Items),
		"total_pence", booking.TotalAmount)

	if err := s.email.SendBookingConfirmation(booking); err != nil {
		s.logger.Warn("failed to send booking confirmation",
			"booking_id", booking.ID, "error", err)
	}

	return booking, nil
}

// GetForUser retrieves a booking, checking it belongs to the user
func (s *BookingService) GetForUser(bookingID, userID int) (*models.Booking, error) {
	booking, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, models.ErrUnauthorized
	}
	return booking, nil
}

// Get retrieves a booking without an ownership check. Admin use only.
func (s *BookingService) Get(bookingID int) (*models.Booking, error) {
	return s.repo.GetByID(bookingID)
}

// GetByNumber retrieves a booking by its public reference
func (s *BookingService) GetByNumber(bookingNumber string) (*models.Booking, error) {
	return s.repo.GetByBookingNumber(bookingNumber)
}

// ListForUser retrieves a customer's bookings, newest first
func (s *BookingService) ListForUser(userID int) ([]*models.Booking, error) {
	return s.repo.Search(repositories.BookingSearchFilters{UserID: userID})
}

// Search retrieves bookings matching admin filters
func (s *BookingService) Search(filters repositories.BookingSearchFilters) ([]*models.Booking, error) {
	return s.repo.Search(filters)
}

// ConfirmIfReady promotes a pending booking to confirmed once both the
// contract and the creative material are in. A booking that is not yet
// ready is left untouched.
func (s *BookingService) ConfirmIfReady(bookingID int) (*models.Booking, error) {
	booking, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingPending || !booking.ReadyToConfirm() {
		return booking, nil
	}

	if err := s.repo.UpdateStatus(bookingID, models.BookingConfirmed); err != nil {
		return nil, err
	}

	s.logger.Info("booking confirmed", "booking_id", bookingID, "booking_number", booking.BookingNumber)
	return s.repo.GetByID(bookingID)
}

// UpdateStatus applies an admin status change, enforcing the booking
// lifecycle rules.
func (s *BookingService) UpdateStatus(bookingID int, status models.BookingStatus) (*models.Booking, error) {
	booking, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.BookingCancelled:
		if !booking.CanBeCancelled() {
			return nil, fmt.Errorf("%w: booking %s cannot be cancelled", models.ErrInvalidInput, booking.BookingNumber)
		}
	case models.BookingCompleted:
		if !booking.CanBeCompleted() {
			return nil, fmt.Errorf("%w: booking %s cannot be completed", models.ErrInvalidInput, booking.BookingNumber)
		}
	case models.BookingConfirmed:
		if booking.Status != models.BookingPending {
			return nil, fmt.Errorf("%w: booking %s is not pending", models.ErrInvalidInput, booking.BookingNumber)
		}
	case models.BookingPending:
		return nil, fmt.Errorf("%w: bookings cannot return to pending", models.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
	}

	if err := s.repo.UpdateStatus(bookingID, status); err != nil {
		return nil, err
	}

	return s.repo.GetByID(bookingID)
}
