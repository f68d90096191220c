package services

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/pricing"
)

// ContractService runs the digital contract flow for a booking:
// review the terms, capture a signature, record the signed contract.
type ContractService struct {
	bookings BookingStore
	logger   *slog.Logger

	mu         sync.Mutex
	stages     map[int]models.ContractStage
	submitting map[int]bool
}

// NewContractService creates a new contract service
func NewContractService(bookings BookingStore, logger *slog.Logger) *ContractService {
	return &ContractService{
		bookings:   bookings,
		logger:     logger,
		stages:     make(map[int]models.ContractStage),
		submitting: make(map[int]bool),
	}
}

// Stage returns the current contract stage for a booking. Signed
// bookings are always complete; unseen bookings start at review.
func (s *ContractService) Stage(booking *models.Booking) models.ContractStage {
	if booking.ContractSigned {
		return models.StageComplete
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stage, ok := s.stages[booking.ID]; ok {
		return stage
	}
	return models.StageReview
}

// Advance moves a booking's contract flow to the given stage
func (s *ContractService) Advance(booking *models.Booking, to models.ContractStage) error {
	from := s.Stage(booking)
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: cannot move contract from %s to %s", models.ErrInvalidInput, from, to)
	}

	s.mu.Lock()
	s.stages[booking.ID] = to
	s.mu.Unlock()
	return nil
}

// ContractText renders the booking contract with the customer and
// campaign details filled in.
func (s *ContractService) ContractText(booking *models.Booking) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ADVERTISING CAMPAIGN BOOKING AGREEMENT\n\n")
	fmt.Fprintf(&b, "Booking reference: %s\n", booking.BookingNumber)
	fmt.Fprintf(&b, "Date: %s\n\n", time.Now().Format("2 January 2006"))

	fmt.Fprintf(&b, "This agreement is between SouthCoast ProMotion Ltd (\"the Provider\") and %s", booking.CustomerName)
	if booking.CustomerCompany != "" {
		fmt.Fprintf(&b, " of %s", booking.CustomerCompany)
	}
	fmt.Fprintf(&b, " (\"the Client\").\n\n")

	fmt.Fprintf(&b, "CAMPAIGNS BOOKED\n")
	for _, item := range booking.Items {
		fmt.Fprintf(&b, "  - %s: %d slot(s) at %s per slot, %s\n",
			item.CampaignName, item.SlotsRequired,
			pricing.FormatGBP(pricing.PoundsFromPence(item.PricePerSlot)),
			pricing.FormatGBP(pricing.PoundsFromPence(item.TotalPrice)))
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "CHARGES\n")
	fmt.Fprintf(&b, "  Subtotal: %s\n", pricing.FormatGBP(pricing.PoundsFromPence(booking.Subtotal)))
	if booking.DiscountAmount > 0 {
		fmt.Fprintf(&b, "  Multi-campaign discount: -%s\n", pricing.FormatGBP(pricing.PoundsFromPence(booking.DiscountAmount)))
	}
	fmt.Fprintf(&b, "  VAT (20%%): %s\n", pricing.FormatGBP(pricing.PoundsFromPence(booking.VAT)))
	fmt.Fprintf(&b, "  Total payable: %s\n\n", pricing.FormatGBP(pricing.PoundsFromPence(booking.TotalAmount)))

	fmt.Fprintf(&b, "TERMS\n")
	fmt.Fprintf(&b, "  1. The Provider will display the Client's advertising creative for the campaigns and slots listed above.\n")
	fmt.Fprintf(&b, "  2. The Client warrants that all supplied creative material is owned by or licensed to the Client.\n")
	fmt.Fprintf(&b, "  3. Creative material must be supplied no later than 7 days before the first campaign run date.\n")
	fmt.Fprintf(&b, "  4. Cancellations within 14 days of the first run date are charged in full.\n")
	fmt.Fprintf(&b, "  5. Payment is due within 14 days of the invoice date.\n")

	return b.String()
}

// Sign validates and records a contract signature. Validation failures
// are returned before anything is persisted. Concurrent submissions
// for the same booking are rejected so a double-click cannot sign
// twice.
func (s *ContractService) Sign(bookingID int, sig *models.ContractSignature) (*models.Booking, error) {
	if err := sig.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err)
	}

	s.mu.Lock()
	if s.submitting[bookingID] {
		s.mu.Unlock()
		return nil, models.ErrSubmissionInFlight
	}
	s.submitting[bookingID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.submitting, bookingID)
		s.mu.Unlock()
	}()

	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ContractSigned {
		return nil, fmt.Errorf("%w: contract already signed", models.ErrInvalidInput)
	}

	sig.BookingID = bookingID
	if strings.TrimSpace(sig.SignerDate) == "" {
		sig.SignerDate = time.Now().Format("2006-01-02")
	}
	if strings.TrimSpace(sig.ContractText) == "" {
		sig.ContractText = s.ContractText(booking)
	}

	if err := s.bookings.SaveContractSignature(bookingID, sig); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stages[bookingID] = models.StageComplete
	s.mu.Unlock()

	s.logger.Info("contract signed",
		"booking_id", bookingID,
		"booking_number", booking.BookingNumber,
		"signer", sig.SignerName)

	return s.bookings.GetByID(bookingID)
}
