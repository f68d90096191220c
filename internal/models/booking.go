package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking represents a confirmed campaign booking in the system
type Booking struct {
	ID               int           `json:"id" db:"id"`
	BookingNumber    string        `json:"booking_number" db:"booking_number"`
	UserID           int           `json:"user_id" db:"user_id"`
	CustomerName     string        `json:"customer_name" db:"customer_name"`
	CustomerEmail    string        `json:"customer_email" db:"customer_email"`
	CustomerPhone    string        `json:"customer_phone" db:"customer_phone"`
	CustomerCompany  string        `json:"customer_company" db:"customer_company"`
	Subtotal         int           `json:"subtotal" db:"subtotal"`               // pence
	DiscountAmount   int           `json:"discount_amount" db:"discount_amount"` // pence
	VAT              int           `json:"vat" db:"vat"`                         // pence
	TotalAmount      int           `json:"total_amount" db:"total_amount"`       // pence
	Status           BookingStatus `json:"status" db:"status"`
	ContractSigned   bool          `json:"contract_signed" db:"contract_signed"`
	CreativeUploaded bool          `json:"creative_uploaded" db:"creative_uploaded"`
	SignatureData    string        `json:"-" db:"signature_data"`
	SignerName       string        `json:"signer_name" db:"signer_name"`
	SignerDate       string        `json:"signer_date" db:"signer_date"`
	ContractText     string        `json:"-" db:"contract_text"`
	Items            []BookingItem `json:"items,omitempty"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingItem represents one campaign line within a booking
type BookingItem struct {
	ID            int       `json:"id" db:"id"`
	BookingID     int       `json:"booking_id" db:"booking_id"`
	CampaignID    int       `json:"campaign_id" db:"campaign_id"`
	CampaignName  string    `json:"campaign_name" db:"campaign_name"`
	SlotsRequired int       `json:"slots_required" db:"slots_required"`
	PricePerSlot  int       `json:"price_per_slot" db:"price_per_slot"` // pence
	TotalPrice    int       `json:"total_price" db:"total_price"`       // pence
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// BookingCreateRequest represents the data needed to create a booking
type BookingCreateRequest struct {
	UserID          int        `json:"user_id"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerPhone   string     `json:"customer_phone"`
	CustomerCompany string     `json:"customer_company"`
	Items           []CartItem `json:"items"`
	Subtotal        int        `json:"subtotal"`
	DiscountAmount  int        `json:"discount_amount"`
	VAT             int        `json:"vat"`
	TotalAmount     int        `json:"total_amount"`
}

var (
	// Booking number format: SCP-YYYYMMDD-XXXXXX (e.g. SCP-20260301-123456)
	bookingNumberRegex = regexp.MustCompile(`^SCP-\d{8}-\d{6}$`)
	bookingEmailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Validate validates booking creation data
func (req *BookingCreateRequest) Validate() error {
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return errors.New("customer name is required")
	}
	if req.CustomerEmail == "" {
		return errors.New("customer email is required")
	}
	if !bookingEmailRegex.MatchString(req.CustomerEmail) {
		return errors.New("customer email format is invalid")
	}
	if req.Subtotal < 0 || req.TotalAmount < 0 {
		return errors.New("booking amounts cannot be negative")
	}
	if req.TotalAmount != req.Subtotal-req.DiscountAmount+req.VAT {
		return errors.New("booking total does not match its breakdown")
	}
	return nil
}

// Validate validates stored booking data
func (b *Booking) Validate() error {
	if !bookingNumberRegex.MatchString(b.BookingNumber) {
		return errors.New("booking number format is invalid")
	}
	if err := validateBookingStatus(b.Status); err != nil {
		return err
	}
	if b.TotalAmount < 0 {
		return errors.New("total amount cannot be negative")
	}
	return nil
}

func validateBookingStatus(status BookingStatus) error {
	switch status {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return nil
	default:
		return errors.New("invalid booking status")
	}
}

// GenerateBookingNumber generates a unique booking number
func GenerateBookingNumber() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	// 6-digit random suffix via crypto/rand, timestamp fallback
	max := big.NewInt(1000000)
	randomNum, err := rand.Int(rand.Reader, max)
	if err != nil {
		randomPart := now.UnixNano() % 1000000
		return fmt.Sprintf("SCP-%s-%06d", dateStr, randomPart)
	}

	return fmt.Sprintf("SCP-%s-%06d", dateStr, randomNum.Int64())
}

// IsPending returns true if the booking is awaiting confirmation
func (b *Booking) IsPending() bool {
	return b.Status == BookingPending
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// CanBeCompleted returns true if the booking can be marked as completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == BookingConfirmed
}

// ReadyToConfirm returns true once the contract is signed and creative
// assets have been received.
func (b *Booking) ReadyToConfirm() bool {
	return b.ContractSigned && b.CreativeUploaded
}

// TotalInPounds returns the total amount in pounds
func (b *Booking) TotalInPounds() float64 {
	return float64(b.TotalAmount) / 100.0
}

// GetStatusDisplayName returns a human-readable status name
func (b *Booking) GetStatusDisplayName() string {
	switch b.Status {
	case BookingPending:
		return "Awaiting Confirmation"
	case BookingConfirmed:
		return "Confirmed"
	case BookingCompleted:
		return "Completed"
	case BookingCancelled:
		return "Cancelled"
	default:
		return string(b.Status)
	}
}
