package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	appconfig "southcoast-promotion/internal/config"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/pricing"
)

// EmailService sends customer-facing booking emails
type EmailService interface {
	SendBookingConfirmation(booking *models.Booking) error
	SendContractSignedNotification(booking *models.Booking) error
}

// ResendEmailService sends email via the Resend API
type ResendEmailService struct {
	config appconfig.EmailConfig
	client *http.Client
}

// NewResendEmailService creates a new Resend email service
func NewResendEmailService(cfg appconfig.EmailConfig) *ResendEmailService {
	return &ResendEmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (s *ResendEmailService) fromField() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

// SendBookingConfirmation emails the customer their booking summary
func (s *ResendEmailService) SendBookingConfirmation(booking *models.Booking) error {
	subject := fmt.Sprintf("Booking received - %s", booking.BookingNumber)

	var lines strings.Builder
	for _, item := range booking.Items {
		fmt.Fprintf(&lines, "  %s: %d slot(s) - %s\n",
			item.CampaignName, item.SlotsRequired,
			pricing.FormatGBP(pricing.PoundsFromPence(item.TotalPrice)))
	}

	text := fmt.Sprintf(`Dear %s,

Thank you for booking with SouthCoast ProMotion. Your booking reference is %s.

Campaigns booked:
%s
Subtotal: %s
Discount: -%s
VAT: %s
Total: %s

Next steps: sign your booking contract and upload your creative
material from your account. Your booking is confirmed once both are
received.

SouthCoast ProMotion
`,
		booking.CustomerName,
		booking.BookingNumber,
		lines.String(),
		pricing.FormatGBP(pricing.PoundsFromPence(booking.Subtotal)),
		pricing.FormatGBP(pricing.PoundsFromPence(booking.DiscountAmount)),
		pricing.FormatGBP(pricing.PoundsFromPence(booking.VAT)),
		pricing.FormatGBP(pricing.PoundsFromPence(booking.TotalAmount)),
	)

	return s.send(booking.CustomerEmail, subject, text)
}

// SendContractSignedNotification emails the customer a copy of their
// signed contract confirmation.
func (s *ResendEmailService) SendContractSignedNotification(booking *models.Booking) error {
	subject := fmt.Sprintf("Contract signed - %s", booking.BookingNumber)

	text := fmt.Sprintf(`Dear %s,

We have received your signed contract for booking %s, signed by %s on %s.

A copy of the agreement is held against your booking and can be viewed
from your account at any time.

SouthCoast ProMotion
`,
		booking.CustomerName,
		booking.BookingNumber,
		booking.SignerName,
		booking.SignerDate,
	)

	return s.send(booking.CustomerEmail, subject, text)
}

func (s *ResendEmailService) send(to, subject, text string) error {
	if s.config.APIKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	payload := resendEmailRequest{
		From:    s.fromField(),
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr resendErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}

	return nil
}
