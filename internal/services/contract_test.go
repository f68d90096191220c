package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"southcoast-promotion/internal/models"
)

func seededContractFixture(t *testing.T) (*ContractService, *MockBookingStore, *models.Booking) {
	t.Helper()
	bookings := NewMockBookingStore()
	booking := &models.Booking{
		ID:              1,
		BookingNumber:   "SCP-20260301-000001",
		UserID:          7,
		CustomerName:    "Jordan Smith",
		CustomerCompany: "Smith Retail Ltd",
		CustomerEmail:   "jordan@example.com",
		Subtotal:        25000,
		DiscountAmount:  1250,
		VAT:             4750,
		TotalAmount:     28500,
		Status:          models.BookingPending,
		Items: []models.BookingItem{
			{CampaignID: 1, CampaignName: "Brighton Seafront Circuit", SlotsRequired: 1, PricePerSlot: 12500, TotalPrice: 12500},
			{CampaignID: 2, CampaignName: "Portsmouth Gunwharf Run", SlotsRequired: 1, PricePerSlot: 12500, TotalPrice: 12500},
		},
	}
	bookings.Seed(booking)
	return NewContractService(bookings, testLogger()), bookings, booking
}

func validSignature() *models.ContractSignature {
	return &models.ContractSignature{
		SignatureData: "data:image/png;base64,iVBORw0KGgo=",
		SignerName:    "Jordan Smith",
		SignerDate:    "2026-08-26",
	}
}

func TestContractTextInterpolation(t *testing.T) {
	svc, _, booking := seededContractFixture(t)

	text := svc.ContractText(booking)

	assert.Contains(t, text, "SCP-20260301-000001")
	assert.Contains(t, text, "Jordan Smith")
	assert.Contains(t, text, "Smith Retail Ltd")
	assert.Contains(t, text, "Brighton Seafront Circuit")
	assert.Contains(t, text, "£250.00")
	assert.Contains(t, text, "£12.50")
	assert.Contains(t, text, "£47.50")
	assert.Contains(t, text, "£285.00")
}

func TestContractStageFlow(t *testing.T) {
	svc, _, booking := seededContractFixture(t)

	assert.Equal(t, models.StageReview, svc.Stage(booking))

	require.NoError(t, svc.Advance(booking, models.StageSign))
	assert.Equal(t, models.StageSign, svc.Stage(booking))

	// Back to the terms is allowed
	require.NoError(t, svc.Advance(booking, models.StageReview))
	assert.Equal(t, models.StageReview, svc.Stage(booking))

	// Review cannot jump straight to complete
	assert.Error(t, svc.Advance(booking, models.StageComplete))
}

func TestSignPersistsSignature(t *testing.T) {
	svc, bookings, booking := seededContractFixture(t)

	signed, err := svc.Sign(booking.ID, validSignature())
	require.NoError(t, err)

	assert.True(t, signed.ContractSigned)
	assert.Equal(t, "Jordan Smith", signed.SignerName)
	assert.Equal(t, "2026-08-26", signed.SignerDate)
	assert.Contains(t, signed.ContractText, "SCP-20260301-000001")
	assert.Equal(t, models.StageComplete, svc.Stage(signed))

	stored, err := bookings.GetByID(booking.ID)
	require.NoError(t, err)
	assert.True(t, stored.ContractSigned)
	assert.NotEmpty(t, stored.SignatureData)
}

func TestSignWithoutSignerNameDoesNotPersist(t *testing.T) {
	svc, bookings, booking := seededContractFixture(t)

	sig := validSignature()
	sig.SignerName = "   "

	_, err := svc.Sign(booking.ID, sig)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	stored, err := bookings.GetByID(booking.ID)
	require.NoError(t, err)
	assert.False(t, stored.ContractSigned, "validation failure must not touch the booking")
	assert.Empty(t, stored.SignatureData)
}

func TestSignWithoutSignatureDoesNotPersist(t *testing.T) {
	svc, bookings, booking := seededContractFixture(t)

	sig := validSignature()
	sig.SignatureData = ""

	_, err := svc.Sign(booking.ID, sig)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	stored, err := bookings.GetByID(booking.ID)
	require.NoError(t, err)
	assert.False(t, stored.ContractSigned)
}

func TestSignTwiceRejected(t *testing.T) {
	svc, _, booking := seededContractFixture(t)

	_, err := svc.Sign(booking.ID, validSignature())
	require.NoError(t, err)

	_, err = svc.Sign(booking.ID, validSignature())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSignFillsDefaults(t *testing.T) {
	svc, _, booking := seededContractFixture(t)

	sig := validSignature()
	sig.SignerDate = ""
	sig.ContractText = ""

	signed, err := svc.Sign(booking.ID, sig)
	require.NoError(t, err)

	assert.NotEmpty(t, signed.SignerDate)
	assert.Contains(t, signed.ContractText, "ADVERTISING CAMPAIGN BOOKING AGREEMENT")
}

func TestSignUnknownBooking(t *testing.T) {
	svc, _, _ := seededContractFixture(t)

	_, err := svc.Sign(999, validSignature())
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}
