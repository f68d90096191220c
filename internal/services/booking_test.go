package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/pricing"
)

func newBookingFixture(t *testing.T) (*BookingService, *MockBookingStore, *MockEmailService) {
	t.Helper()
	bookings := NewMockBookingStore()
	email := NewMockEmailService(testLogger())
	svc := NewBookingService(bookings, pricing.DefaultConfig(), email, testLogger())
	return svc, bookings, email
}

func twoLineCart(t *testing.T) *models.Cart {
	t.Helper()
	cart := models.NewCart()
	require.NoError(t, cart.AddItem(models.CartItem{CampaignID: 1, CampaignName: "Brighton Seafront Circuit", SlotsRequired: 1, PricePerSlot: 12500, AdvertsPerSlot: 40}))
	require.NoError(t, cart.AddItem(models.CartItem{CampaignID: 2, CampaignName: "Portsmouth Gunwharf Run", SlotsRequired: 1, PricePerSlot: 12500, AdvertsPerSlot: 35}))
	return cart
}

func testCustomer() CustomerInfo {
	return CustomerInfo{
		Name:    "Jordan Smith",
		Email:   "jordan@example.com",
		Phone:   "07700 900123",
		Company: "Smith Retail Ltd",
	}
}

func TestCreateFromCartSnapshotsPricing(t *testing.T) {
	svc, _, email := newBookingFixture(t)

	booking, err := svc.CreateFromCart(twoLineCart(t), testCustomer(), 7)
	require.NoError(t, err)

	// £250.00 across two campaigns: 5% discount, VAT on the
	// discounted amount, £285.00 total.
	assert.Equal(t, 25000, booking.Subtotal)
	assert.Equal(t, 1250, booking.DiscountAmount)
	assert.Equal(t, 4750, booking.VAT)
	assert.Equal(t, 28500, booking.TotalAmount)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Regexp(t, `^SCP-\d{8}-\d{6}$`, booking.BookingNumber)
	require.Len(t, booking.Items, 2)

	require.Len(t, email.Sent, 1)
	assert.Equal(t, "jordan@example.com", email.Sent[0].To)
}

func TestCreateFromCartEmptyCart(t *testing.T) {
	svc, _, email := newBookingFixture(t)

	_, err := svc.CreateFromCart(models.NewCart(), testCustomer(), 7)

	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Empty(t, email.Sent)
}

func TestCreateFromCartRequiresCustomerName(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	info := testCustomer()
	info.Name = "  "

	_, err := svc.CreateFromCart(twoLineCart(t), info, 7)
	assert.Error(t, err)
}

func TestGetForUserOwnership(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	booking, err := svc.CreateFromCart(twoLineCart(t), testCustomer(), 7)
	require.NoError(t, err)

	got, err := svc.GetForUser(booking.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = svc.GetForUser(booking.ID, 8)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestConfirmIfReady(t *testing.T) {
	svc, bookings, _ := newBookingFixture(t)

	booking, err := svc.CreateFromCart(twoLineCart(t), testCustomer(), 7)
	require.NoError(t, err)

	// Not ready yet: nothing changes
	got, err := svc.ConfirmIfReady(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)

	require.NoError(t, bookings.SaveContractSignature(booking.ID, &models.ContractSignature{
		SignatureData: "data:image/png;base64,x", SignerName: "Jordan Smith",
	}))
	require.NoError(t, bookings.SetCreativeUploaded(booking.ID))

	got, err = svc.ConfirmIfReady(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
}

func TestUpdateStatusLifecycleRules(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	booking, err := svc.CreateFromCart(twoLineCart(t), testCustomer(), 7)
	require.NoError(t, err)

	// Pending cannot be completed
	_, err = svc.UpdateStatus(booking.ID, models.BookingCompleted)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	got, err := svc.UpdateStatus(booking.ID, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	got, err = svc.UpdateStatus(booking.ID, models.BookingCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, got.Status)

	// Completed is terminal
	_, err = svc.UpdateStatus(booking.ID, models.BookingCancelled)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestListForUser(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	first, err := svc.CreateFromCart(twoLineCart(t), testCustomer(), 7)
	require.NoError(t, err)
	_, err = svc.CreateFromCart(twoLineCart(t), testCustomer(), 8)
	require.NoError(t, err)

	mine, err := svc.ListForUser(7)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}

func TestQuoteMatchesCreatedBooking(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	cart := twoLineCart(t)

	breakdown := svc.Quote(cart)
	booking, err := svc.CreateFromCart(cart, testCustomer(), 7)
	require.NoError(t, err)

	assert.Equal(t, breakdown.SubtotalPence(), booking.Subtotal)
	assert.Equal(t, breakdown.DiscountPence(), booking.DiscountAmount)
	assert.Equal(t, breakdown.VATPence(), booking.VAT)
	assert.Equal(t, breakdown.TotalPence(), booking.TotalAmount)
}
