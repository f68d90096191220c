package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"southcoast-promotion/internal/middleware"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/services"
)

// BookingHandler handles checkout and the customer's booking views
type BookingHandler struct {
	bookings *services.BookingService
	store    sessions.Store
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, store sessions.Store) *BookingHandler {
	return &BookingHandler{bookings: bookings, store: store}
}

// CreateBooking turns the session cart into a booking using the
// submitted customer details. On success the cart empties and the
// flow moves to the contract phase.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var info services.CustomerInfo
	if err := decodeJSON(r, &info); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	cart := getCartFromSession(session)
	if cart.CurrentPhase() != models.PhaseCustomerInfo {
		if err := cart.Advance(models.PhaseCustomerInfo); err != nil {
			respondServiceError(w, err)
			return
		}
	}

	booking, err := h.bookings.CreateFromCart(cart, info, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := cart.CompleteCheckout(); err != nil {
		respondServiceError(w, err)
		return
	}
	saveCartToSession(session, cart)
	session.Values["active_booking_id"] = booking.ID
	if err := session.Save(r, w); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	respondJSON(w, http.StatusCreated, booking)
}

// ListMyBookings returns the customer's bookings, newest first
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	bookings, err := h.bookings.ListForUser(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// GetMyBooking returns one of the customer's bookings
func (h *BookingHandler) GetMyBooking(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	bookingID, err := idParam(r, "bookingID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	booking, err := h.bookings.GetForUser(bookingID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}
