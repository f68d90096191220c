package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"southcoast-promotion/internal/middleware"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/services"
)

// ContractHandler runs the contract review and signature flow
type ContractHandler struct {
	bookings  *services.BookingService
	contracts *services.ContractService
	email     services.EmailService
	store     sessions.Store
	logger    *slog.Logger
}

// NewContractHandler creates a new contract handler
func NewContractHandler(
	bookings *services.BookingService,
	contracts *services.ContractService,
	email services.EmailService,
	store sessions.Store,
	logger *slog.Logger,
) *ContractHandler {
	return &ContractHandler{
		bookings:  bookings,
		contracts: contracts,
		email:     email,
		store:     store,
		logger:    logger,
	}
}

type contractResponse struct {
	Stage        models.ContractStage `json:"stage"`
	ContractText string               `json:"contract_text"`
	Signed       bool                 `json:"signed"`
	SignerName   string               `json:"signer_name,omitempty"`
	SignerDate   string               `json:"signer_date,omitempty"`
}

// GetContract returns the contract text and current stage for a booking
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	text := booking.ContractText
	if text == "" {
		text = h.contracts.ContractText(booking)
	}

	respondJSON(w, http.StatusOK, contractResponse{
		Stage:        h.contracts.Stage(booking),
		ContractText: text,
		Signed:       booking.ContractSigned,
		SignerName:   booking.SignerName,
		SignerDate:   booking.SignerDate,
	})
}

type advanceStageRequest struct {
	Stage models.ContractStage `json:"stage"`
}

// AdvanceStage moves the contract flow between review and sign
func (h *ContractHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	var req advanceStageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.contracts.Advance(booking, req.Stage); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"stage": req.Stage})
}

// Sign records the customer's signature on the booking contract
func (h *ContractHandler) Sign(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	var sig models.ContractSignature
	if err := decodeJSON(r, &sig); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	signed, err := h.contracts.Sign(booking.ID, &sig)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.email.SendContractSignedNotification(signed); err != nil {
		h.logger.Warn("failed to send contract confirmation",
			"booking_id", signed.ID, "error", err)
	}

	signed, err = h.bookings.ConfirmIfReady(signed.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.advanceSessionPhase(w, r)
	respondJSON(w, http.StatusOK, signed)
}

// advanceSessionPhase moves the session flow past the contract step.
// Best effort: the signature is already recorded on the booking.
func (h *ContractHandler) advanceSessionPhase(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		return
	}

	cart := getCartFromSession(session)
	if cart.CurrentPhase() != models.PhaseContractPending {
		return
	}
	if err := cart.Advance(models.PhaseCreativePending); err != nil {
		return
	}
	saveCartToSession(session, cart)
	_ = session.Save(r, w)
}

func (h *ContractHandler) ownedBooking(w http.ResponseWriter, r *http.Request) (*models.Booking, bool) {
	user := middleware.UserFromContext(r.Context())

	bookingID, err := idParam(r, "bookingID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking ID")
		return nil, false
	}

	booking, err := h.bookings.GetForUser(bookingID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return booking, true
}
