package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"southcoast-promotion/internal/middleware"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/pricing"
	"southcoast-promotion/internal/services"
)

// CartHandler manages the session cart and the booking phase flow
type CartHandler struct {
	campaigns *services.CampaignService
	bookings  *services.BookingService
	store     sessions.Store
}

// NewCartHandler creates a new cart handler
func NewCartHandler(campaigns *services.CampaignService, bookings *services.BookingService, store sessions.Store) *CartHandler {
	return &CartHandler{
		campaigns: campaigns,
		bookings:  bookings,
		store:     store,
	}
}

// cartResponse is the cart with its derived pricing breakdown
type cartResponse struct {
	Items          []models.CartItem   `json:"items"`
	Phase          models.BookingPhase `json:"phase"`
	TotalItems     int                 `json:"total_items"`
	TotalSlots     int                 `json:"total_slots"`
	Pricing        pricing.Breakdown   `json:"pricing"`
	FormattedTotal string              `json:"formatted_total"`
}

func (h *CartHandler) cartResponse(cart *models.Cart) cartResponse {
	breakdown := h.bookings.Quote(cart)
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return cartResponse{
		Items:          items,
		Phase:          cart.CurrentPhase(),
		TotalItems:     cart.TotalItems(),
		TotalSlots:     cart.TotalSlots(),
		Pricing:        breakdown,
		FormattedTotal: pricing.FormatGBP(breakdown.Total),
	}
}

// GetCart returns the current cart with its pricing breakdown
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	cart := getCartFromSession(session)
	respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

type addItemRequest struct {
	CampaignID int `json:"campaign_id"`
	Slots      int `json:"slots"`
}

// AddItem adds campaign slots to the cart. Re-adding a campaign
// already in the cart increments its slot count.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Slots < 1 {
		req.Slots = 1
	}

	campaign, err := h.campaigns.Get(req.CampaignID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !campaign.IsBookable() {
		respondError(w, http.StatusUnprocessableEntity, "campaign is not available for booking")
		return
	}
	if req.Slots > campaign.SlotsAvailable() {
		respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("only %d slot(s) remaining for %s", campaign.SlotsAvailable(), campaign.Name))
		return
	}

	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	cart := getCartFromSession(session)
	item := models.CartItem{
		CampaignID:     campaign.ID,
		CampaignName:   campaign.Name,
		Date:           campaign.DisplayDate(),
		Time:           campaign.RunTime,
		SlotsRequired:  req.Slots,
		PricePerSlot:   campaign.PricePerSlot,
		AdvertsPerSlot: campaign.AdvertsPerSlot,
		IconURL:        campaign.IconURL,
	}
	if err := cart.AddItem(item); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.saveCart(session, cart, w, r); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

type updateItemRequest struct {
	Slots int `json:"slots"`
}

// UpdateItem sets the slot count for a cart line. Zero removes it.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	campaignID, err := idParam(r, "campaignID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	cart := getCartFromSession(session)
	cart.UpdateItem(campaignID, req.Slots)

	if err := h.saveCart(session, cart, w, r); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

// RemoveItem removes a campaign from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	campaignID, err := idParam(r, "campaignID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	cart := getCartFromSession(session)
	cart.RemoveItem(campaignID)

	if err := h.saveCart(session, cart, w, r); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

// ClearCart empties the cart and resets the booking phase
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	cart := getCartFromSession(session)
	cart.Clear()

	if err := h.saveCart(session, cart, w, r); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

type advancePhaseRequest struct {
	Phase models.BookingPhase `json:"phase"`
}

// AdvancePhase moves the booking flow to the requested phase. An
// attempt to enter checkout with an empty cart is rejected with a
// warning rather than an error page.
func (h *CartHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	var req advancePhaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session error")
		return
	}

	cart := getCartFromSession(session)
	if err := cart.Advance(req.Phase); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.saveCart(session, cart, w, r); err != nil {
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

func (h *CartHandler) saveCart(session *sessions.Session, cart *models.Cart, w http.ResponseWriter, r *http.Request) error {
	saveCartToSession(session, cart)
	if err := session.Save(r, w); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save session")
		return err
	}
	return nil
}

// getCartFromSession deserializes the cart, returning a fresh one when
// the session holds nothing usable.
func getCartFromSession(session *sessions.Session) *models.Cart {
	raw, ok := session.Values["cart"].(string)
	if !ok {
		return models.NewCart()
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return models.NewCart()
	}
	return &cart
}

func saveCartToSession(session *sessions.Session, cart *models.Cart) {
	raw, err := json.Marshal(cart)
	if err != nil {
		return
	}
	session.Values["cart"] = string(raw)
}
