package handlers

import (
	"net/http"
	"strconv"
	"time"

	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/repositories"
	"southcoast-promotion/internal/services"
)

// AdminHandler serves the campaign and booking management API
type AdminHandler struct {
	campaigns *services.CampaignService
	bookings  *services.BookingService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(campaigns *services.CampaignService, bookings *services.BookingService) *AdminHandler {
	return &AdminHandler{campaigns: campaigns, bookings: bookings}
}

// ListCampaigns returns every campaign, including inactive ones
func (h *AdminHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.ListAll()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"campaigns": campaigns})
}

// CreateCampaign adds a campaign to the catalog
func (h *AdminHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req models.CampaignCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := h.campaigns.Create(&req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, campaign)
}

// UpdateCampaign modifies a campaign
func (h *AdminHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	var req models.CampaignUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	campaign, err := h.campaigns.Update(id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, campaign)
}

// DeleteCampaign removes a campaign from the catalog
func (h *AdminHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	if err := h.campaigns.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListBookings returns bookings matching the query filters
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filters := repositories.BookingSearchFilters{
		Status: models.BookingStatus(r.URL.Query().Get("status")),
		Limit:  50,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 200 {
			filters.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filters.DateFrom = &from
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			to = to.AddDate(0, 0, 1)
			filters.DateTo = &to
		}
	}

	bookings, err := h.bookings.Search(filters)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// GetBooking returns a single booking with its items
func (h *AdminHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "bookingID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	booking, err := h.bookings.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type updateStatusRequest struct {
	Status models.BookingStatus `json:"status"`
}

// UpdateBookingStatus applies an admin status change
func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "bookingID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking ID")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.bookings.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}
