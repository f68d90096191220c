package handlers

import (
	"net/http"

	"southcoast-promotion/internal/services"
)

// PublicHandler serves the unauthenticated campaign catalog
type PublicHandler struct {
	campaigns *services.CampaignService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(campaigns *services.CampaignService) *PublicHandler {
	return &PublicHandler{campaigns: campaigns}
}

// ListCampaigns returns the bookable campaign catalog
func (h *PublicHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.ListActive()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"campaigns": campaigns})
}

// GetCampaign returns a single campaign
func (h *PublicHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "campaignID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	campaign, err := h.campaigns.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, campaign)
}
