package models

import (
	"errors"
	"strings"
	"time"
)

// Campaign represents a schedulable advertising run (e.g. a mobile
// billboard route) that customers book slots against.
type Campaign struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Location       string    `json:"location" db:"location"`
	RunDate        time.Time `json:"run_date" db:"run_date"`
	RunTime        string    `json:"run_time" db:"run_time"` // display string, e.g. "09:00 - 17:00"
	TotalSlots     int       `json:"total_slots" db:"total_slots"`
	SlotsBooked    int       `json:"slots_booked" db:"slots_booked"`
	AdvertsPerSlot int       `json:"adverts_per_slot" db:"adverts_per_slot"`
	PricePerSlot   int       `json:"price_per_slot" db:"price_per_slot"` // pence
	IconURL        string    `json:"icon_url" db:"icon_url"`
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CampaignCreateRequest represents the data needed to create a campaign
type CampaignCreateRequest struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	RunDate        time.Time `json:"run_date"`
	RunTime        string    `json:"run_time"`
	TotalSlots     int       `json:"total_slots"`
	AdvertsPerSlot int       `json:"adverts_per_slot"`
	PricePerSlot   int       `json:"price_per_slot"`
	IconURL        string    `json:"icon_url"`
}

// CampaignUpdateRequest represents the data that can be updated for a campaign
type CampaignUpdateRequest struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	RunDate        time.Time `json:"run_date"`
	RunTime        string    `json:"run_time"`
	TotalSlots     int       `json:"total_slots"`
	AdvertsPerSlot int       `json:"adverts_per_slot"`
	PricePerSlot   int       `json:"price_per_slot"`
	IconURL        string    `json:"icon_url"`
	Active         bool      `json:"active"`
}

// Validate validates campaign creation data
func (req *CampaignCreateRequest) Validate() error {
	return validateCampaignFields(req.Name, req.Location, req.RunTime, req.TotalSlots, req.AdvertsPerSlot, req.PricePerSlot)
}

// Validate validates campaign update data
func (req *CampaignUpdateRequest) Validate() error {
	return validateCampaignFields(req.Name, req.Location, req.RunTime, req.TotalSlots, req.AdvertsPerSlot, req.PricePerSlot)
}

func validateCampaignFields(name, location, runTime string, totalSlots, advertsPerSlot, pricePerSlot int) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("campaign name is required")
	}
	if strings.TrimSpace(location) == "" {
		return errors.New("campaign location is required")
	}
	if strings.TrimSpace(runTime) == "" {
		return errors.New("campaign run time is required")
	}
	if totalSlots < 0 {
		return errors.New("total slots cannot be negative")
	}
	if advertsPerSlot < 1 {
		return errors.New("adverts per slot must be at least 1")
	}
	if pricePerSlot < 0 {
		return errors.New("price per slot cannot be negative")
	}
	return nil
}

// SlotsAvailable returns the number of unbooked slots
func (c *Campaign) SlotsAvailable() int {
	available := c.TotalSlots - c.SlotsBooked
	if available < 0 {
		return 0
	}
	return available
}

// IsBookable returns true if the campaign can accept new bookings
func (c *Campaign) IsBookable() bool {
	return c.Active && c.SlotsAvailable() > 0
}

// DisplayDate returns the run date in UK format (DD/MM/YYYY)
func (c *Campaign) DisplayDate() string {
	return c.RunDate.Format("02/01/2006")
}
