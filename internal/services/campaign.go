package services

import (
	"log/slog"

	"southcoast-promotion/internal/models"
)

// CampaignService manages the campaign catalog
type CampaignService struct {
	repo   CampaignStore
	logger *slog.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(repo CampaignStore, logger *slog.Logger) *CampaignService {
	return &CampaignService{repo: repo, logger: logger}
}

// ListActive returns the bookable campaign catalog ordered by run date
func (s *CampaignService) ListActive() ([]*models.Campaign, error) {
	return s.repo.List(true)
}

// ListAll returns every campaign including inactive ones. Admin use.
func (s *CampaignService) ListAll() ([]*models.Campaign, error) {
	return s.repo.List(false)
}

// Get retrieves a campaign by ID
func (s *CampaignService) Get(id int) (*models.Campaign, error) {
	return s.repo.GetByID(id)
}

// Create adds a campaign to the catalog
func (s *CampaignService) Create(req *models.CampaignCreateRequest) (*models.Campaign, error) {
	campaign, err := s.repo.Create(req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign created", "campaign_id", campaign.ID, "name", campaign.Name)
	return campaign, nil
}

// Update modifies a campaign
func (s *CampaignService) Update(id int, req *models.CampaignUpdateRequest) (*models.Campaign, error) {
	campaign, err := s.repo.Update(id, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign updated", "campaign_id", campaign.ID, "name", campaign.Name)
	return campaign, nil
}

// Delete removes a campaign from the catalog
func (s *CampaignService) Delete(id int) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("campaign deleted", "campaign_id", id)
	return nil
}
