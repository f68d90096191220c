package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"southcoast-promotion/internal/models"
)

// CampaignRepository handles campaign data operations
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, name, description, location, run_date, run_time, total_slots, slots_booked, adverts_per_slot, price_per_slot, icon_url, active, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Location,
		&c.RunDate,
		&c.RunTime,
		&c.TotalSlots,
		&c.SlotsBooked,
		&c.AdvertsPerSlot,
		&c.PricePerSlot,
		&c.IconURL,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create creates a new campaign
func (r *CampaignRepository) Create(req *models.CampaignCreateRequest) (*models.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO campaigns (name, description, location, run_date, run_time, total_slots, slots_booked, adverts_per_slot, price_per_slot, icon_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, TRUE, $10, $10)
		RETURNING ` + campaignColumns

	now := time.Now()
	campaign, err := scanCampaign(r.db.QueryRow(
		query,
		req.Name,
		req.Description,
		req.Location,
		req.RunDate,
		req.RunTime,
		req.TotalSlots,
		req.AdvertsPerSlot,
		req.PricePerSlot,
		req.IconURL,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	return campaign, nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(id int) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return campaign, nil
}

// List retrieves campaigns, optionally restricted to active ones,
// ordered by run date.
func (r *CampaignRepository) List(activeOnly bool) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY run_date, id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	return campaigns, rows.Err()
}

// Update updates a campaign
func (r *CampaignRepository) Update(id int, req *models.CampaignUpdateRequest) (*models.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE campaigns
		SET name = $1, description = $2, location = $3, run_date = $4, run_time = $5, total_slots = $6, adverts_per_slot = $7, price_per_slot = $8, icon_url = $9, active = $10, updated_at = $11
		WHERE id = $12
		RETURNING ` + campaignColumns

	campaign, err := scanCampaign(r.db.QueryRow(
		query,
		req.Name,
		req.Description,
		req.Location,
		req.RunDate,
		req.RunTime,
		req.TotalSlots,
		req.AdvertsPerSlot,
		req.PricePerSlot,
		req.IconURL,
		req.Active,
		time.Now(),
		id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	return campaign, nil
}

// ReserveSlots atomically increments the booked-slot count for a
// campaign, failing when fewer than the requested slots remain.
func (r *CampaignRepository) ReserveSlots(tx *sql.Tx, campaignID, slots int) error {
	result, err := tx.Exec(`
		UPDATE campaigns
		SET slots_booked = slots_booked + $1, updated_at = $2
		WHERE id = $3 AND active = TRUE AND total_slots - slots_booked >= $1`,
		slots, time.Now(), campaignID,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve slots: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check slot reservation: %w", err)
	}
	if affected == 0 {
		return models.ErrInsufficientSlots
	}

	return nil
}

// ReleaseSlots returns previously reserved slots to a campaign
func (r *CampaignRepository) ReleaseSlots(tx *sql.Tx, campaignID, slots int) error {
	_, err := tx.Exec(`
		UPDATE campaigns
		SET slots_booked = GREATEST(slots_booked - $1, 0), updated_at = $2
		WHERE id = $3`,
		slots, time.Now(), campaignID,
	)
	if err != nil {
		return fmt.Errorf("failed to release slots: %w", err)
	}
	return nil
}

// Delete removes a campaign
func (r *CampaignRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check campaign deletion: %w", err)
	}
	if affected == 0 {
		return models.ErrCampaignNotFound
	}

	return nil
}
