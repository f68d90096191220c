package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"southcoast-promotion/internal/models"
)

// BookingRepository handles booking data operations
type BookingRepository struct {
	db        *sql.DB
	campaigns *CampaignRepository
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sql.DB, campaigns *CampaignRepository) *BookingRepository {
	return &BookingRepository{db: db, campaigns: campaigns}
}

// BookingSearchFilters represents filters for booking search
type BookingSearchFilters struct {
	UserID   int                  // Filter by customer
	Status   models.BookingStatus // Filter by status
	DateFrom *time.Time           // Bookings created from this date
	DateTo   *time.Time           // Bookings created before this date
	Limit    int                  // Number of results to return
	Offset   int                  // Number of results to skip
}

const bookingColumns = `id, booking_number, user_id, customer_name, customer_email, customer_phone, customer_company, subtotal, discount_amount, vat, total_amount, status, contract_signed, creative_uploaded, signature_data, signer_name, signer_date, contract_text, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.UserID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.CustomerCompany,
		&b.Subtotal,
		&b.DiscountAmount,
		&b.VAT,
		&b.TotalAmount,
		&b.Status,
		&b.ContractSigned,
		&b.CreativeUploaded,
		&b.SignatureData,
		&b.SignerName,
		&b.SignerDate,
		&b.ContractText,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create creates a booking with its line items, reserving campaign
// slots in the same transaction.
func (r *BookingRepository) Create(req *models.BookingCreateRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Generate unique booking number (retry if collision)
	bookingNumber := models.GenerateBookingNumber()
	for i := 0; i < 5; i++ {
		var exists bool
		err = tx.QueryRow("SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_number = $1)", bookingNumber).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check booking number uniqueness: %w", err)
		}
		if !exists {
			break
		}
		bookingNumber = models.GenerateBookingNumber()
	}

	query := `
		INSERT INTO bookings (booking_number, user_id, customer_name, customer_email, customer_phone, customer_company, subtotal, discount_amount, vat, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING ` + bookingColumns

	now := time.Now()
	booking, err := scanBooking(tx.QueryRow(
		query,
		bookingNumber,
		req.UserID,
		req.CustomerName,
		req.CustomerEmail,
		req.CustomerPhone,
		req.CustomerCompany,
		req.Subtotal,
		req.DiscountAmount,
		req.VAT,
		req.TotalAmount,
		models.BookingPending,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	for _, item := range req.Items {
		if err := r.campaigns.ReserveSlots(tx, item.CampaignID, item.SlotsRequired); err != nil {
			return nil, fmt.Errorf("campaign %d: %w", item.CampaignID, err)
		}

		bookingItem := models.BookingItem{
			BookingID:     booking.ID,
			CampaignID:    item.CampaignID,
			CampaignName:  item.CampaignName,
			SlotsRequired: item.SlotsRequired,
			PricePerSlot:  item.PricePerSlot,
			TotalPrice:    item.TotalPrice,
		}
		err = tx.QueryRow(`
			INSERT INTO booking_items (booking_id, campaign_id, campaign_name, slots_required, price_per_slot, total_price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at`,
			bookingItem.BookingID,
			bookingItem.CampaignID,
			bookingItem.CampaignName,
			bookingItem.SlotsRequired,
			bookingItem.PricePerSlot,
			bookingItem.TotalPrice,
			now,
		).Scan(&bookingItem.ID, &bookingItem.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create booking item: %w", err)
		}

		booking.Items = append(booking.Items, bookingItem)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking creation: %w", err)
	}

	return booking, nil
}

// GetByID retrieves a booking with its line items
func (r *BookingRepository) GetByID(id int) (*models.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	items, err := r.getItems(booking.ID)
	if err != nil {
		return nil, err
	}
	booking.Items = items

	return booking, nil
}

// GetByBookingNumber retrieves a booking by its public number
func (r *BookingRepository) GetByBookingNumber(bookingNumber string) (*models.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE booking_number = $1`, bookingNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	items, err := r.getItems(booking.ID)
	if err != nil {
		return nil, err
	}
	booking.Items = items

	return booking, nil
}

func (r *BookingRepository) getItems(bookingID int) ([]models.BookingItem, error) {
	rows, err := r.db.Query(`
		SELECT id, booking_id, campaign_id, campaign_name, slots_required, price_per_slot, total_price, created_at
		FROM booking_items
		WHERE booking_id = $1
		ORDER BY id`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking items: %w", err)
	}
	defer rows.Close()

	var items []models.BookingItem
	for rows.Next() {
		var item models.BookingItem
		err := rows.Scan(
			&item.ID,
			&item.BookingID,
			&item.CampaignID,
			&item.CampaignName,
			&item.SlotsRequired,
			&item.PricePerSlot,
			&item.TotalPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Search retrieves bookings matching the given filters
func (r *BookingRepository) Search(filters BookingSearchFilters) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []interface{}
	argNum := 1

	if filters.UserID > 0 {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, filters.UserID)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.DateFrom != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argNum)
		args = append(args, *filters.DateFrom)
		argNum++
	}
	if filters.DateTo != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argNum)
		args = append(args, *filters.DateTo)
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// UpdateStatus updates a booking's status
func (r *BookingRepository) UpdateStatus(id int, status models.BookingStatus) error {
	result, err := r.db.Exec(`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check booking update: %w", err)
	}
	if affected == 0 {
		return models.ErrBookingNotFound
	}

	return nil
}

// SaveContractSignature records the signed contract on a booking
func (r *BookingRepository) SaveContractSignature(id int, sig *models.ContractSignature) error {
	result, err := r.db.Exec(`
		UPDATE bookings
		SET contract_signed = TRUE, signature_data = $1, signer_name = $2, signer_date = $3, contract_text = $4, updated_at = $5
		WHERE id = $6`,
		sig.SignatureData, sig.SignerName, sig.SignerDate, sig.ContractText, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to save contract signature: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check contract update: %w", err)
	}
	if affected == 0 {
		return models.ErrBookingNotFound
	}

	return nil
}

// SetCreativeUploaded marks a booking as having received creative assets
func (r *BookingRepository) SetCreativeUploaded(id int) error {
	result, err := r.db.Exec(`UPDATE bookings SET creative_uploaded = TRUE, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark creative uploaded: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check booking update: %w", err)
	}
	if affected == 0 {
		return models.ErrBookingNotFound
	}

	return nil
}
