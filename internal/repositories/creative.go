package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"southcoast-promotion/internal/models"
)

// CreativeRepository handles creative file records
type CreativeRepository struct {
	db *sql.DB
}

// NewCreativeRepository creates a new creative repository
func NewCreativeRepository(db *sql.DB) *CreativeRepository {
	return &CreativeRepository{db: db}
}

// Save inserts or updates a creative file record. The ID is assigned at
// selection time, so the same row is upserted as the file moves through
// its statuses.
func (r *CreativeRepository) Save(file *models.UploadedFile) error {
	_, err := r.db.Exec(`
		INSERT INTO creative_files (id, booking_id, file_name, file_size, content_type, storage_key, url, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET storage_key = EXCLUDED.storage_key, url = EXCLUDED.url, status = EXCLUDED.status, error_message = EXCLUDED.error_message`,
		file.ID,
		file.BookingID,
		file.Name,
		file.Size,
		file.ContentType,
		file.StorageKey,
		file.URL,
		file.Status,
		file.Error,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save creative file: %w", err)
	}
	return nil
}

// ListByBooking retrieves creative file records for a booking
func (r *CreativeRepository) ListByBooking(bookingID int) ([]*models.UploadedFile, error) {
	rows, err := r.db.Query(`
		SELECT id, booking_id, file_name, file_size, content_type, storage_key, url, status, error_message, created_at
		FROM creative_files
		WHERE booking_id = $1
		ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creative files: %w", err)
	}
	defer rows.Close()

	var files []*models.UploadedFile
	for rows.Next() {
		file := &models.UploadedFile{}
		err := rows.Scan(
			&file.ID,
			&file.BookingID,
			&file.Name,
			&file.Size,
			&file.ContentType,
			&file.StorageKey,
			&file.URL,
			&file.Status,
			&file.Error,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creative file: %w", err)
		}
		if file.Status.IsTerminal() && file.Status != models.FileError {
			file.Progress = 100
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// Delete removes a creative file record
func (r *CreativeRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM creative_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete creative file: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check creative file deletion: %w", err)
	}
	if affected == 0 {
		return models.ErrFileNotFound
	}

	return nil
}

// GetByID retrieves a single creative file record
func (r *CreativeRepository) GetByID(id string) (*models.UploadedFile, error) {
	file := &models.UploadedFile{}
	err := r.db.QueryRow(`
		SELECT id, booking_id, file_name, file_size, content_type, storage_key, url, status, error_message, created_at
		FROM creative_files
		WHERE id = $1`, id).Scan(
		&file.ID,
		&file.BookingID,
		&file.Name,
		&file.Size,
		&file.ContentType,
		&file.StorageKey,
		&file.URL,
		&file.Status,
		&file.Error,
		&file.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get creative file: %w", err)
	}

	return file, nil
}
