package models

import "time"

// FileStatus represents the upload state of a creative file
type FileStatus string

const (
	FileUploading FileStatus = "uploading"
	FileUploaded  FileStatus = "uploaded"  // simulated upload finished
	FileCompleted FileStatus = "completed" // stored in backing storage
	FileError     FileStatus = "error"
)

// IsTerminal returns true once a file can no longer change status
func (s FileStatus) IsTerminal() bool {
	return s == FileUploaded || s == FileCompleted || s == FileError
}

// UploadedFile represents one creative asset in an upload batch
type UploadedFile struct {
	ID          string     `json:"id" db:"id"`
	BookingID   int        `json:"booking_id" db:"booking_id"`
	Name        string     `json:"name" db:"file_name"`
	Size        int64      `json:"size" db:"file_size"`
	ContentType string     `json:"content_type" db:"content_type"`
	Preview     string     `json:"preview,omitempty"` // data URL, image files only
	Status      FileStatus `json:"status" db:"status"`
	Progress    int        `json:"progress"` // 0-100, monotonically non-decreasing
	Error       string     `json:"error,omitempty" db:"error_message"`
	StorageKey  string     `json:"-" db:"storage_key"`
	URL         string     `json:"url,omitempty" db:"url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// FileRejection reports why a selected file failed validation. Rejected
// files never enter the batch, so the reason travels separately.
type FileRejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
