package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	appconfig "southcoast-promotion/internal/config"
	"southcoast-promotion/internal/models"
)

// FileUpload is a creative file as received from the client
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// AcceptedFile pairs a registered file record with its content,
// carried until the batch is processed.
type AcceptedFile struct {
	File *models.UploadedFile
	Data []byte
}

// ProgressFunc receives a snapshot of a file each time its status or
// progress changes.
type ProgressFunc func(file *models.UploadedFile)

// CreativeService manages creative file batches for bookings:
// validation, previews, upload processing and per-file status.
type CreativeService struct {
	repo     CreativeStore
	bookings BookingStore
	storage  StorageService
	config   appconfig.UploadConfig
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[int]context.CancelFunc
}

// NewCreativeService creates a new creative file service
func NewCreativeService(
	repo CreativeStore,
	bookings BookingStore,
	storage StorageService,
	cfg appconfig.UploadConfig,
	logger *slog.Logger,
) *CreativeService {
	return &CreativeService{
		repo:     repo,
		bookings: bookings,
		storage:  storage,
		config:   cfg,
		logger:   logger,
		inflight: make(map[int]context.CancelFunc),
	}
}

// SelectFiles validates a new batch of files for a booking. When the
// batch would push the booking over the file limit the whole batch is
// rejected and existing files are left untouched. Otherwise each file
// is validated individually: failures are reported as rejections,
// passes are registered in the uploading state with a preview for
// image files.
func (s *CreativeService) SelectFiles(ctx context.Context, bookingID int, uploads []FileUpload) ([]AcceptedFile, []models.FileRejection, error) {
	existing, err := s.repo.ListByBooking(bookingID)
	if err != nil {
		return nil, nil, err
	}

	if len(existing)+len(uploads) > s.config.MaxFiles {
		return nil, nil, fmt.Errorf("%w: %d existing and %d selected exceeds limit of %d",
			models.ErrTooManyFiles, len(existing), len(uploads), s.config.MaxFiles)
	}

	var accepted []AcceptedFile
	var rejections []models.FileRejection

	for _, upload := range uploads {
		if reason := s.validate(upload); reason != "" {
			rejections = append(rejections, models.FileRejection{Name: upload.Name, Reason: reason})
			continue
		}

		file := &models.UploadedFile{
			ID:          uuid.New().String(),
			BookingID:   bookingID,
			Name:        upload.Name,
			Size:        upload.Size,
			ContentType: upload.ContentType,
			Status:      models.FileUploading,
			CreatedAt:   time.Now(),
		}

		if s.config.GeneratePreviews && strings.HasPrefix(upload.ContentType, "image/") {
			if preview, err := generatePreview(upload.Data); err == nil {
				file.Preview = preview
			} else {
				s.logger.Warn("preview generation failed", "file", upload.Name, "error", err)
			}
		}

		if err := s.repo.Save(file); err != nil {
			return nil, nil, err
		}
		accepted = append(accepted, AcceptedFile{File: file, Data: upload.Data})
	}

	return accepted, rejections, nil
}

// validate returns a human-readable rejection reason, or "" when the
// file is acceptable.
func (s *CreativeService) validate(upload FileUpload) string {
	if upload.Name == "" {
		return "file name is required"
	}
	if upload.Size <= 0 {
		return "file is empty"
	}
	if upload.Size > s.config.MaxFileSize {
		return fmt.Sprintf("file exceeds the %dMB size limit", s.config.MaxFileSize/(1024*1024))
	}
	if !matchesAcceptedType(upload.ContentType, s.config.AcceptedTypes) {
		return fmt.Sprintf("file type %s is not accepted", upload.ContentType)
	}
	return ""
}

// matchesAcceptedType checks a MIME type against accepted patterns.
// A pattern of "image/*" matches any image subtype.
func matchesAcceptedType(contentType string, accepted []string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, pattern := range accepted {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == contentType || pattern == "*/*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(contentType, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// generatePreview builds a small thumbnail data URL for an image file
func generatePreview(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(img, 160, 160, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ProcessBatch uploads a batch of accepted files one at a time. Only
// one submission may run per booking; a second call while the first is
// in flight returns ErrSubmissionInFlight. A failed file is marked
// with an error and processing continues with the next one.
func (s *CreativeService) ProcessBatch(ctx context.Context, bookingID int, batch []AcceptedFile, onProgress ProgressFunc) error {
	s.mu.Lock()
	if _, running := s.inflight[bookingID]; running {
		s.mu.Unlock()
		return models.ErrSubmissionInFlight
	}
	ctx, cancel := context.WithCancel(ctx)
	s.inflight[bookingID] = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.inflight, bookingID)
		s.mu.Unlock()
	}()

	for _, entry := range batch {
		if err := ctx.Err(); err != nil {
			s.fail(entry.File, "upload cancelled", onProgress)
			continue
		}

		if s.config.SimulateUploads {
			s.simulateUpload(ctx, entry.File, onProgress)
		} else {
			s.uploadToStorage(ctx, entry.File, entry.Data, onProgress)
		}
	}

	return s.finishBatch(bookingID)
}

// Cancel stops an in-flight submission for a booking. Files not yet
// processed are marked as errors by the running batch.
func (s *CreativeService) Cancel(bookingID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.inflight[bookingID]; ok {
		cancel()
	}
}

// simulateUpload advances a file's progress on a timer without
// touching storage. Used in development and demos.
func (s *CreativeService) simulateUpload(ctx context.Context, file *models.UploadedFile, onProgress ProgressFunc) {
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	for file.Progress < 100 {
		select {
		case <-ctx.Done():
			s.fail(file, "upload cancelled", onProgress)
			return
		case <-ticker.C:
			file.Progress += 5 + rand.Intn(16)
			if file.Progress > 100 {
				file.Progress = 100
			}
			notify(onProgress, file)
		}
	}

	file.Status = models.FileUploaded
	if err := s.repo.Save(file); err != nil {
		s.logger.Error("failed to record simulated upload", "file", file.ID, "error", err)
	}
	notify(onProgress, file)
}

// uploadToStorage sends a file to the configured storage backend
func (s *CreativeService) uploadToStorage(ctx context.Context, file *models.UploadedFile, data []byte, onProgress ProgressFunc) {
	if data == nil {
		s.fail(file, "file content missing", onProgress)
		return
	}

	key := storageKey(file)

	url, err := s.storage.Upload(ctx, key, bytes.NewReader(data), file.ContentType, file.Size)
	if err != nil {
		s.logger.Error("creative upload failed", "booking_id", file.BookingID, "file", file.Name, "error", err)
		s.fail(file, "upload failed, please try again", onProgress)
		return
	}

	file.StorageKey = key
	file.URL = url
	file.Progress = 100
	file.Status = models.FileCompleted
	if err := s.repo.Save(file); err != nil {
		s.logger.Error("failed to record completed upload", "file", file.ID, "error", err)
	}
	notify(onProgress, file)
}

// fail marks a file as errored and notifies the listener
func (s *CreativeService) fail(file *models.UploadedFile, reason string, onProgress ProgressFunc) {
	file.Status = models.FileError
	file.Error = reason
	if err := s.repo.Save(file); err != nil {
		s.logger.Error("failed to record upload error", "file", file.ID, "error", err)
	}
	notify(onProgress, file)
}

// finishBatch marks the booking once at least one file made it through
func (s *CreativeService) finishBatch(bookingID int) error {
	files, err := s.repo.ListByBooking(bookingID)
	if err != nil {
		return err
	}

	succeeded := 0
	for _, file := range files {
		if file.Status == models.FileUploaded || file.Status == models.FileCompleted {
			succeeded++
		}
	}

	if succeeded > 0 {
		if err := s.bookings.SetCreativeUploaded(bookingID); err != nil {
			return err
		}
	}

	return nil
}

// presignExpiry bounds how long a direct-upload URL stays valid
const presignExpiry = 15 * time.Minute

// PresignUpload validates a file's metadata and returns a URL the
// client can PUT the content to directly, for assets too large to
// proxy through the API. The file is registered in the uploading
// state; ConfirmDirectUpload completes it once the content arrives.
func (s *CreativeService) PresignUpload(ctx context.Context, bookingID int, name, contentType string, size int64) (*models.UploadedFile, string, error) {
	existing, err := s.repo.ListByBooking(bookingID)
	if err != nil {
		return nil, "", err
	}
	if len(existing) >= s.config.MaxFiles {
		return nil, "", fmt.Errorf("%w: booking already has %d of %d files",
			models.ErrTooManyFiles, len(existing), s.config.MaxFiles)
	}

	if reason := s.validate(FileUpload{Name: name, Size: size, ContentType: contentType}); reason != "" {
		return nil, "", fmt.Errorf("%w: %s", models.ErrInvalidInput, reason)
	}

	file := &models.UploadedFile{
		ID:          uuid.New().String(),
		BookingID:   bookingID,
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Status:      models.FileUploading,
		CreatedAt:   time.Now(),
	}
	file.StorageKey = storageKey(file)

	uploadURL, err := s.storage.GeneratePresignedURL(ctx, file.StorageKey, contentType, presignExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("failed to presign upload: %w", err)
	}

	if err := s.repo.Save(file); err != nil {
		return nil, "", err
	}
	return file, uploadURL, nil
}

// ConfirmDirectUpload completes a presigned upload after checking the
// content actually arrived in storage. Confirming a file that is
// already terminal is a no-op.
func (s *CreativeService) ConfirmDirectUpload(ctx context.Context, bookingID int, fileID string) (*models.UploadedFile, error) {
	file, err := s.repo.GetByID(fileID)
	if err != nil {
		return nil, err
	}
	if file.BookingID != bookingID {
		return nil, models.ErrFileNotFound
	}
	if file.Status.IsTerminal() {
		return file, nil
	}

	ok, err := s.storage.Exists(ctx, file.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to verify upload: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: file content has not arrived in storage", models.ErrInvalidInput)
	}

	file.URL = s.storage.GetURL(file.StorageKey)
	file.Progress = 100
	file.Status = models.FileCompleted
	if err := s.repo.Save(file); err != nil {
		return nil, err
	}

	if err := s.bookings.SetCreativeUploaded(bookingID); err != nil {
		return nil, err
	}
	return file, nil
}

// ListFiles returns the creative files recorded for a booking
func (s *CreativeService) ListFiles(bookingID int) ([]*models.UploadedFile, error) {
	return s.repo.ListByBooking(bookingID)
}

// RemoveFile deletes a creative file from storage and the database
func (s *CreativeService) RemoveFile(ctx context.Context, bookingID int, fileID string) error {
	file, err := s.repo.GetByID(fileID)
	if err != nil {
		return err
	}
	if file.BookingID != bookingID {
		return models.ErrFileNotFound
	}

	if file.StorageKey != "" {
		if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
			s.logger.Warn("failed to delete creative from storage", "key", file.StorageKey, "error", err)
		}
	}

	return s.repo.Delete(fileID)
}

// storageKey shapes the object key for a creative file
func storageKey(file *models.UploadedFile) string {
	return fmt.Sprintf("creatives/%d/%s-%s", file.BookingID, file.ID, sanitizeFileName(file.Name))
}

// sanitizeFileName strips path separators and whitespace from a
// client-supplied file name before it becomes part of a storage key.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}

func notify(onProgress ProgressFunc, file *models.UploadedFile) {
	if onProgress != nil {
		onProgress(file)
	}
}
