package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"southcoast-promotion/internal/models"
)

func newCreativeFixture(t *testing.T) (*CreativeService, *MockCreativeStore, *MockBookingStore, *MockStorage) {
	t.Helper()
	repo := NewMockCreativeStore()
	bookings := NewMockBookingStore()
	bookings.Seed(&models.Booking{ID: 1, BookingNumber: "SCP-20260301-000001", Status: models.BookingPending})
	storage := NewMockStorage()
	svc := NewCreativeService(repo, bookings, storage, testUploadConfig(), testLogger())
	return svc, repo, bookings, storage
}

func upload(name, contentType string, size int) FileUpload {
	return FileUpload{
		Name:        name,
		Size:        int64(size),
		ContentType: contentType,
		Data:        bytes.Repeat([]byte{0xAB}, size),
	}
}

func TestSelectFilesAcceptsValidBatch(t *testing.T) {
	svc, _, _, _ := newCreativeFixture(t)

	accepted, rejections, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("banner.png", "image/png", 512),
		upload("spot.mp4", "video/mp4", 1024),
	})

	require.NoError(t, err)
	assert.Empty(t, rejections)
	require.Len(t, accepted, 2)
	for _, entry := range accepted {
		assert.NotEmpty(t, entry.File.ID)
		assert.Equal(t, models.FileUploading, entry.File.Status)
		assert.Equal(t, 0, entry.File.Progress)
	}
}

func TestSelectFilesSizeBoundary(t *testing.T) {
	svc, _, _, _ := newCreativeFixture(t)

	// Exactly at the limit passes, one byte over is rejected
	accepted, rejections, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("at-limit.png", "image/png", 1024),
		upload("over-limit.png", "image/png", 1025),
	})

	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "at-limit.png", accepted[0].File.Name)
	require.Len(t, rejections, 1)
	assert.Equal(t, "over-limit.png", rejections[0].Name)
	assert.Contains(t, rejections[0].Reason, "size limit")
}

func TestSelectFilesWildcardContentType(t *testing.T) {
	svc, _, _, _ := newCreativeFixture(t)

	accepted, rejections, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("photo.webp", "image/webp", 100), // matches image/*
		upload("doc.pdf", "application/pdf", 100),
		upload("clip.avi", "video/x-msvideo", 100), // only video/mp4 is allowed
	})

	require.NoError(t, err)
	assert.Len(t, accepted, 2)
	require.Len(t, rejections, 1)
	assert.Equal(t, "clip.avi", rejections[0].Name)
}

func TestSelectFilesBatchOverflowRejectsWholeBatch(t *testing.T) {
	svc, repo, _, _ := newCreativeFixture(t)

	// Fill to 9 of the 10-file limit
	for i := 0; i < 9; i++ {
		_, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
			upload(fmt.Sprintf("existing-%d.png", i), "image/png", 100),
		})
		require.NoError(t, err)
	}

	// A 2-file batch would reach 11: reject it entirely, even though
	// one file would fit.
	accepted, rejections, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("new-1.png", "image/png", 100),
		upload("new-2.png", "image/png", 100),
	})

	assert.ErrorIs(t, err, models.ErrTooManyFiles)
	assert.Nil(t, accepted)
	assert.Nil(t, rejections)

	files, err := repo.ListByBooking(1)
	require.NoError(t, err)
	assert.Len(t, files, 9, "existing files must be untouched")
}

func TestProcessBatchStoresFiles(t *testing.T) {
	svc, repo, bookings, storage := newCreativeFixture(t)

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("a.png", "image/png", 100),
		upload("b.png", "image/png", 200),
	})
	require.NoError(t, err)

	require.NoError(t, svc.ProcessBatch(context.Background(), 1, accepted, nil))

	files, err := repo.ListByBooking(1)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, file := range files {
		assert.Equal(t, models.FileCompleted, file.Status)
		assert.Equal(t, 100, file.Progress)
		assert.NotEmpty(t, file.URL)
		_, stored := storage.Object(file.StorageKey)
		assert.True(t, stored)
	}

	booking, err := bookings.GetByID(1)
	require.NoError(t, err)
	assert.True(t, booking.CreativeUploaded)
}

func TestProcessBatchContinuesPastFailure(t *testing.T) {
	svc, repo, bookings, storage := newCreativeFixture(t)

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("ok-1.png", "image/png", 100),
		upload("broken.png", "image/png", 100),
		upload("ok-2.png", "image/png", 100),
	})
	require.NoError(t, err)
	require.Len(t, accepted, 3)

	failed := accepted[1].File
	storage.FailKeys[fmt.Sprintf("creatives/1/%s-%s", failed.ID, sanitizeFileName(failed.Name))] = true

	require.NoError(t, svc.ProcessBatch(context.Background(), 1, accepted, nil))

	files, err := repo.ListByBooking(1)
	require.NoError(t, err)
	require.Len(t, files, 3)

	statuses := map[models.FileStatus]int{}
	for _, file := range files {
		statuses[file.Status]++
		if file.Status == models.FileError {
			assert.NotEmpty(t, file.Error)
		}
	}
	assert.Equal(t, 2, statuses[models.FileCompleted])
	assert.Equal(t, 1, statuses[models.FileError])

	booking, err := bookings.GetByID(1)
	require.NoError(t, err)
	assert.True(t, booking.CreativeUploaded, "a partial batch still counts as creative received")
}

func TestProcessBatchAllFailedLeavesBookingUnmarked(t *testing.T) {
	svc, _, bookings, storage := newCreativeFixture(t)
	storage.FailAll = true

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("a.png", "image/png", 100),
	})
	require.NoError(t, err)

	require.NoError(t, svc.ProcessBatch(context.Background(), 1, accepted, nil))

	booking, err := bookings.GetByID(1)
	require.NoError(t, err)
	assert.False(t, booking.CreativeUploaded)
}

func TestProcessBatchSimulatedProgressIsMonotonic(t *testing.T) {
	cfg := testUploadConfig()
	cfg.SimulateUploads = true

	repo := NewMockCreativeStore()
	bookings := NewMockBookingStore()
	bookings.Seed(&models.Booking{ID: 1, BookingNumber: "SCP-20260301-000001", Status: models.BookingPending})
	svc := NewCreativeService(repo, bookings, NewMockStorage(), cfg, testLogger())

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("a.png", "image/png", 100),
	})
	require.NoError(t, err)

	var progress []int
	require.NoError(t, svc.ProcessBatch(context.Background(), 1, accepted, func(file *models.UploadedFile) {
		progress = append(progress, file.Progress)
	}))

	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1], "progress must never decrease")
	}
	assert.Equal(t, 100, progress[len(progress)-1])
	assert.Equal(t, models.FileUploaded, accepted[0].File.Status)
}

func TestProcessBatchCancelledContext(t *testing.T) {
	svc, repo, bookings, _ := newCreativeFixture(t)

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("a.png", "image/png", 100),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.ProcessBatch(ctx, 1, accepted, nil))

	files, err := repo.ListByBooking(1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, models.FileError, files[0].Status)

	booking, err := bookings.GetByID(1)
	require.NoError(t, err)
	assert.False(t, booking.CreativeUploaded)
}

func TestRemoveFile(t *testing.T) {
	svc, repo, _, storage := newCreativeFixture(t)

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("a.png", "image/png", 100),
	})
	require.NoError(t, err)
	require.NoError(t, svc.ProcessBatch(context.Background(), 1, accepted, nil))

	fileID := accepted[0].File.ID
	require.NoError(t, svc.RemoveFile(context.Background(), 1, fileID))

	_, err = repo.GetByID(fileID)
	assert.ErrorIs(t, err, models.ErrFileNotFound)
	_, stored := storage.Object(accepted[0].File.StorageKey)
	assert.False(t, stored)
}

func TestRemoveFileWrongBooking(t *testing.T) {
	svc, _, _, _ := newCreativeFixture(t)

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("a.png", "image/png", 100),
	})
	require.NoError(t, err)

	err = svc.RemoveFile(context.Background(), 99, accepted[0].File.ID)
	assert.ErrorIs(t, err, models.ErrFileNotFound)
}

func TestMatchesAcceptedType(t *testing.T) {
	accepted := []string{"image/*", "video/mp4", "application/pdf"}

	assert.True(t, matchesAcceptedType("image/png", accepted))
	assert.True(t, matchesAcceptedType("IMAGE/JPEG", accepted))
	assert.True(t, matchesAcceptedType("video/mp4", accepted))
	assert.False(t, matchesAcceptedType("video/quicktime", accepted))
	assert.False(t, matchesAcceptedType("text/html", accepted))
	assert.False(t, matchesAcceptedType("imagex/png", accepted))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "banner.png", sanitizeFileName("banner.png"))
	assert.Equal(t, "etc-passwd", sanitizeFileName("../../etc passwd"))
	assert.Equal(t, "report.pdf", sanitizeFileName(`C:\Users\me\report.pdf`))
}

func TestPresignUploadRegistersFile(t *testing.T) {
	svc, repo, _, _ := newCreativeFixture(t)

	file, uploadURL, err := svc.PresignUpload(context.Background(), 1, "showreel.mp4", "video/mp4", 1024)

	require.NoError(t, err)
	assert.Contains(t, uploadURL, file.StorageKey)
	assert.Equal(t, models.FileUploading, file.Status)
	assert.NotEmpty(t, file.StorageKey)

	files, err := repo.ListByBooking(1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, file.ID, files[0].ID)
}

func TestPresignUploadValidatesMetadata(t *testing.T) {
	svc, repo, _, _ := newCreativeFixture(t)

	_, _, err := svc.PresignUpload(context.Background(), 1, "huge.png", "image/png", 1025)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, _, err = svc.PresignUpload(context.Background(), 1, "malware.exe", "application/octet-stream", 100)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	files, err := repo.ListByBooking(1)
	require.NoError(t, err)
	assert.Empty(t, files, "rejected presigns must not register records")
}

func TestPresignUploadEnforcesFileLimit(t *testing.T) {
	svc, _, _, _ := newCreativeFixture(t)

	for i := 0; i < 10; i++ {
		_, _, err := svc.PresignUpload(context.Background(), 1, fmt.Sprintf("creative-%d.png", i), "image/png", 100)
		require.NoError(t, err)
	}

	_, _, err := svc.PresignUpload(context.Background(), 1, "one-too-many.png", "image/png", 100)
	assert.ErrorIs(t, err, models.ErrTooManyFiles)
}

func TestConfirmDirectUpload(t *testing.T) {
	svc, _, bookings, storage := newCreativeFixture(t)

	file, _, err := svc.PresignUpload(context.Background(), 1, "banner.png", "image/png", 3)
	require.NoError(t, err)

	// The client puts the content directly into storage
	_, err = storage.Upload(context.Background(), file.StorageKey, bytes.NewReader([]byte{1, 2, 3}), "image/png", 3)
	require.NoError(t, err)

	confirmed, err := svc.ConfirmDirectUpload(context.Background(), 1, file.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FileCompleted, confirmed.Status)
	assert.Equal(t, 100, confirmed.Progress)
	assert.NotEmpty(t, confirmed.URL)

	booking, err := bookings.GetByID(1)
	require.NoError(t, err)
	assert.True(t, booking.CreativeUploaded)
}

func TestConfirmDirectUploadMissingContent(t *testing.T) {
	svc, _, bookings, _ := newCreativeFixture(t)

	file, _, err := svc.PresignUpload(context.Background(), 1, "banner.png", "image/png", 3)
	require.NoError(t, err)

	_, err = svc.ConfirmDirectUpload(context.Background(), 1, file.ID)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	booking, err := bookings.GetByID(1)
	require.NoError(t, err)
	assert.False(t, booking.CreativeUploaded)
}

func TestConfirmDirectUploadWrongBooking(t *testing.T) {
	svc, _, _, _ := newCreativeFixture(t)

	file, _, err := svc.PresignUpload(context.Background(), 1, "banner.png", "image/png", 3)
	require.NoError(t, err)

	_, err = svc.ConfirmDirectUpload(context.Background(), 99, file.ID)
	assert.ErrorIs(t, err, models.ErrFileNotFound)
}

func TestListFilesKeepsFailureReason(t *testing.T) {
	svc, _, _, storage := newCreativeFixture(t)
	storage.FailAll = true

	accepted, _, err := svc.SelectFiles(context.Background(), 1, []FileUpload{
		upload("broken.png", "image/png", 100),
	})
	require.NoError(t, err)
	require.NoError(t, svc.ProcessBatch(context.Background(), 1, accepted, nil))

	// A later listing still reports why the file failed
	files, err := svc.ListFiles(1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, models.FileError, files[0].Status)
	assert.NotEmpty(t, files[0].Error)
}
