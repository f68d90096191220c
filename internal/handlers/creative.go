package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/sessions"

	"southcoast-promotion/internal/middleware"
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/services"
)

// CreativeHandler handles creative file upload, listing and removal
type CreativeHandler struct {
	bookings *services.BookingService
	creative *services.CreativeService
	store    sessions.Store
	maxBytes int64
}

// NewCreativeHandler creates a new creative file handler
func NewCreativeHandler(bookings *services.BookingService, creative *services.CreativeService, store sessions.Store, maxFileSize int64, maxFiles int) *CreativeHandler {
	return &CreativeHandler{
		bookings: bookings,
		creative: creative,
		store:    store,
		maxBytes: maxFileSize*int64(maxFiles) + 1024*1024,
	}
}

type uploadResponse struct {
	Files      []*models.UploadedFile `json:"files"`
	Rejections []models.FileRejection `json:"rejections,omitempty"`
}

// UploadFiles accepts a multipart batch of creative files, validates
// it and processes the accepted files one at a time. Individual
// failures do not abort the batch.
func (h *CreativeHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		respondError(w, http.StatusBadRequest, "no files in request")
		return
	}

	var uploads []services.FileUpload
	for _, header := range fileHeaders {
		part, err := header.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}

		uploads = append(uploads, services.FileUpload{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	accepted, rejections, err := h.creative.SelectFiles(r.Context(), booking.ID, uploads)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.creative.ProcessBatch(r.Context(), booking.ID, accepted, nil); err != nil {
		if errors.Is(err, models.ErrSubmissionInFlight) {
			respondServiceError(w, err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to process uploads")
		return
	}

	if _, err := h.bookings.ConfirmIfReady(booking.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	h.advanceSessionPhase(w, r)

	files := make([]*models.UploadedFile, 0, len(accepted))
	for _, entry := range accepted {
		files = append(files, entry.File)
	}
	respondJSON(w, http.StatusOK, uploadResponse{Files: files, Rejections: rejections})
}

type presignRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// PresignUpload hands the client a direct-to-storage upload URL for a
// single creative file, bypassing the API server for the content.
func (h *CreativeHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	var req presignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	file, uploadURL, err := h.creative.PresignUpload(r.Context(), booking.ID, req.Name, req.ContentType, req.Size)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"file":       file,
		"upload_url": uploadURL,
	})
}

// ConfirmUpload completes a presigned upload once its content is in
// storage, then confirms the booking when it is ready.
func (h *CreativeHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	fileID := idStringParam(r, "fileID")
	if fileID == "" {
		respondError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	file, err := h.creative.ConfirmDirectUpload(r.Context(), booking.ID, fileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if _, err := h.bookings.ConfirmIfReady(booking.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	h.advanceSessionPhase(w, r)
	respondJSON(w, http.StatusOK, file)
}

// ListFiles returns the creative files recorded for a booking
func (h *CreativeHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	files, err := h.creative.ListFiles(booking.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if files == nil {
		files = []*models.UploadedFile{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// DeleteFile removes a creative file from a booking
func (h *CreativeHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	fileID := idStringParam(r, "fileID")
	if fileID == "" {
		respondError(w, http.StatusBadRequest, "invalid file ID")
		return
	}

	if err := h.creative.RemoveFile(r.Context(), booking.ID, fileID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CancelUpload stops an in-flight upload batch for a booking
func (h *CreativeHandler) CancelUpload(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.ownedBooking(w, r)
	if !ok {
		return
	}

	h.creative.Cancel(booking.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// advanceSessionPhase completes the session flow once creative
// material is in. Best effort.
func (h *CreativeHandler) advanceSessionPhase(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err != nil {
		return
	}

	cart := getCartFromSession(session)
	if cart.CurrentPhase() != models.PhaseCreativePending {
		return
	}
	if err := cart.Advance(models.PhaseConfirmed); err != nil {
		return
	}
	saveCartToSession(session, cart)
	_ = session.Save(r, w)
}

func (h *CreativeHandler) ownedBooking(w http.ResponseWriter, r *http.Request) (*models.Booking, bool) {
	user := middleware.UserFromContext(r.Context())

	bookingID, err := idParam(r, "bookingID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking ID")
		return nil, false
	}

	booking, err := h.bookings.GetForUser(bookingID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return booking, true
}
