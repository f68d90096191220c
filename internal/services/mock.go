package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/repositories"
)

// In-memory store implementations backing service tests.

// MockCampaignStore is an in-memory CampaignStore
type MockCampaignStore struct {
	mu        sync.Mutex
	campaigns map[int]*models.Campaign
	nextID    int
}

// NewMockCampaignStore creates an empty in-memory campaign store
func NewMockCampaignStore() *MockCampaignStore {
	return &MockCampaignStore{campaigns: make(map[int]*models.Campaign), nextID: 1}
}

func (m *MockCampaignStore) Create(req *models.CampaignCreateRequest) (*models.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	campaign := &models.Campaign{
		ID:             m.nextID,
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		RunDate:        req.RunDate,
		RunTime:        req.RunTime,
		TotalSlots:     req.TotalSlots,
		AdvertsPerSlot: req.AdvertsPerSlot,
		PricePerSlot:   req.PricePerSlot,
		IconURL:        req.IconURL,
		Active:         true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.campaigns[campaign.ID] = campaign
	m.nextID++
	return campaign, nil
}

func (m *MockCampaignStore) GetByID(id int) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	campaign, ok := m.campaigns[id]
	if !ok {
		return nil, models.ErrCampaignNotFound
	}
	copied := *campaign
	return &copied, nil
}

func (m *MockCampaignStore) List(activeOnly bool) ([]*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Campaign
	for id := 1; id < m.nextID; id++ {
		campaign, ok := m.campaigns[id]
		if !ok {
			continue
		}
		if activeOnly && !campaign.Active {
			continue
		}
		copied := *campaign
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockCampaignStore) Update(id int, req *models.CampaignUpdateRequest) (*models.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	campaign, ok := m.campaigns[id]
	if !ok {
		return nil, models.ErrCampaignNotFound
	}
	campaign.Name = req.Name
	campaign.Description = req.Description
	campaign.Location = req.Location
	campaign.RunDate = req.RunDate
	campaign.RunTime = req.RunTime
	campaign.TotalSlots = req.TotalSlots
	campaign.AdvertsPerSlot = req.AdvertsPerSlot
	campaign.PricePerSlot = req.PricePerSlot
	campaign.IconURL = req.IconURL
	campaign.Active = req.Active
	campaign.UpdatedAt = time.Now()
	copied := *campaign
	return &copied, nil
}

func (m *MockCampaignStore) Delete(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[id]; !ok {
		return models.ErrCampaignNotFound
	}
	delete(m.campaigns, id)
	return nil
}

// MockBookingStore is an in-memory BookingStore
type MockBookingStore struct {
	mu       sync.Mutex
	bookings map[int]*models.Booking
	nextID   int

	CreateErr error // injected failure
}

// NewMockBookingStore creates an empty in-memory booking store
func NewMockBookingStore() *MockBookingStore {
	return &MockBookingStore{bookings: make(map[int]*models.Booking), nextID: 1}
}

func (m *MockBookingStore) Create(req *models.BookingCreateRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	booking := &models.Booking{
		ID:              m.nextID,
		BookingNumber:   models.GenerateBookingNumber(),
		UserID:          req.UserID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerCompany: req.CustomerCompany,
		Subtotal:        req.Subtotal,
		DiscountAmount:  req.DiscountAmount,
		VAT:             req.VAT,
		TotalAmount:     req.TotalAmount,
		Status:          models.BookingPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	for i, item := range req.Items {
		booking.Items = append(booking.Items, models.BookingItem{
			ID:            i + 1,
			BookingID:     booking.ID,
			CampaignID:    item.CampaignID,
			CampaignName:  item.CampaignName,
			SlotsRequired: item.SlotsRequired,
			PricePerSlot:  item.PricePerSlot,
			TotalPrice:    item.TotalPrice,
			CreatedAt:     time.Now(),
		})
	}
	m.bookings[booking.ID] = booking
	m.nextID++
	copied := *booking
	return &copied, nil
}

func (m *MockBookingStore) GetByID(id int) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *MockBookingStore) GetByBookingNumber(bookingNumber string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, booking := range m.bookings {
		if booking.BookingNumber == bookingNumber {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, models.ErrBookingNotFound
}

func (m *MockBookingStore) Search(filters repositories.BookingSearchFilters) ([]*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for id := m.nextID - 1; id >= 1; id-- {
		booking, ok := m.bookings[id]
		if !ok {
			continue
		}
		if filters.UserID > 0 && booking.UserID != filters.UserID {
			continue
		}
		if filters.Status != "" && booking.Status != filters.Status {
			continue
		}
		copied := *booking
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockBookingStore) UpdateStatus(id int, status models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return nil
}

func (m *MockBookingStore) SaveContractSignature(id int, sig *models.ContractSignature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	booking.ContractSigned = true
	booking.SignatureData = sig.SignatureData
	booking.SignerName = sig.SignerName
	booking.SignerDate = sig.SignerDate
	booking.ContractText = sig.ContractText
	booking.UpdatedAt = time.Now()
	return nil
}

func (m *MockBookingStore) SetCreativeUploaded(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	booking.CreativeUploaded = true
	booking.UpdatedAt = time.Now()
	return nil
}

// Seed inserts a booking directly, for test setup
func (m *MockBookingStore) Seed(booking *models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.ID == 0 {
		booking.ID = m.nextID
	}
	if booking.ID >= m.nextID {
		m.nextID = booking.ID + 1
	}
	m.bookings[booking.ID] = booking
}

// MockCreativeStore is an in-memory CreativeStore
type MockCreativeStore struct {
	mu    sync.Mutex
	order []string
	files map[string]*models.UploadedFile

	SaveErr error // injected failure
}

// NewMockCreativeStore creates an empty in-memory creative store
func NewMockCreativeStore() *MockCreativeStore {
	return &MockCreativeStore{files: make(map[string]*models.UploadedFile)}
}

func (m *MockCreativeStore) Save(file *models.UploadedFile) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[file.ID]; !ok {
		m.order = append(m.order, file.ID)
	}
	copied := *file
	m.files[file.ID] = &copied
	return nil
}

func (m *MockCreativeStore) ListByBooking(bookingID int) ([]*models.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.UploadedFile
	for _, id := range m.order {
		file := m.files[id]
		if file.BookingID != bookingID {
			continue
		}
		copied := *file
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockCreativeStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return models.ErrFileNotFound
	}
	delete(m.files, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockCreativeStore) GetByID(id string) (*models.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[id]
	if !ok {
		return nil, models.ErrFileNotFound
	}
	copied := *file
	return &copied, nil
}

// MockUserStore is an in-memory UserStore
type MockUserStore struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

// NewMockUserStore creates an empty in-memory user store
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[int]*models.User), nextID: 1}
}

func (m *MockUserStore) Create(req *models.UserCreateRequest, passwordHash string, role models.UserRole) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(req.Email)
	for _, existing := range m.users {
		if existing.Email == email {
			return nil, models.ErrDuplicateEntry
		}
	}
	user := &models.User{
		ID:           m.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		Phone:        req.Phone,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	m.nextID++
	copied := *user
	return &copied, nil
}

func (m *MockUserStore) GetByID(id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserStore) GetByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

// MockStorage is an in-memory StorageService with failure injection
type MockStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	FailKeys map[string]bool // keys whose Upload fails
	FailAll  bool
}

// NewMockStorage creates an empty in-memory storage service
func NewMockStorage() *MockStorage {
	return &MockStorage{
		objects:  make(map[string][]byte),
		FailKeys: make(map[string]bool),
	}
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	if m.FailAll || m.FailKeys[key] {
		return "", fmt.Errorf("simulated storage failure for %s", key)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()
	return m.GetURL(key), nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MockStorage) GetURL(key string) string {
	return "https://storage.test/" + key
}

func (m *MockStorage) GeneratePresignedURL(ctx context.Context, key string, contentType string, expiration time.Duration) (string, error) {
	return m.GetURL(key) + "?presigned=1", nil
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Object returns stored content, for assertions
func (m *MockStorage) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
