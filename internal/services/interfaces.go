package services

import (
	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/repositories"
)

// CampaignStore is the campaign persistence the services depend on
type CampaignStore interface {
	Create(req *models.CampaignCreateRequest) (*models.Campaign, error)
	GetByID(id int) (*models.Campaign, error)
	List(activeOnly bool) ([]*models.Campaign, error)
	Update(id int, req *models.CampaignUpdateRequest) (*models.Campaign, error)
	Delete(id int) error
}

// BookingStore is the booking persistence the services depend on
type BookingStore interface {
	Create(req *models.BookingCreateRequest) (*models.Booking, error)
	GetByID(id int) (*models.Booking, error)
	GetByBookingNumber(bookingNumber string) (*models.Booking, error)
	Search(filters repositories.BookingSearchFilters) ([]*models.Booking, error)
	UpdateStatus(id int, status models.BookingStatus) error
	SaveContractSignature(id int, sig *models.ContractSignature) error
	SetCreativeUploaded(id int) error
}

// CreativeStore is the creative file persistence the services depend on
type CreativeStore interface {
	Save(file *models.UploadedFile) error
	ListByBooking(bookingID int) ([]*models.UploadedFile, error)
	Delete(id string) error
	GetByID(id string) (*models.UploadedFile, error)
}

// UserStore is the user persistence the services depend on
type UserStore interface {
	Create(req *models.UserCreateRequest, passwordHash string, role models.UserRole) (*models.User, error)
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
