package models

import "errors"

// Common errors used throughout the application
var (
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrFileNotFound           = errors.New("file not found")
	ErrUnauthorized           = errors.New("unauthorized access")
	ErrInvalidInput           = errors.New("invalid input")
	ErrDuplicateEntry         = errors.New("duplicate entry")
	ErrInsufficientSlots      = errors.New("insufficient slots available")
	ErrEmptyCart              = errors.New("your cart is empty")
	ErrInvalidPhaseTransition = errors.New("invalid booking phase transition")
	ErrTooManyFiles           = errors.New("too many files selected")
	ErrSubmissionInFlight     = errors.New("a submission is already in progress")
)
