package models

import (
	"errors"
	"strings"
)

// ContractStage represents the step within the signature flow
type ContractStage string

const (
	StageReview   ContractStage = "review"
	StageSign     ContractStage = "sign"
	StageComplete ContractStage = "complete"
)

// CanTransition reports whether moving between two contract stages is
// allowed. The flow is strictly forward except sign -> review.
func (s ContractStage) CanTransition(to ContractStage) bool {
	switch s {
	case StageReview:
		return to == StageSign
	case StageSign:
		return to == StageReview || to == StageComplete
	default:
		return false
	}
}

// ContractSignature is the payload submitted when a customer signs
// their booking contract.
type ContractSignature struct {
	BookingID     int    `json:"booking_id"`
	SignatureData string `json:"signature_data"` // embedded image, data URL
	SignerName    string `json:"signer_name"`
	SignerDate    string `json:"signer_date"`
	ContractText  string `json:"contract_data"`
}

// Validate checks the signature payload before any persistence is
// attempted. Both the drawn signature and the typed name are required.
func (c *ContractSignature) Validate() error {
	if strings.TrimSpace(c.SignatureData) == "" {
		return errors.New("a signature is required before submitting")
	}
	if strings.TrimSpace(c.SignerName) == "" {
		return errors.New("signer name is required")
	}
	return nil
}
