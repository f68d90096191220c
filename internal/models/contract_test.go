package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractStageTransitions(t *testing.T) {
	assert.True(t, StageReview.CanTransition(StageSign))
	assert.False(t, StageReview.CanTransition(StageComplete), "cannot complete without signing")

	assert.True(t, StageSign.CanTransition(StageComplete))
	assert.True(t, StageSign.CanTransition(StageReview), "signer may return to the terms")

	assert.False(t, StageComplete.CanTransition(StageReview))
	assert.False(t, StageComplete.CanTransition(StageSign))
}

func TestContractSignatureValidate(t *testing.T) {
	sig := &ContractSignature{
		SignatureData: "data:image/png;base64,iVBOR",
		SignerName:    "Jordan Smith",
	}
	assert.NoError(t, sig.Validate())
}

func TestContractSignatureRequiresDrawnSignature(t *testing.T) {
	sig := &ContractSignature{SignerName: "Jordan Smith"}
	assert.Error(t, sig.Validate())

	sig.SignatureData = "   "
	assert.Error(t, sig.Validate())
}

func TestContractSignatureRequiresSignerName(t *testing.T) {
	sig := &ContractSignature{SignatureData: "data:image/png;base64,iVBOR"}
	assert.Error(t, sig.Validate())
}
