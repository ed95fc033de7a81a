package validation

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/openbidding/auctionapi"
)

// ExtractCOSEPayload extracts the payload from a COSE_Sign1 message without
// verifying it. Both the tagged (tag 18) and untagged 4-element forms are accepted.
// COSE_Sign1 structure: [protected, unprotected, payload, signature]
func ExtractCOSEPayload(coseBytes []byte) ([]byte, error) {
	var raw cbor.RawMessage
	if err := cbor.Unmarshal(coseBytes, &raw); err != nil {
		return nil, fmt.Errorf("parse COSE message: %w", err)
	}

	var tagged cbor.RawTag
	if err := cbor.Unmarshal(raw, &tagged); err == nil {
		raw = tagged.Content
	}

	var coseArray []any
	if err := cbor.Unmarshal(raw, &coseArray); err != nil {
		return nil, fmt.Errorf("parse COSE array: %w", err)
	}

	if len(coseArray) != 4 {
		return nil, fmt.Errorf("invalid COSE_Sign1 structure: expected 4 elements, got %d", len(coseArray))
	}

	payload, ok := coseArray[2].([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid payload in COSE structure")
	}

	return payload, nil
}

// ValidateSignedTranscript verifies the COSE signature of a signed transcript with
// publicKey and audits its content.
//
// The content is audited even when the signature does not verify, so the result
// explains both. An error is returned only when no transcript can be decoded.
func ValidateSignedTranscript(signed auctionapi.SignedTranscript, publicKey *ecdsa.PublicKey) (*SignedTranscriptValidationResult, *auctionapi.Transcript, error) {
	result := &SignedTranscriptValidationResult{}

	transcript, verifyErr := auctionapi.VerifyTranscript(signed, publicKey)
	if verifyErr != nil {
		payload, err := ExtractCOSEPayload(signed)
		if err != nil {
			return nil, nil, fmt.Errorf("read signed transcript: %w", err)
		}
		transcript, err = auctionapi.DecodeTranscriptCBOR(payload)
		if err != nil {
			return nil, nil, err
		}
	}

	content, err := ValidateTranscript(transcript)
	if err != nil {
		return nil, nil, err
	}
	result.TranscriptValidationResult = *content

	if verifyErr != nil {
		result.SignatureValid = false
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signature validation failed: %v", verifyErr))
	} else {
		result.SignatureValid = true
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signature validation passed: %s", auctionapi.SigningAlgorithm))
	}

	return result, transcript, nil
}
