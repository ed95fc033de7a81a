package auctionapi

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/veraison/go-cose"
)

// SigningAlgorithm is the COSE algorithm used for transcript signatures (ECDSA P-256 with SHA-256).
var SigningAlgorithm = cose.AlgorithmES256

// SignTranscript produces a tagged COSE_Sign1 message whose payload is the
// canonical CBOR transcript.
func SignTranscript(signer crypto.Signer, t *Transcript) (SignedTranscript, error) {
	if signer == nil {
		return nil, fmt.Errorf("transcript signer is nil")
	}

	payload, err := t.EncodeCBOR()
	if err != nil {
		return nil, err
	}

	coseSigner, err := cose.NewSigner(SigningAlgorithm, signer)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(SigningAlgorithm)
	msg.Headers.Protected[cose.HeaderLabelContentType] = "application/cbor"
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, coseSigner); err != nil {
		return nil, fmt.Errorf("sign transcript: %w", err)
	}

	data, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("marshal COSE_Sign1: %w", err)
	}
	return SignedTranscript(data), nil
}

// VerifyTranscript checks the COSE_Sign1 signature with publicKey and returns the decoded transcript.
func VerifyTranscript(signed SignedTranscript, publicKey *ecdsa.PublicKey) (*Transcript, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("verification key is nil")
	}

	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(signed); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1: %w", err)
	}

	verifier, err := cose.NewVerifier(SigningAlgorithm, publicKey)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("COSE signature verification failed: %w", err)
	}

	return DecodeTranscriptCBOR(msg.Payload)
}

// ExtractTranscript decodes the payload of a signed transcript without checking the signature.
func ExtractTranscript(signed SignedTranscript) (*Transcript, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(signed); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1: %w", err)
	}
	return DecodeTranscriptCBOR(msg.Payload)
}
