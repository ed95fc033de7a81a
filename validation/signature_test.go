package validation

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/openbidding/auctionapi"
)

func signedTranscript(t *testing.T, transcript *auctionapi.Transcript) (auctionapi.SignedTranscript, *auctionapi.KeyManager) {
	t.Helper()
	km, err := auctionapi.NewKeyManager()
	assert.NoError(t, err)
	signed, err := km.Sign(transcript)
	assert.NoError(t, err)
	return signed, km
}

func TestValidateSignedTranscript_Valid(t *testing.T) {
	signed, km := signedTranscript(t, validTranscript())

	result, transcript, err := ValidateSignedTranscript(signed, km.PublicKey)
	assert.NoError(t, err)
	check.True(t, result.SignatureValid)
	check.True(t, result.IsValid())
	check.Equal(t, "run-1", transcript.ID)
	check.True(t, hasDetail(result.ValidationDetails, "Signature validation passed"))
}

func TestValidateSignedTranscript_WrongKey(t *testing.T) {
	signed, _ := signedTranscript(t, validTranscript())
	other, err := auctionapi.NewKeyManager()
	assert.NoError(t, err)

	result, transcript, err := ValidateSignedTranscript(signed, other.PublicKey)
	assert.NoError(t, err)
	check.False(t, result.SignatureValid)
	check.False(t, result.IsValid())
	check.True(t, result.TranscriptValidationResult.IsValid())
	check.NotNil(t, transcript)
	check.True(t, hasDetail(result.ValidationDetails, "Signature validation failed"))
}

func TestValidateSignedTranscript_SignedBadContent(t *testing.T) {
	transcript := validTranscript()
	transcript.Outcome.Winner = nil
	signed, km := signedTranscript(t, transcript)

	result, _, err := ValidateSignedTranscript(signed, km.PublicKey)
	assert.NoError(t, err)
	check.True(t, result.SignatureValid)
	check.False(t, result.OutcomeValid)
	check.False(t, result.IsValid())
}

func TestValidateSignedTranscript_Garbage(t *testing.T) {
	km, err := auctionapi.NewKeyManager()
	assert.NoError(t, err)

	_, _, err = ValidateSignedTranscript(auctionapi.SignedTranscript("garbage"), km.PublicKey)
	check.Error(t, err)
}

func TestExtractCOSEPayload(t *testing.T) {
	transcript := validTranscript()
	signed, _ := signedTranscript(t, transcript)
	expected, err := transcript.EncodeCBOR()
	assert.NoError(t, err)

	payload, err := ExtractCOSEPayload(signed)
	assert.NoError(t, err)
	check.Equal(t, expected, payload)

	untagged, err := cbor.Marshal([]any{[]byte{}, map[any]any{}, []byte("payload"), []byte("sig")})
	assert.NoError(t, err)
	payload, err = ExtractCOSEPayload(untagged)
	assert.NoError(t, err)
	check.Equal(t, []byte("payload"), payload)

	short, err := cbor.Marshal([]any{[]byte{}, []byte("payload")})
	assert.NoError(t, err)
	_, err = ExtractCOSEPayload(short)
	check.Error(t, err)
}
