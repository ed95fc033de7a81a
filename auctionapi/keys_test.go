package auctionapi

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestKeyManager_PEMRoundTrip(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)

	privatePEM, err := km.PrivateKeyPEM()
	assert.NoError(t, err)
	publicPEM, err := km.PublicKeyPEM()
	assert.NoError(t, err)

	loaded, err := LoadKeyManager([]byte(privatePEM))
	assert.NoError(t, err)
	check.True(t, km.PublicKey.Equal(loaded.PublicKey))

	pub, err := ParsePublicKeyPEM([]byte(publicPEM))
	assert.NoError(t, err)
	check.True(t, km.PublicKey.Equal(pub))

	signed, err := loaded.Sign(testTranscript(t))
	assert.NoError(t, err)
	_, err = VerifyTranscript(signed, pub)
	check.NoError(t, err)
}

func TestLoadKeyManager_SEC1(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	assert.NoError(t, err)

	km, err := LoadKeyManager(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
	assert.NoError(t, err)
	check.True(t, key.PublicKey.Equal(km.PublicKey))
}

func TestLoadKeyManager_Rejects(t *testing.T) {
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	assert.NoError(t, err)
	p384DER, err := x509.MarshalPKCS8PrivateKey(p384)
	assert.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
	}{
		{"not pem", []byte("hello")},
		{"wrong block type", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}})},
		{"garbage pkcs8", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}})},
		{"wrong curve", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: p384DER})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKeyManager(tt.input)
			check.Error(t, err)
		})
	}
}

func TestParsePublicKeyPEM_Rejects(t *testing.T) {
	_, err := ParsePublicKeyPEM([]byte("nope"))
	check.Error(t, err)

	_, err = ParsePublicKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: []byte{1, 2}}))
	check.Error(t, err)
}
