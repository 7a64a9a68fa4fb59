package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// PassKey is a freshly generated Ed25519 signing key for home passes. Keys
// are never written to disk; a restart mints a new one and invalidates every
// outstanding pass.
type PassKey struct {
	KID string // "pass-" plus 128 random bits, published in the JWKS
	PEM []byte // PKCS8 private key
}

// GeneratePassKey returns a new Ed25519 key with a random key ID.
func GeneratePassKey() (PassKey, error) {
	pemKey, err := GenerateEd25519Key()
	if err != nil {
		return PassKey{}, err
	}
	suffix, err := GenerateToken(TokenSize128)
	if err != nil {
		return PassKey{}, fmt.Errorf("cryptox: failed to generate key id: %w", err)
	}
	return PassKey{KID: "pass-" + suffix, PEM: pemKey}, nil
}

// GenerateEd25519Key returns a new Ed25519 private key as PKCS8 PEM, the
// form jwtx.NewSignerEdDSA loads.
func GenerateEd25519Key() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
