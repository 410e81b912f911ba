package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs session tokens with a single Ed25519 key. The key is either
// generated at startup (ephemeral mode) or loaded from a PKCS8 PEM file so
// sessions survive restarts.
type Signer struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewEphemeralSigner generates a fresh Ed25519 keypair. All sessions become
// invalid when the process restarts.
func NewEphemeralSigner() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate key: %w", err)
	}
	return &Signer{kid: fingerprintKID(pub), key: priv, pub: pub}, nil
}

// LoadSigner reads an Ed25519 private key from a PKCS8 PEM file, creating one
// when the file does not exist yet.
func LoadSigner(path string) (*Signer, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return generateAndPersist(path)
	}
	if err != nil {
		return nil, fmt.Errorf("jwtx: read key file: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("jwtx: expected PKCS8 PRIVATE KEY PEM")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	pub := key.Public().(ed25519.PublicKey)
	return &Signer{kid: fingerprintKID(pub), key: key, pub: pub}, nil
}

func generateAndPersist(path string) (*Signer, error) {
	s, err := NewEphemeralSigner()
	if err != nil {
		return nil, err
	}

	der, err := x509.MarshalPKCS8PrivateKey(s.key)
	if err != nil {
		return nil, fmt.Errorf("jwtx: marshal PKCS8: %w", err)
	}
	buf := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, buf, 0600); err != nil {
		return nil, fmt.Errorf("jwtx: persist key: %w", err)
	}
	return s, nil
}

func fingerprintKID(pub ed25519.PublicKey) string {
	// Short stable identifier so rotated keys are distinguishable in logs.
	return base64.RawURLEncoding.EncodeToString(pub[:6])
}

// KID returns the key identifier embedded in token headers.
func (s *Signer) KID() string { return s.kid }

// Public returns the verification key.
func (s *Signer) Public() ed25519.PublicKey { return s.pub }

// Sign turns claims into a signed JWT string.
func (s *Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Ready reports whether the signer holds a usable keypair.
func (s *Signer) Ready() bool {
	return s != nil && len(s.key) == ed25519.PrivateKeySize && len(s.pub) == ed25519.PublicKeySize
}
