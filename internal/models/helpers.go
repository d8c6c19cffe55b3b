package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

const DigestSize = 32

// Keccak256 returns the legacy (pre-NIST) Keccak-256 digest of data.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// SecretDigest hashes a claim secret the way unlock digests are stored.
func SecretDigest(secret string) []byte {
	return Keccak256([]byte(secret))
}

// ParseDigest decodes a hex digest, with or without a 0x prefix.
func ParseDigest(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid digest: %v", err)
	}
	if len(b) != DigestSize {
		return nil, fmt.Errorf("digest must be %d bytes, got %d", DigestSize, len(b))
	}
	return b, nil
}

// GenerateSecret creates a random claim secret.
func GenerateSecret() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secret: %v", err)
	}
	return hex.EncodeToString(bytes), nil
}

// ParseAmount parses a decimal currency amount. An empty string is zero.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uint256.NewInt(0), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %v", s, err)
	}
	return v, nil
}

func GenerateTxID() string {
	return uuid.New().String()
}
