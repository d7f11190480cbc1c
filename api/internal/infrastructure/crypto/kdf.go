package crypto

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is shared with the viewer script; both sides must agree.
	PBKDF2Iterations = 100_000
	// PBKDF2Hash names the PRF in WebCrypto terms for the viewer script.
	PBKDF2Hash = "SHA-256"

	SaltSize  = 16
	NonceSize = 12
	KeySize   = 32 // AES-256
	TagSize   = 16
)

// DeriveReportKey stretches a report password into an AES-256 key.
// The same (password, salt) pair always yields the same key; nothing is cached.
func DeriveReportKey(password string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("crypto: salt must be %d bytes, got %d", SaltSize, len(salt))
	}
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New), nil
}

func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
