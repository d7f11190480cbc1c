package domain

import "context"

// MinReportPasswordLength is the shortest password accepted for an exported report.
const MinReportPasswordLength = 4

// CryptoService defines the hardened contract for secrets at rest.
// It enforces AEAD (Authenticated Encryption with Associated Data).
type CryptoService interface {
	// Encrypt transforms plaintext into an authenticated ciphertext.
	// 'associatedData' (AAD) links the secret to a specific context (e.g., UserID).
	Encrypt(ctx context.Context, plaintext []byte, associatedData []byte) (string, error)

	// Decrypt verifies authenticity and returns the original plaintext.
	// If the AAD does not match what was used during encryption, it returns an error.
	Decrypt(ctx context.Context, ciphertextBase64 string, associatedData []byte) ([]byte, error)
}

// ReportCipher seals report payloads under a user-chosen password.
// The sealed form is the colon-delimited container embedded in the HTML viewer.
type ReportCipher interface {
	// Seal derives a fresh key from the password and a fresh salt, encrypts the
	// plaintext under a fresh nonce and returns the encoded container.
	Seal(ctx context.Context, plaintext []byte, password string) (string, error)

	// Open reverses Seal. Every failure is reported as ErrReportDecryption.
	Open(ctx context.Context, container string, password string) ([]byte, error)
}
