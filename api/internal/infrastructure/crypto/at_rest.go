package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

// atRestVersion prefixes every ciphertext so the master key can be rotated later.
const atRestVersion = "v1."

var _ domain.CryptoService = (*AtRestService)(nil)

// AtRestService seals stored conversation histories under the server master key.
type AtRestService struct {
	// 🛡️ Optimized: Pre-calculate the AEAD interface to reduce allocations
	aead cipher.AEAD
}

func NewAtRestService(hexKey string) (*AtRestService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid master key encoding: %w", err)
	}
	// 🛡️ Privacy Tip: zeroize the temporary key slice once the schedule is expanded
	defer zeroize(key)

	if len(key) != KeySize {
		return nil, errors.New("crypto: master key must be 32 bytes for AES-256")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: block cipher failure: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: GCM failure: %w", err)
	}

	return &AtRestService{aead: aead}, nil
}

func (s *AtRestService) Encrypt(ctx context.Context, plaintext []byte, associatedData []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: nonce generation: %w", domain.ErrCryptoUnavailable, err)
	}

	// nonce || ciphertext || tag
	sealed := s.aead.Seal(nonce, nonce, plaintext, associatedData)

	return atRestVersion + base64.URLEncoding.EncodeToString(sealed), nil
}

func (s *AtRestService) Decrypt(ctx context.Context, ciphertextBase64 string, associatedData []byte) ([]byte, error) {
	encoded, ok := strings.CutPrefix(ciphertextBase64, atRestVersion)
	if !ok {
		return nil, errors.New("crypto: unknown ciphertext version")
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("crypto: base64 decode failure: %w", err)
	}

	ns := s.aead.NonceSize()
	if len(data) < ns+TagSize {
		return nil, errors.New("crypto: ciphertext too short")
	}

	nonce, body := data[:ns], data[ns:]

	// 🛡️ AEAD Verification
	// If the UserID used as 'associatedData' changed, this WILL fail.
	plaintext, err := s.aead.Open(nil, nonce, body, associatedData)
	if err != nil {
		return nil, errors.New("crypto: integrity violation - potential tampering detected")
	}

	return plaintext, nil
}
