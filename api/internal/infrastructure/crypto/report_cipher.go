package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

var _ domain.ReportCipher = (*PasswordCipher)(nil)

// PasswordCipher seals report payloads with PBKDF2-SHA256 + AES-256-GCM.
// It holds no key material between calls: every Seal draws a fresh salt and nonce
// and every Open re-derives the key from the container's salt.
type PasswordCipher struct {
	entropy io.Reader
}

// NewPasswordCipher uses crypto/rand unless an entropy source is given.
func NewPasswordCipher(entropy io.Reader) *PasswordCipher {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &PasswordCipher{entropy: entropy}
}

func (c *PasswordCipher) Seal(ctx context.Context, plaintext []byte, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if utf8.RuneCountInString(password) < domain.MinReportPasswordLength {
		return "", domain.ErrWeakPassword
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(c.entropy, salt); err != nil {
		return "", fmt.Errorf("%w: salt generation: %w", domain.ErrCryptoUnavailable, err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(c.entropy, nonce); err != nil {
		return "", fmt.Errorf("%w: nonce generation: %w", domain.ErrCryptoUnavailable, err)
	}

	aead, err := c.aead(password, salt)
	if err != nil {
		return "", err
	}

	// No associated data: the container is self-describing.
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	return Container{Nonce: nonce, Salt: salt, Ciphertext: ciphertext}.Encode(), nil
}

func (c *PasswordCipher) Open(ctx context.Context, container string, password string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := ParseContainer(container)
	if err != nil {
		return nil, domain.ErrReportDecryption
	}

	aead, err := c.aead(password, parsed.Salt)
	if err != nil {
		return nil, err
	}

	// 🛡️ A wrong key fails the tag check exactly like a tampered ciphertext.
	plaintext, err := aead.Open(nil, parsed.Nonce, parsed.Ciphertext, nil)
	if err != nil {
		return nil, domain.ErrReportDecryption
	}
	return plaintext, nil
}

func (c *PasswordCipher) aead(password string, salt []byte) (cipher.AEAD, error) {
	key, err := DeriveReportKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCryptoUnavailable, err)
	}
	defer zeroize(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: block cipher: %w", domain.ErrCryptoUnavailable, err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: GCM: %w", domain.ErrCryptoUnavailable, err)
	}
	return aead, nil
}
