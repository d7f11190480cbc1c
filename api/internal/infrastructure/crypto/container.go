package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ContainerDelimiter separates the three hex segments of an encoded container.
const ContainerDelimiter = ":"

var errMalformedContainer = errors.New("crypto: malformed container")

// Container is the transportable form of a sealed report:
// nonce and salt are public and travel with the ciphertext.
type Container struct {
	Nonce      []byte
	Salt       []byte
	Ciphertext []byte // includes the 16-byte GCM tag
}

// Encode renders "<ivHex>:<saltHex>:<ciphertextHex>" in lowercase hex.
func (c Container) Encode() string {
	return hex.EncodeToString(c.Nonce) + ContainerDelimiter +
		hex.EncodeToString(c.Salt) + ContainerDelimiter +
		hex.EncodeToString(c.Ciphertext)
}

// ParseContainer validates and decodes an encoded container.
func ParseContainer(s string) (Container, error) {
	parts := strings.Split(s, ContainerDelimiter)
	if len(parts) != 3 {
		return Container{}, fmt.Errorf("%w: expected 3 segments, got %d", errMalformedContainer, len(parts))
	}

	nonce, err := decodeSegment("iv", parts[0])
	if err != nil {
		return Container{}, err
	}
	salt, err := decodeSegment("salt", parts[1])
	if err != nil {
		return Container{}, err
	}
	ciphertext, err := decodeSegment("ciphertext", parts[2])
	if err != nil {
		return Container{}, err
	}

	switch {
	case len(nonce) != NonceSize:
		return Container{}, fmt.Errorf("%w: iv is %d bytes", errMalformedContainer, len(nonce))
	case len(salt) != SaltSize:
		return Container{}, fmt.Errorf("%w: salt is %d bytes", errMalformedContainer, len(salt))
	case len(ciphertext) < TagSize:
		return Container{}, fmt.Errorf("%w: ciphertext shorter than tag", errMalformedContainer)
	}

	return Container{Nonce: nonce, Salt: salt, Ciphertext: ciphertext}, nil
}

// decodeSegment accepts lowercase hex only; hex.DecodeString alone would also take uppercase.
func decodeSegment(name, seg string) ([]byte, error) {
	if seg == "" {
		return nil, fmt.Errorf("%w: empty %s segment", errMalformedContainer, name)
	}
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return nil, fmt.Errorf("%w: %s segment is not lowercase hex", errMalformedContainer, name)
		}
	}
	b, err := hex.DecodeString(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s segment: %v", errMalformedContainer, name, err)
	}
	return b, nil
}
