package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// SalaryCipher seals salary amounts stored at rest. Without a key it is a
// pass-through so development databases can keep plaintext salaries.
type SalaryCipher struct {
	aead cipher.AEAD
}

func NewSalaryCipher(key string) (*SalaryCipher, error) {
	if key == "" {
		return &SalaryCipher{}, nil
	}
	decoded := decodeKey(key)
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SalaryCipher{aead: aead}, nil
}

func (c *SalaryCipher) Configured() bool {
	return c != nil && c.aead != nil
}

// Seal returns nil when no key is configured; callers then store the plaintext column.
func (c *SalaryCipher) Seal(amount float64) ([]byte, error) {
	if !c.Configured() {
		return nil, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	plain := []byte(strconv.FormatFloat(amount, 'f', -1, 64))
	return append(nonce, c.aead.Seal(nil, nonce, plain, nil)...), nil
}

func (c *SalaryCipher) Open(sealed []byte) (float64, error) {
	if !c.Configured() {
		return 0, errors.New("salary cipher not configured")
	}
	size := c.aead.NonceSize()
	if len(sealed) < size {
		return 0, ErrCiphertextTooShort
	}
	plain, err := c.aead.Open(nil, sealed[:size], sealed[size:], nil)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(string(plain), 64)
}

// Resolve prefers the sealed column and falls back to the plaintext one.
func (c *SalaryCipher) Resolve(sealed []byte, plain *float64) (float64, error) {
	if len(sealed) > 0 && c.Configured() {
		return c.Open(sealed)
	}
	if plain != nil {
		return *plain, nil
	}
	if len(sealed) > 0 {
		return 0, errors.New("salary is encrypted but DATA_ENCRYPTION_KEY is not set")
	}
	return 0, nil
}

func decodeKey(raw string) []byte {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded
	}
	return []byte(raw)
}
