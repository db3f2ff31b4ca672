package sec

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// Read https://pkg.go.dev/golang.org/x/crypto/chacha20poly1305

// ConfKeyEnv holds the key for encrypted config secrets (e.g. pw_enc)
const ConfKeyEnv = "LIVEDOCX_CONF_KEY"

var ErrNoConfKey = errors.New("sec: " + ConfKeyEnv + " is not set")

// XChaCha20Poly1305Cipher seals secrets as base64url(nonce || ciphertext)
type XChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewXChaCha20Poly1305Cipher takes a raw 32-byte key
func NewXChaCha20Poly1305Cipher(key []byte) (*XChaCha20Poly1305Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &XChaCha20Poly1305Cipher{aead: aead}, nil
}

// NewConfCipherFromEnv builds the cipher from ConfKeyEnv.
// The value is either 32 raw characters or base64url (unpadded) of 32 bytes
func NewConfCipherFromEnv() (*XChaCha20Poly1305Cipher, error) {
	val, ok := os.LookupEnv(ConfKeyEnv)
	if !ok || val == "" {
		return nil, ErrNoConfKey
	}
	key := []byte(val)
	if len(key) != chacha20poly1305.KeySize {
		decoded, err := base64.RawURLEncoding.DecodeString(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ConfKeyEnv, err)
		}
		key = decoded
	}
	return NewXChaCha20Poly1305Cipher(key)
}

func (c *XChaCha20Poly1305Cipher) EncryptEncode(plaintext []byte) (string, error) {
	// Generate a random nonce every time, and leave capacity for the ciphertext
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ciphertext := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

func (c *XChaCha20Poly1305Cipher) DecodeDecrypt(encodedCiphertext string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(encodedCiphertext)
	if err != nil {
		return nil, err
	}
	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	// Open fails if the ciphertext was tampered with
	return c.aead.Open(nil, nonce, ciphertext, nil)
}

// DecryptString is DecodeDecrypt for text secrets
func (c *XChaCha20Poly1305Cipher) DecryptString(encodedCiphertext string) (string, error) {
	plain, err := c.DecodeDecrypt(encodedCiphertext)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
