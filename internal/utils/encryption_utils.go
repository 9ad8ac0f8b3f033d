package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/featherpanel/panelstore/internal/constants"
)

// ErrSealerDisabled is returned when a sealed value is opened without a key
var ErrSealerDisabled = errors.New("secret sealing is not configured")

// EncryptKey encrypts a key using AES-256-GCM.
// This provides authenticated encryption for stored credentials.
//
// Parameters:
//   - key: The plaintext key to encrypt
//   - encryptionKey: The key to use for encryption (must be at least 32 bytes)
//
// Returns:
//   - The base64-encoded encrypted key
//   - An error if encryption fails
func EncryptKey(key string, encryptionKey []byte) (string, error) {
	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to create nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(key), nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptKey decrypts a key that was encrypted with EncryptKey.
//
// Parameters:
//   - encryptedKey: The base64-encoded encrypted key
//   - encryptionKey: The key used for encryption (must be at least 32 bytes)
//
// Returns:
//   - The decrypted plaintext key
//   - An error if decryption fails
func DecryptKey(encryptedKey string, encryptionKey []byte) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	gcm, err := newGCM(encryptionKey)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

func newGCM(encryptionKey []byte) (cipher.AEAD, error) {
	if len(encryptionKey) < constants.SealKeyLength {
		return nil, fmt.Errorf("encryption key must be at least %d bytes", constants.SealKeyLength)
	}

	block, err := aes.NewCipher(encryptionKey[:constants.SealKeyLength])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// DeriveKey stretches a configured passphrase into an AES-256 key with Argon2id.
func DeriveKey(passphrase, salt string) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		[]byte(salt),
		constants.SealArgonTime,
		constants.SealArgonMemory,
		constants.SealArgonThreads,
		constants.SealKeyLength,
	)
}

// Sealer encrypts column values at rest. Sealed values carry a version prefix
// so plaintext rows written before sealing was enabled stay readable.
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from passphrase and salt.
// An empty passphrase yields a disabled sealer that stores values unchanged.
func NewSealer(passphrase, salt string) *Sealer {
	if passphrase == "" {
		return &Sealer{}
	}
	if salt == "" {
		salt = constants.SealSaltDefault
	}
	return &Sealer{key: DeriveKey(passphrase, salt)}
}

// Enabled reports whether the sealer holds a key
func (s *Sealer) Enabled() bool {
	return s != nil && len(s.key) > 0
}

// Seal encrypts value. Already sealed and empty values are returned as is.
func (s *Sealer) Seal(value string) (string, error) {
	if !s.Enabled() || value == "" || IsSealed(value) {
		return value, nil
	}

	encrypted, err := EncryptKey(value, s.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal value: %w", err)
	}
	return constants.SealedValuePrefix + encrypted, nil
}

// Open reverses Seal. Values without the sealed prefix are returned unchanged.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if !s.Enabled() {
		return "", ErrSealerDisabled
	}

	plain, err := DecryptKey(strings.TrimPrefix(value, constants.SealedValuePrefix), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed value: %w", err)
	}
	return plain, nil
}

// IsSealed reports whether value was produced by Sealer.Seal
func IsSealed(value string) bool {
	return strings.HasPrefix(value, constants.SealedValuePrefix)
}
