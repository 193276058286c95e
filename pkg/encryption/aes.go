// Package encryption seals watch-only registry backups with AES-GCM under a
// key stretched from the user's password.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	KeyLength  = 32
	SaltLength = 16

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var (
	ErrInvalidKeyLength = errors.New("invalid AES key length")
	ErrEmptyPassword    = errors.New("password is empty")
)

func newAEAD(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d (must be 16, 24, or 32 bytes)", ErrInvalidKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptAESGCM encrypts plaintext under key with a random nonce.
func EncryptAESGCM(plain, key []byte) (ciphertext, nonce []byte, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, aead.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return aead.Seal(nil, nonce, plain, nil), nonce, nil
}

// DecryptAESGCM opens ciphertext produced by EncryptAESGCM.
func DecryptAESGCM(ciphertext, key, nonce []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}

// NewSalt returns SaltLength random bytes for DeriveKey.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey stretches password into a KeyLength AES key with scrypt.
func DeriveKey(password string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, KeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// KeyID is a short public tag identifying key without revealing it.
func KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}
