// Package crypto encrypts API keys at rest with AES-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EncryptedPrefix marks a stored value as ciphertext
const EncryptedPrefix = "ENC:"

const keySize = 32

// KeyManager handles encryption and decryption of API keys
type KeyManager struct {
	key []byte
}

// NewKeyManager loads the master key from keyFile, creating it on first use
func NewKeyManager(keyFile string) (*KeyManager, error) {
	key, err := loadOrCreateKey(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption key: %w", err)
	}
	return &KeyManager{key: key}, nil
}

// NewKeyManagerFromSecret derives the key from an arbitrary secret
func NewKeyManagerFromSecret(secret string) *KeyManager {
	sum := sha256.Sum256([]byte("quicktranslate-key-v1:" + secret))
	return &KeyManager{key: sum[:]}
}

func loadOrCreateKey(keyFile string) ([]byte, error) {
	key, err := os.ReadFile(keyFile)
	if err == nil {
		if len(key) != keySize {
			return nil, fmt.Errorf("key file %s has invalid length %d", keyFile, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(keyFile), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	key = make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	// O_EXCL so two processes racing on first use agree on one key
	f, err := os.OpenFile(keyFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return loadOrCreateKey(keyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return key, f.Close()
}

func (km *KeyManager) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(km.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt returns "ENC:" + base64(nonce || ciphertext). Empty input stays empty.
func (km *KeyManager) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := km.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without the prefix are returned unchanged.
func (km *KeyManager) Decrypt(value string) (string, error) {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return value, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	gcm, err := km.gcm()
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(decoded) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, decoded[:nonceSize], decoded[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted checks for the ENC: prefix followed by a plausible payload
func IsEncrypted(value string) bool {
	data, ok := strings.CutPrefix(value, EncryptedPrefix)
	if !ok {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return false
	}
	// 12 byte nonce + 16 byte tag at minimum
	return len(decoded) >= 28
}
