package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Ciphertexts are stored as "<keyID>:<base64(nonce || sealed)>". The key
// id makes a future key rotation possible without a schema change; only
// one key is configured today.
const currentKeyID = "v1"

var (
	ErrInvalidKey        = errors.New("credentials key must be 32 bytes, base64-encoded")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrUnknownKeyID      = errors.New("ciphertext sealed with unknown key id")
)

// Vault performs the symmetric encryption of broker passwords. The key
// never leaves the server process.
type Vault struct {
	aead cipher.AEAD
}

// NewVault builds a vault from the base64-encoded 32-byte key.
func NewVault(keyB64 string) (*Vault, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(keyB64))
	if err != nil {
		return nil, ErrInvalidKey
	}
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to init GCM: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// NewVaultFromEnv builds a vault from FLEET_CREDENTIALS_KEY.
func NewVaultFromEnv() (*Vault, error) {
	return NewVault(GetConfig().CredentialsKey)
}

// EncryptString seals the plaintext under a fresh random nonce.
func (v *Vault) EncryptString(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return currentKeyID + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString. It rejects ciphertexts sealed
// under a key id this process does not hold.
func (v *Vault) DecryptString(ciphertext string) (string, error) {
	keyID, encoded, found := strings.Cut(ciphertext, ":")
	if !found || encoded == "" {
		return "", ErrInvalidCiphertext
	}
	if keyID != currentKeyID {
		return "", ErrUnknownKeyID
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < v.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, sealed := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}

// GenerateKey returns a fresh base64-encoded 32-byte key.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
