package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/imyashkale/helmwizard/internal/models"
)

var (
	ErrTokenEncryptionFailed = errors.New("token encryption failed")
	ErrTokenDecryptionFailed = errors.New("token decryption failed")
)

// fineGrainedPrefix marks fine-grained personal access tokens
const fineGrainedPrefix = "github_pat_"

// TokenVault encrypts personal access tokens at rest with AES-256-GCM
type TokenVault struct {
	key []byte
}

// NewTokenVault creates a vault from a 32 byte key
func NewTokenVault(key string) *TokenVault {
	return &TokenVault{key: []byte(key)}
}

// Encrypt seals a token and returns base64(nonce || ciphertext)
func (v *TokenVault) Encrypt(token string) (string, error) {
	gcm, err := v.gcm()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenEncryptionFailed, err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a token sealed by Encrypt
func (v *TokenVault) Decrypt(encrypted string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenDecryptionFailed, err)
	}

	gcm, err := v.gcm()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenDecryptionFailed, err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrTokenDecryptionFailed)
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenDecryptionFailed, err)
	}

	return string(plaintext), nil
}

func (v *TokenVault) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// TokenType classifies a token by its prefix
func TokenType(token string) string {
	if strings.HasPrefix(token, fineGrainedPrefix) {
		return models.TokenTypeFine
	}
	return models.TokenTypeClassic
}

// MaskToken keeps the token kind prefix and the last four characters, e.g. ghp_****abcd
func MaskToken(token string) string {
	prefix := ""
	switch {
	case strings.HasPrefix(token, fineGrainedPrefix):
		prefix = fineGrainedPrefix
	default:
		if i := strings.Index(token, "_"); i > 0 && i <= 4 {
			prefix = token[:i+1]
		}
	}

	rest := strings.TrimPrefix(token, prefix)
	if len(rest) <= 4 {
		return prefix + "****"
	}
	return prefix + "****" + rest[len(rest)-4:]
}
