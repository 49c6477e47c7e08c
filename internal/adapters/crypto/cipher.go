// Package crypto seals sensitive records at rest with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	keySize   = 32
	nonceSize = 12
)

// bundle is the sealed form: base64 of this JSON object.
type bundle struct {
	IV   []byte `json:"iv"`
	Data []byte `json:"data"`
}

type AESCipher struct {
	aead cipher.AEAD
}

func NewAESCipher(key []byte) (*AESCipher, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("crypto: key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	return &AESCipher{aead: aead}, nil
}

// LoadOrCreateKey reads the master key at path, generating and persisting
// a new one when the file does not exist yet.
func LoadOrCreateKey(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("crypto: decode key %s: %w", path, err)
		}
		if len(key) != keySize {
			return nil, fmt.Errorf("crypto: key %s has %d bytes", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("crypto: read key: %w", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("crypto: create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(key)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("crypto: write key: %w", err)
	}
	return key, nil
}

func GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("crypto: generate key: %w", err)
	}
	return key, nil
}

func (c *AESCipher) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto: nonce: %w", err)
	}
	raw, err := json.Marshal(bundle{IV: nonce, Data: c.aead.Seal(nil, nonce, plaintext, nil)})
	if err != nil {
		return "", fmt.Errorf("crypto: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (c *AESCipher) Open(sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode bundle: %w", err)
	}
	var b bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("crypto: parse bundle: %w", err)
	}
	if len(b.IV) != nonceSize {
		return nil, fmt.Errorf("crypto: bad nonce length %d", len(b.IV))
	}
	plain, err := c.aead.Open(nil, b.IV, b.Data, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: open: %w", err)
	}
	return plain, nil
}
