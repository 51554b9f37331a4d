// Package crypt seals small secrets, such as the CLI's saved credential,
// with AES-256-GCM under a key derived from APP_KEY.
//
// A sealed value is base64url(nonce || ciphertext || tag). Each Box binds
// its purpose into both the key and the additional data, so a value sealed
// for one purpose will not open under another.
//
//	box, err := crypt.NewBox(config.AppKey(), "credential")
//	enc, err := box.Seal([]byte(token))
//	plain, err := box.Open(enc)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrDecrypt covers every open failure: bad encoding, wrong key, tampering.
var ErrDecrypt = errors.New("crypt: decryption failed")

var ErrNoSecret = errors.New("crypt: APP_KEY not configured")

// Box seals and opens values for one purpose.
type Box struct {
	aead    cipher.AEAD
	purpose []byte
}

// NewBox derives a 32-byte key from secret with HKDF-SHA256.
func NewBox(secret, purpose string) (*Box, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	info := []byte("storeadmin/" + purpose)
	k := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, info), k); err != nil {
		return nil, fmt.Errorf("crypt: derive key: %w", err)
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("crypt: cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: gcm: %w", err)
	}
	return &Box{aead: aead, purpose: info}, nil
}

func (b *Box) Seal(plain []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b.aead.Seal(nonce, nonce, plain, b.purpose)), nil
}

func (b *Box) Open(sealed string) ([]byte, error) {
	raw, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < b.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	n := b.aead.NonceSize()
	plain, err := b.aead.Open(nil, raw[:n], raw[n:], b.purpose)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
