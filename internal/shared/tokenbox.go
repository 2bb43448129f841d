package shared

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrTokenSeal indicates a sealed token could not be opened.
var ErrTokenSeal = errors.New("token seal invalid")

const nonceSize = 24

// TokenBox seals backend tokens before they are written to the session store.
type TokenBox struct {
	key [32]byte
}

// NewTokenBox derives the sealing key from the session secret.
func NewTokenBox(secret string) *TokenBox {
	sum := sha256.Sum256([]byte("medistock/token/" + secret))
	return &TokenBox{key: sum}
}

// Seal encrypts value; empty values stay empty.
func (b *TokenBox) Seal(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	out := secretbox.Seal(nonce[:], []byte(value), &nonce, &b.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (b *TokenBox) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize {
		return "", ErrTokenSeal
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrTokenSeal
	}
	return string(plain), nil
}
