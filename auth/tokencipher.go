package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
)

type (
	Key [32]byte

	// TokenCipher seals session ids into opaque bearer tokens and opens
	// them back. The scheme is AES-256-GCM, any tampering or truncation
	// fails authentication instead of decoding into garbage.
	TokenCipher struct {
		aead cipher.AEAD
	}
)

const (
	TokenKeyEnvVar = "JOTBOX_TOKEN_KEY"
)

func (k *Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// KeyFromEnv reads the base64 encoded sealing key from the named
// environment variable and scrubs the variable afterwards.
func KeyFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) (*Key, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	setfn(varname, "")
	var key Key
	sz, err := base64.StdEncoding.Decode(key[:], []byte(val))
	if err != nil {
		return nil, fmt.Errorf("auth: cannot decode string to valid key, cause %v", err)
	} else if sz != len(key) {
		return nil, fmt.Errorf("auth: decoded key too short got %v expecting %v bytes", sz, len(key))
	}
	return &key, nil
}

// NewTokenCipher builds a cipher from the process-wide key. The key is
// loaded once at startup, there is no rotation.
func NewTokenCipher(key *Key) (*TokenCipher, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("unable to build token cipher, cause %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("unable to build token cipher, cause %w", err)
	}
	return &TokenCipher{aead: aead}, nil
}

// Seal encrypts a session id into a bearer token safe to ship as an
// HTTP credential string.
func (t *TokenCipher) Seal(sessionID uint64) (string, error) {
	nonce := make([]byte, t.aead.NonceSize())
	_, err := rand.Read(nonce)
	if err != nil {
		return "", fmt.Errorf("unable to seal token, cause %w", err)
	}
	var plain [8]byte
	binary.BigEndian.PutUint64(plain[:], sessionID)
	// token layout is nonce || ciphertext
	payload := t.aead.Seal(nonce, nonce, plain[:], nil)
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// Open decrypts a bearer token back into a session id. Every decode
// failure (bad encoding, short payload, failed authentication tag)
// comes back as InvalidToken.
func (t *TokenCipher) Open(token string) (uint64, error) {
	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, InvalidToken{Cause: err}
	}
	nonceSize := t.aead.NonceSize()
	if len(payload) < nonceSize {
		return 0, InvalidToken{}
	}
	plain, err := t.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], nil)
	if err != nil {
		return 0, InvalidToken{Cause: err}
	}
	if len(plain) != 8 {
		return 0, InvalidToken{}
	}
	return binary.BigEndian.Uint64(plain), nil
}
