package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

const gcmNonceSize = 12

var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// EncryptAES encrypts the given plaintext using AES-256-GCM. Output is base64(nonce || ciphertext).
func EncryptAES(plaintext []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// DecryptAES reverses EncryptAES.
func DecryptAES(encoded string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	if len(raw) < gcmNonceSize {
		return nil, ErrInvalidCiphertext
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, raw[:gcmNonceSize], raw[gcmNonceSize:], nil)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	return plaintext, nil
}

// EncryptString encrypts s, leaving the empty string empty so optional columns stay NULL-like.
func EncryptString(s string, key []byte) (string, error) {
	if IsEmpty(s) {
		return "", nil
	}
	return EncryptAES([]byte(s), key)
}

// DecryptString reverses EncryptString.
func DecryptString(s string, key []byte) (string, error) {
	if IsEmpty(s) {
		return "", nil
	}
	plain, err := DecryptAES(s, key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// DecodeString decodes a base64 encoded 32-byte AES key.
func DecodeString(value string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(key) != 32 {
		return nil, errors.New("invalid AES key")
	}
	return key, nil
}
