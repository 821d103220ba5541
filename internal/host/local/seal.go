package local

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	wrapInfo     = "metanet-client-key-wrap"
	settingsInfo = "metanet-client-settings"
	saltSize     = 16
)

var errSealedTooShort = errors.New("sealed data too short")

// deriveKey stretches a user secret into a sealing key.
func deriveKey(secret string, salt []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), salt, []byte(wrapInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// wrapKey seals dataKey under a key derived from secret. It returns the
// fresh salt together with the wrapped key.
func wrapKey(secret string, dataKey []byte) (salt, wrapped []byte, err error) {
	salt, err = randomBytes(saltSize)
	if err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	kek, err := deriveKey(secret, salt)
	if err != nil {
		return nil, nil, err
	}
	wrapped, err = seal(kek, dataKey, wrapInfo)
	if err != nil {
		return nil, nil, err
	}
	return salt, wrapped, nil
}

func unwrapKey(secret string, salt, wrapped []byte) ([]byte, error) {
	kek, err := deriveKey(secret, salt)
	if err != nil {
		return nil, err
	}
	return open(kek, wrapped, wrapInfo)
}

// seal encrypts plaintext as nonce||ciphertext.
func seal(key, plaintext []byte, ad string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(ad)), nil
}

// open reverses seal.
func open(key, sealed []byte, ad string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, errSealedTooShort
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(ad))
	if err != nil {
		return nil, fmt.Errorf("open sealed data: %w", err)
	}
	return plaintext, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
