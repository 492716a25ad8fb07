// Package crypto encrypts individual record fields at rest.
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
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	iterations = 100000
	keySize    = 32 // AES-256

	// Prefix marks an encrypted value. Values without it are plaintext
	// written before a key was configured.
	Prefix = "enc:"

	saltSuffix = "event-ingest-field-salt"
)

// Encryptor encrypts and decrypts field values. A nil *Encryptor passes
// values through unchanged.
type Encryptor struct {
	key []byte
}

// NewEncryptor derives a key from passphrase. An empty passphrase disables
// encryption and yields nil.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}

	// The salt is derived from the passphrase so one passphrase always
	// yields one key
	sum := sha256.Sum256([]byte(passphrase + saltSuffix))
	key := pbkdf2.Key([]byte(passphrase), sum[:saltSize], iterations, keySize, sha256.New)

	return &Encryptor{key: key}
}

func (e *Encryptor) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-GCM and returns it base64 encoded behind
// Prefix. Empty and already encrypted values are returned as is.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if e == nil || plaintext == "" || IsEncrypted(plaintext) {
		return plaintext, nil
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without Prefix are returned unchanged.
func (e *Encryptor) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	if e == nil {
		return "", errors.New("value is encrypted but no key is configured")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	gcm, err := e.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("opening ciphertext: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value was produced by Encrypt
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// EncryptFields encrypts each field in place
func (e *Encryptor) EncryptFields(fields ...*string) error {
	for _, f := range fields {
		v, err := e.Encrypt(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// DecryptFields decrypts each field in place
func (e *Encryptor) DecryptFields(fields ...*string) error {
	for _, f := range fields {
		v, err := e.Decrypt(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
