package store

import (
	"crypto/cipher"
	"encoding/base64"

	sargon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltKey       = "__salt"
	saltKeyLength = 16
)

type sealed struct {
	Store
	aead cipher.AEAD
}

// Seal wraps the given Store so every value is encrypted with a key derived from the passphrase.
// The derivation salt is kept in clear in the wrapped Store.
func Seal(s Store, passphrase string) (Store, error) {
	salt, err := loadSalt(s)
	if err != nil {
		return nil, err
	}

	//
	// Key derivation of passphrase

	hash := argon2.IDKey([]byte(passphrase), salt, 3, 64<<10, 2, 32)

	aead, err := chacha20poly1305.NewX(hash)
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}

	return &sealed{Store: s, aead: aead}, nil
}

func loadSalt(s Store) ([]byte, error) {
	encoded, err := s.Get(saltKey)
	if err == nil {
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err == nil && len(salt) == saltKeyLength {
			return salt, nil
		}
		return nil, errors.Wrap(ErrCorrupt, "salt")
	}
	if !IsNotFound(err) {
		return nil, err
	}

	salt, err := sargon2.GenerateRandomBytes(saltKeyLength)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate salt")
	}

	err = s.Set(saltKey, base64.StdEncoding.EncodeToString(salt))
	return salt, errors.Wrap(err, "could not store salt")
}

func (s *sealed) Get(key string) (string, error) {
	encoded, err := s.Store.Get(key)
	if err != nil {
		return "", err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(ciphertext) < s.aead.NonceSize() {
		return "", errors.Wrapf(ErrCorrupt, "%s: invalid ciphertext", key)
	}

	nonce := ciphertext[:s.aead.NonceSize()]
	ciphertext = ciphertext[s.aead.NonceSize():]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", errors.Wrapf(ErrCorrupt, "%s: %s", key, err)
	}
	return string(plaintext), nil
}

func (s *sealed) Set(key, value string) error {
	nonce, err := sargon2.GenerateRandomBytes(uint32(s.aead.NonceSize()))
	if err != nil {
		return errors.Wrap(err, "could not generate nonce")
	}

	ciphertext := s.aead.Seal(nil, nonce, []byte(value), []byte(key))
	ciphertext = append(nonce, ciphertext...)

	return s.Store.Set(key, base64.StdEncoding.EncodeToString(ciphertext))
}
