package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Keys of the credential store.
const (
	KeyAuthToken    = "authToken"
	KeyUserID       = "userId"
	KeyUserEmail    = "userEmail"
	KeyUserFullname = "userFullname"
	KeyUserData     = "userData"
	KeyUdemyAccount = "udemyAccount"
)

// Keys lists every key owned by the credential store.
var Keys = []string{
	KeyAuthToken,
	KeyUserID,
	KeyUserEmail,
	KeyUserFullname,
	KeyUserData,
	KeyUdemyAccount,
}

var (
	// ErrNotFound is returned when the key is absent.
	ErrNotFound = errors.New("store: not found")
	// ErrCorrupt is returned when a persisted value cannot be decoded.
	// Readers must treat it as an absent value.
	ErrCorrupt = errors.New("store: corrupt value")
)

// A Store is a persistent key-value storage of strings.
type Store interface {
	// Get returns the value of the given key or ErrNotFound.
	Get(key string) (string, error)
	// Set inserts or updates the value of the given key.
	Set(key, value string) error
	// Delete removes the given keys. Absent keys are ignored.
	Delete(keys ...string) error
	// Close releases the underlying resources.
	Close() error
}

// IsNotFound returns true if err is a not found error.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// IsCorrupt returns true if err is a corrupt value error.
func IsCorrupt(err error) bool {
	return errors.Cause(err) == ErrCorrupt
}

// GetJSON decodes the JSON value of the given key into v.
// An undecodable value returns ErrCorrupt.
func GetJSON(s Store, key string, v any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}

	if err = json.Unmarshal([]byte(raw), v); err != nil {
		return errors.Wrapf(ErrCorrupt, "%s: %s", key, err)
	}
	return nil
}

// SetJSON stores the JSON encoding of v under the given key.
func SetJSON(s Store, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "could not serialize %s", key)
	}
	return s.Set(key, string(payload))
}
