package store

import (
	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

type kring struct {
	service string
}

// Keyring returns a Store backed by the OS keyring under the given service name.
func Keyring(service string) Store {
	return &kring{service: service}
}

func (s *kring) Get(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if err == keyring.ErrNotFound {
		return "", ErrNotFound
	}
	return value, errors.Wrapf(err, "could not read %s from keyring", key)
}

func (s *kring) Set(key, value string) error {
	return errors.Wrapf(keyring.Set(s.service, key, value), "could not write %s to keyring", key)
}

func (s *kring) Delete(keys ...string) error {
	for _, key := range keys {
		err := keyring.Delete(s.service, key)
		if err != nil && err != keyring.ErrNotFound {
			return errors.Wrapf(err, "could not delete %s from keyring", key)
		}
	}
	return nil
}

func (s *kring) Close() error {
	return nil
}
