package store

import (
	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec"
	"github.com/pkg/errors"
)

const bucket = "credentials"

type strm struct {
	db *storm.DB
}

// StormOpen returns a Store persisted in the given Storm database file.
func StormOpen(database string, c codec.MarshalUnmarshaler) (Store, error) {
	db, err := storm.Open(database, storm.Codec(c))
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{db: db}, nil
}

func (s *strm) Get(key string) (string, error) {
	var value string
	err := s.db.Get(bucket, key, &value)
	switch {
	case err == storm.ErrNotFound:
		return "", ErrNotFound
	case err != nil:
		return "", errors.Wrapf(ErrCorrupt, "%s: %s", key, err)
	}
	return value, nil
}

func (s *strm) Set(key, value string) error {
	return errors.Wrapf(s.db.Set(bucket, key, value), "could not store %s", key)
}

func (s *strm) Delete(keys ...string) error {
	for _, key := range keys {
		err := s.db.Delete(bucket, key)
		if err != nil && err != storm.ErrNotFound {
			return errors.Wrapf(err, "could not delete %s", key)
		}
	}
	return nil
}

func (s *strm) Close() error {
	return s.db.Close()
}
