package store

import (
	"strings"

	"github.com/mdouchement/udeshare/pkg/stormcodec"
	"github.com/pkg/errors"
)

// KeyringService is the service name used for keyring entries.
const KeyringService = "udeshare"

// Options selects and configures a Store backend.
type Options struct {
	Backend    string // storm or keyring
	Path       string // Storm database file
	Codec      string // Storm codec name
	Passphrase string // Seals values when not empty
}

// Open returns the Store described by the given options.
func Open(opts Options) (Store, error) {
	var s Store

	switch strings.ToLower(opts.Backend) {
	case "", "storm":
		c, err := stormcodec.ByName(opts.Codec)
		if err != nil {
			return nil, err
		}

		s, err = StormOpen(opts.Path, c)
		if err != nil {
			return nil, err
		}
	case "keyring":
		s = Keyring(KeyringService)
	default:
		return nil, errors.Errorf("unsupported storage backend: %s", opts.Backend)
	}

	if opts.Passphrase == "" {
		return s, nil
	}

	sealed, err := Seal(s, opts.Passphrase)
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "could not seal store")
	}
	return sealed, nil
}
