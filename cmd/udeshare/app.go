package main

import (
	"net/http"

	"github.com/mdouchement/udeshare/internal/auth"
	"github.com/mdouchement/udeshare/internal/backend"
	"github.com/mdouchement/udeshare/internal/client"
	"github.com/mdouchement/udeshare/internal/config"
	"github.com/mdouchement/udeshare/internal/logger"
	"github.com/mdouchement/udeshare/internal/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// promptPassphrase as storage passphrase asks it on stdin.
const promptPassphrase = "prompt"

// An app holds the components shared by the commands.
type app struct {
	cfg    config.Config
	log    *logrus.Logger
	store  store.Store
	auth   *auth.Manager
	bridge *client.BridgeClient
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgfile)
	if err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}

	// Stdout is kept for the user, logs only go to the file.
	log := logger.New(logger.Options{
		Filename: cfg.Log.File,
		Level:    cfg.Log.Level,
	})

	passphrase := cfg.Storage.Passphrase
	if passphrase == promptPassphrase {
		if passphrase, err = client.PromptPassphrase(); err != nil {
			return nil, err
		}
	}

	s, err := store.Open(store.Options{
		Backend:    cfg.Storage.Backend,
		Path:       cfg.Storage.Path,
		Codec:      cfg.Storage.Codec,
		Passphrase: passphrase,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not open credential store")
	}

	b, err := client.NewBridgeClient(http.DefaultClient, cfg.BridgeURL(), log)
	if err != nil {
		s.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  s,
		auth:   auth.NewManager(s, auth.WithLogger(log)),
		bridge: b,
	}, nil
}

func (a *app) flow() (*client.Flow, error) {
	api, err := backend.NewDefaultClient(a.cfg.Backend.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not reach backend endpoint")
	}

	return &client.Flow{
		Backend:      api,
		Auth:         a.auth,
		Bridge:       a.bridge,
		HTTP:         http.DefaultClient,
		IPLookupURL:  a.cfg.Backend.IPLookupURL,
		UserAgent:    a.cfg.UserAgent,
		CookieDomain: a.cfg.CookieDomain,
		Logger:       a.log,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
