package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/mdouchement/udeshare/internal/model"
	"github.com/mdouchement/udeshare/internal/store"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// go run tools/inspect/main.go udeshare.db --codec msgpack

func main() {
	var (
		codec      string
		passphrase string
		reveal     bool
	)

	c := &cobra.Command{
		Use:   "inspect DATABASE",
		Short: "Dump the udeshare credential store",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Println("Opening", args[0])
			s, err := store.Open(store.Options{
				Path:       args[0],
				Codec:      codec,
				Passphrase: passphrase,
			})
			if err != nil {
				return errors.Wrap(err, "could not open credential store")
			}
			defer s.Close()

			dump := map[string]any{}
			for _, key := range store.Keys {
				value, err := s.Get(key)
				switch {
				case store.IsNotFound(err):
					continue
				case store.IsCorrupt(err):
					dump[key] = "<corrupt>"
					continue
				case err != nil:
					return errors.Wrapf(err, "could not read %s", key)
				}

				dump[key] = decode(key, value, reveal)
			}

			return jsondump(dump)
		},
	}
	c.Flags().StringVar(&codec, "codec", "", "Storage codec (msgpack, json, cbor, binc)")
	c.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase of a sealed store")
	c.Flags().BoolVar(&reveal, "reveal", false, "Do not redact secrets")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func decode(key, value string, reveal bool) any {
	switch key {
	case store.KeyAuthToken:
		return redact(value, reveal)
	case store.KeyUserData:
		var session model.Session
		if err := json.Unmarshal([]byte(value), &session); err != nil {
			return "<corrupt>"
		}
		return session
	case store.KeyUdemyAccount:
		var account model.Account
		if err := json.Unmarshal([]byte(value), &account); err != nil {
			return "<corrupt>"
		}
		account.AccessToken = redact(account.AccessToken, reveal)
		account.SessionID = redact(account.SessionID, reveal)
		account.CSRFToken = redact(account.CSRFToken, reveal)
		account.Cookies = lo.MapValues(account.Cookies, func(v string, _ string) string {
			return redact(v, reveal)
		})
		return account
	}
	return value
}

func redact(secret string, reveal bool) string {
	if reveal || secret == "" {
		return secret
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "********"
}

func jsondump(v any) error {
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
