package client

import (
	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// PromptCredentials reads the email and the password from stdin.
func PromptCredentials() (email, password string, err error) {
	email, err = readline.Line("Email: ")
	if err != nil {
		return "", "", errors.Wrap(err, "could not read email from stdin")
	}

	secret, err := readline.Password("Password: ")
	if err != nil {
		return "", "", errors.Wrap(err, "could not read password from stdin")
	}

	return email, string(secret), nil
}

// PromptPassphrase reads the credential store passphrase from stdin.
func PromptPassphrase() (string, error) {
	passphrase, err := readline.Password("Passphrase: ")
	return string(passphrase), errors.Wrap(err, "could not read passphrase from stdin")
}
