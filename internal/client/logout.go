package client

import (
	"context"

	"github.com/mdouchement/udeshare/internal/auth"
	"github.com/pkg/errors"
)

// Logout forgets the local session and removes the shared cookies from the browser.
// The credential store is cleared even if the bridge cannot be reached.
func Logout(ctx context.Context, m *auth.Manager, b Bridge) error {
	m.Logout()
	return errors.Wrap(b.ClearCookies(ctx), "could not clear browser cookies")
}
