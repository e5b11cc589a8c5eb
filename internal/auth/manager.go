// Package auth computes the authentication state of the local user from the credential store.
package auth

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/mdouchement/udeshare/internal/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SessionTTL is the lifetime of a local session from its login time.
const SessionTTL = 24 * time.Hour

type (
	// A Manager reads and writes the authentication state of the credential store.
	// It is the only component allowed to mutate the credential store.
	Manager struct {
		store store.Store
		log   logrus.FieldLogger
		now   func() time.Time
	}

	// An Option configures a Manager.
	Option func(*Manager)

	// UserInfo holds the identity of the logged-in user.
	UserInfo struct {
		ID       string
		Email    string
		Fullname string
	}
)

// WithClock sets the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger used to report storage issues.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager returns a new Manager on top of the given store.
func NewManager(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		store: s,
		log:   logrus.StandardLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns the current token and whether it is present.
func (m *Manager) Token() (string, bool) {
	token, err := m.store.Get(store.KeyAuthToken)
	if err != nil {
		m.absent(store.KeyAuthToken, err)
		return "", false
	}
	return token, token != ""
}

// IsTokenExpired returns true when no login time is recorded or the session is older than SessionTTL.
// It is a local heuristic, the backend is never asked.
func (m *Manager) IsTokenExpired() bool {
	session, ok := m.userData()
	if !ok {
		return true
	}
	return session.ExpiredAt(m.now(), SessionTTL)
}

// IsAuthenticated returns true when a token is present and not expired.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Token()
	return ok && !m.IsTokenExpired()
}

// UserInfo returns the identity of the stored session, or empty values.
func (m *Manager) UserInfo() UserInfo {
	session, _ := m.userData()
	return UserInfo{
		ID:       session.UserID,
		Email:    session.Email,
		Fullname: session.Fullname,
	}
}

// Session returns the stored session with its token.
func (m *Manager) Session() (model.Session, bool) {
	session, ok := m.userData()
	if !ok {
		return model.Session{}, false
	}
	session.Token, ok = m.Token()
	return session, ok
}

// Account returns the stored Udemy account.
func (m *Manager) Account() (model.Account, bool) {
	var account model.Account
	if err := store.GetJSON(m.store, store.KeyUdemyAccount, &account); err != nil {
		m.absent(store.KeyUdemyAccount, err)
		return model.Account{}, false
	}
	return account, true
}

// AuthHeaders returns the headers authenticating a backend request.
// The caller must check IsAuthenticated first, the headers are built even without token.
func (m *Manager) AuthHeaders() http.Header {
	token, _ := m.Token()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")
	return h
}

// TokenClaims returns the claims of the token when it is a JWT.
// The signature is not verified, claims are informational only.
func (m *Manager) TokenClaims() (jwt.MapClaims, bool) {
	token, ok := m.Token()
	if !ok {
		return nil, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// SaveSession persists the given session.
func (m *Manager) SaveSession(session model.Session) error {
	identity := [][2]string{
		{store.KeyAuthToken, session.Token},
		{store.KeyUserID, session.UserID},
		{store.KeyUserEmail, session.Email},
		{store.KeyUserFullname, session.Fullname},
	}
	for _, kv := range identity {
		if err := m.store.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}

	return errors.Wrap(store.SetJSON(m.store, store.KeyUserData, session), "could not save session")
}

// SaveAccount persists the given account, replacing the previous one.
func (m *Manager) SaveAccount(account model.Account) error {
	return errors.Wrap(store.SetJSON(m.store, store.KeyUdemyAccount, account), "could not save account")
}

// Logout removes every key owned by the credential store.
func (m *Manager) Logout() {
	if err := m.store.Delete(store.Keys...); err != nil {
		m.log.WithError(err).Error("Could not clear credential store")
	}
}

func (m *Manager) userData() (model.Session, bool) {
	var session model.Session
	if err := store.GetJSON(m.store, store.KeyUserData, &session); err != nil {
		m.absent(store.KeyUserData, err)
		return model.Session{}, false
	}
	return session, true
}

func (m *Manager) absent(key string, err error) {
	switch {
	case store.IsNotFound(err):
	case store.IsCorrupt(err):
		m.log.WithField("key", key).Warn("Ignoring corrupt stored value")
	default:
		m.log.WithError(err).WithField("key", key).Error("Could not read credential store")
	}
}
