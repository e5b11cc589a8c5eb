package client

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mdouchement/udeshare/internal/apperror"
	"github.com/mdouchement/udeshare/internal/auth"
	"github.com/mdouchement/udeshare/internal/backend"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type (
	// A Flow performs the login sequence: backend authentication, account selection
	// and cookie injection into the embedded browser.
	Flow struct {
		Backend      backend.Client
		Auth         *auth.Manager
		Bridge       Bridge
		HTTP         *http.Client
		IPLookupURL  string
		UserAgent    string
		CookieDomain string
		Logger       logrus.FieldLogger
		Now          func() time.Time

		inflight atomic.Bool
	}

	// A Result is the outcome of a successful login.
	Result struct {
		Session model.Session
		Account model.Account
	}
)

// Login authenticates the user and shares the selected account's session with the browser.
// Steps already persisted are not rolled back when a later step fails.
func (f *Flow) Login(ctx context.Context, email, password string) (Result, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return Result{}, apperror.New(apperror.ValidationError, apperror.MessageEmptyFields)
	}

	if !f.inflight.CompareAndSwap(false, true) {
		return Result{}, apperror.New(apperror.ValidationError, apperror.MessageLoginInProgress)
	}
	defer f.inflight.Store(false)

	log := f.Logger.WithField("email", email)

	//
	// Authentication
	session, err := f.Backend.Login(ctx, backend.LoginParams{
		Email:     email,
		Password:  password,
		DeviceID:  uuid.Must(uuid.NewV4()).String(),
		UserAgent: f.UserAgent,
		IPAddress: f.publicIP(ctx),
	})
	if err != nil {
		log.WithError(err).Warn("login failed")
		if backend.IsHTTPError(err) {
			return Result{}, apperror.New(apperror.LoginRejected, errors.Cause(err).Error())
		}
		return Result{}, apperror.New(apperror.NetworkError, apperror.MessageNetwork)
	}

	session.LoginTime = f.now()
	if err = f.Auth.SaveSession(session); err != nil {
		return Result{}, errors.Wrap(err, "could not save session")
	}
	log.Info("logged in")

	//
	// Account selection
	account, err := f.Backend.OptimalAccount(ctx, session.Token)
	if err != nil || !account.Usable() {
		log.WithError(err).Warn("no usable account")
		return Result{}, apperror.New(apperror.AccountUnavailable, apperror.MessageAccountUnavailable)
	}

	if err = f.Auth.SaveAccount(account); err != nil {
		return Result{}, errors.Wrap(err, "could not save account")
	}
	log.WithField("account", account.ID).Info("account selected")

	//
	// Cookie injection
	cookies := model.Cookies(f.CookieDomain, session, account)
	if err = f.Bridge.SetCookies(ctx, cookies); err != nil {
		log.WithError(err).Warn("cookie injection failed")
		return Result{}, apperror.New(apperror.CookieInjectionFailed, errors.Cause(err).Error())
	}
	log.WithField("count", len(cookies)).Info("cookies injected")

	return Result{
		Session: session,
		Account: account,
	}, nil
}

// publicIP returns the public IP of the host, or an empty string when it cannot be resolved.
func (f *Flow) publicIP(ctx context.Context) string {
	if f.IPLookupURL == "" {
		return ""
	}

	c := f.HTTP
	if c == nil {
		c = http.DefaultClient
	}

	ip, err := backend.LookupIP(ctx, c, f.IPLookupURL)
	if err != nil {
		f.Logger.WithError(err).Debug("could not resolve public IP")
		return ""
	}
	return ip
}

func (f *Flow) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}
