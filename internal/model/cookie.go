package model

import (
	"slices"

	"github.com/samber/lo"
)

// CookiePath is the path used by all provisioned cookies.
const CookiePath = "/"

// A Cookie describes a cookie to apply to the browser's cookie jar.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
}

// Cookies builds the ordered cookie list that opens a browsing session for the given account.
// Cookies with an empty value are skipped.
func Cookies(domain string, session Session, account Account) []Cookie {
	type entry struct {
		name     string
		value    string
		secure   bool
		httpOnly bool
	}

	entries := []entry{
		{name: "access_token", value: account.AccessToken, secure: true},
		{name: "client_id", value: account.ClientID, secure: true},
		{name: "dj_session_id", value: account.SessionID, secure: true, httpOnly: true},
		{name: "csrftoken", value: account.CSRFToken},
		{name: "ud_cache_user", value: session.UserID},
		{name: "ud_cache_logged_in", value: "1"},
	}

	extras := lo.Keys(account.Cookies)
	slices.Sort(extras)
	for _, name := range extras {
		entries = append(entries, entry{name: name, value: account.Cookies[name], secure: true})
	}

	return lo.FilterMap(entries, func(e entry, _ int) (Cookie, bool) {
		return Cookie{
			Name:     e.name,
			Value:    e.value,
			Domain:   domain,
			Path:     CookiePath,
			Secure:   e.secure,
			HTTPOnly: e.httpOnly,
		}, e.value != ""
	})
}
