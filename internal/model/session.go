package model

import (
	"time"
)

// A Session is the local representation of a logged-in user.
// Its JSON form is the `userData` blob of the credential store.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	LoginTime time.Time `json:"loginTime"`
}

// ExpiredAt returns true if the session is expired at the given time.
// A session without login time is always expired.
func (s Session) ExpiredAt(t time.Time, ttl time.Duration) bool {
	if s.LoginTime.IsZero() {
		return true
	}
	return !t.Before(s.LoginTime.Add(ttl))
}
