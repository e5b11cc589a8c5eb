package model

import (
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// UnmarshalJSON decodes a session blob.
// The user id can be a string or a number and the login time any common date format
// or a Unix timestamp in milliseconds.
func (s *Session) UnmarshalJSON(data []byte) error {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return err
	}
	if v.Type() != fastjson.TypeObject {
		return errors.Errorf("session: unexpected %s", v.Type())
	}

	s.UserID = str(v, "id")
	s.Email = str(v, "email")
	s.Fullname = str(v, "fullname")
	s.LoginTime, err = timestamp(v.Get("loginTime"))
	return errors.Wrap(err, "session: loginTime")
}

// UnmarshalJSON decodes an account blob, accepting both snake_case and camelCase fields.
func (a *Account) UnmarshalJSON(data []byte) error {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return err
	}
	if v.Type() != fastjson.TypeObject {
		return errors.Errorf("account: unexpected %s", v.Type())
	}

	a.ID = str(v, "id")
	a.Email = str(v, "email")
	a.AccessToken = str(v, "access_token", "accessToken")
	a.SessionID = str(v, "session_id", "dj_session_id", "sessionId")
	a.ClientID = str(v, "client_id", "clientId")
	a.CSRFToken = str(v, "csrf_token", "csrftoken", "csrfToken")
	a.Cookies = nil

	cookies := v.Get("cookies")
	if cookies == nil || cookies.Type() != fastjson.TypeObject {
		return nil
	}

	o, err := cookies.Object()
	if err != nil {
		return err
	}
	a.Cookies = make(map[string]string, o.Len())
	o.Visit(func(key []byte, value *fastjson.Value) {
		if s := scalar(value); s != "" {
			a.Cookies[string(key)] = s
		}
	})

	return nil
}

// UnmarshalJSON decodes a course, the id can be a string or a number.
func (c *Course) UnmarshalJSON(data []byte) error {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return err
	}
	if v.Type() != fastjson.TypeObject {
		return errors.Errorf("course: unexpected %s", v.Type())
	}

	c.ID = str(v, "id")
	c.Title = str(v, "title")
	c.URL = str(v, "url")
	c.Image = str(v, "image", "image_480x270")
	return nil
}

// str returns the first non-empty scalar found under the given keys.
func str(v *fastjson.Value, keys ...string) string {
	for _, key := range keys {
		if s := scalar(v.Get(key)); s != "" {
			return s
		}
	}
	return ""
}

func scalar(v *fastjson.Value) string {
	if v == nil {
		return ""
	}

	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.String()
	}
	return ""
}

func timestamp(v *fastjson.Value) (time.Time, error) {
	if v == nil {
		return time.Time{}, nil
	}

	switch v.Type() {
	case fastjson.TypeNumber:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	case fastjson.TypeString:
		raw := string(v.GetStringBytes())
		if raw == "" {
			return time.Time{}, nil
		}
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		return dateparse.ParseAny(raw)
	case fastjson.TypeNull:
		return time.Time{}, nil
	}

	return time.Time{}, errors.Errorf("unexpected %s", v.Type())
}
