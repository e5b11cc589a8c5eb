package backend

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// An Error represents a non-2xx answer of the backend.
type Error struct {
	StatusCode int
	Message    string
}

func parseError(r io.Reader, code int) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "could not read error response")
	}

	e := &Error{StatusCode: code}
	if v, err := fastjson.ParseBytes(body); err == nil {
		e.Message = string(v.GetStringBytes("message"))
		if e.Message == "" {
			e.Message = string(v.GetStringBytes("error", "message"))
		}
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("Error %d", code)
	}
	return e
}

func (e *Error) Error() string {
	return e.Message
}

// IsHTTPError returns true if err is an answer of the backend and not a transport failure.
func IsHTTPError(err error) bool {
	_, ok := errors.Cause(err).(*Error)
	return ok
}
