package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// A jsonBinder binds path params and JSON bodies only, the bridge has no query or form input.
type jsonBinder struct {
	echo.DefaultBinder
}

// NewBinder returns the bridge binder.
// Requests carrying a payload must have a non-empty JSON body.
func NewBinder() echo.Binder {
	return new(jsonBinder)
}

// Bind implements the echo.Binder interface.
func (b *jsonBinder) Bind(i any, c echo.Context) error {
	if err := b.BindPathParams(c, i); err != nil {
		return err
	}

	req := c.Request()
	if req.Method == http.MethodGet || req.Method == http.MethodDelete {
		return nil
	}

	if req.ContentLength == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body can't be empty")
	}
	if err := b.BindBody(c, i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	return nil
}
