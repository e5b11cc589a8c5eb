package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/udeshare/internal/browser"
	"github.com/mdouchement/udeshare/internal/courses"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type cookies struct {
	browser browser.Browser
	catalog *courses.Catalog
	tracker *Tracker
	log     logrus.FieldLogger
}

// Set applies the given cookies in order and stops at the first rejected one.
func (h *cookies) Set(c echo.Context) error {
	var params struct {
		Cookies []model.Cookie `json:"cookies"`
	}
	if err := c.Bind(&params); err != nil {
		return err
	}
	if len(params.Cookies) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No cookies given")
	}

	ctx := c.Request().Context()
	for i, cookie := range params.Cookies {
		if cookie.Path == "" {
			cookie.Path = model.CookiePath
		}

		if err := h.browser.SetCookie(ctx, cookie); err != nil {
			h.log.WithFields(logrus.Fields{
				"applied": i,
				"name":    cookie.Name,
			}).WithError(err).Warn("cookie rejected")

			return c.JSON(http.StatusOK, echo.Map{
				"success": false,
				"applied": i,
				"error":   errors.Cause(err).Error(),
			})
		}
	}

	h.log.WithField("count", len(params.Cookies)).Info("cookies applied")
	h.tracker.Broadcast(Event{
		Type: EventCookiesSet,
		Data: echo.Map{"count": len(params.Cookies)},
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"applied": len(params.Cookies),
	})
}

// Clear removes every browser cookie and forgets the cached courses.
func (h *cookies) Clear(c echo.Context) error {
	if err := h.browser.ClearCookies(c.Request().Context()); err != nil {
		return err
	}
	h.catalog.Purge()

	h.log.Info("cookies cleared")
	h.tracker.Broadcast(Event{Type: EventCookiesCleared})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
	})
}
