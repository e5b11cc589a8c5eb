package bridge

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/udeshare/internal/browser"
	"github.com/sirupsen/logrus"
)

// Navigation targets.
const (
	TargetLogin = "login"
	TargetUdemy = "udemy"
	TargetHome  = "home"
)

type navigation struct {
	browser browser.Browser
	tracker *Tracker
	targets map[string]string
	log     logrus.FieldLogger
}

// Navigate loads the target's page in the background, the caller does not wait for the page load.
func (h *navigation) Navigate(c echo.Context) error {
	target := c.Param("target")
	url, ok := h.targets[target]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown navigation target")
	}

	go func() {
		if err := h.browser.Navigate(context.Background(), url); err != nil {
			h.log.WithField("target", target).WithError(err).Error("navigation failed")
		}
	}()

	h.tracker.Broadcast(Event{
		Type: EventNavigate,
		Data: echo.Map{"target": target, "url": url},
	})

	return c.JSON(http.StatusAccepted, echo.Map{
		"target": target,
		"url":    url,
	})
}
