package bridge

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// DefaultTab is the tab of sockets opened without tab identifier.
const DefaultTab = "main"

var upgrader = websocket.Upgrader{
	// The bridge only listens on the loopback.
	CheckOrigin: func(*http.Request) bool { return true },
}

type socket struct {
	tracker *Tracker
	log     logrus.FieldLogger
}

// Connect upgrades the request and keeps the socket registered until the peer leaves.
func (h *socket) Connect(c echo.Context) error {
	tab := c.QueryParam("tab")
	if tab == "" {
		tab = DefaultTab
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.WithError(err).Debug("could not upgrade socket")
		return nil // The upgrader already answered.
	}
	defer conn.Close()

	h.tracker.Add(tab, conn)
	defer h.tracker.Remove(tab, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Connections returns the number of open sockets per tab.
func (h *socket) Connections(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"total": h.tracker.Total(),
		"tabs":  h.tracker.Snapshot(),
	})
}
