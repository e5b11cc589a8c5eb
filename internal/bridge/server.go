// Package bridge exposes the embedded browser to the CLI over HTTP.
package bridge

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/udeshare/internal/bridge/middlewares"
	"github.com/mdouchement/udeshare/internal/browser"
	"github.com/mdouchement/udeshare/internal/courses"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// An IOC is an Inversion Of Control pattern used to init the bridge package.
type IOC struct {
	Version string
	Browser browser.Browser
	Catalog *courses.Catalog
	Tracker *Tracker
	Logger  *logrus.Logger
	// Targets maps navigation targets (login, udemy, home) to their URL.
	Targets map[string]string
}

// EchoEngine instantiates the bridge web server.
func EchoEngine(ctrl IOC) *echo.Echo {
	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Use(middleware.Recover())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
		Output: ctrl.Logger.WriterLevel(logrus.DebugLevel),
	}))
	engine.Binder = middlewares.NewBinder()
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler(ctrl.Logger)

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	////////////
	// Router //
	////////////

	router := engine.Group("")

	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	//
	// cookie handlers
	//
	cookies := &cookies{
		browser: ctrl.Browser,
		catalog: ctrl.Catalog,
		tracker: ctrl.Tracker,
		log:     ctrl.Logger,
	}
	router.POST("/cookies", cookies.Set)
	router.DELETE("/cookies", cookies.Clear)

	//
	// navigation handlers
	//
	navigation := &navigation{
		browser: ctrl.Browser,
		tracker: ctrl.Tracker,
		targets: ctrl.Targets,
		log:     ctrl.Logger,
	}
	router.POST("/navigate/:target", navigation.Navigate)

	//
	// course handlers
	//
	course := &course{
		catalog: ctrl.Catalog,
		log:     ctrl.Logger,
	}
	router.POST("/courses", course.List)

	//
	// socket handlers
	//
	socket := &socket{
		tracker: ctrl.Tracker,
		log:     ctrl.Logger,
	}
	router.GET("/ws", socket.Connect)
	router.GET("/connections", socket.Connections)

	return engine
}

// LogRoutes logs the routes exposed by the engine.
func LogRoutes(e *echo.Echo, log logrus.FieldLogger) {
	routes := lo.Filter(e.Routes(), func(route *echo.Route, _ int) bool {
		return strings.HasPrefix(route.Path, "/") && route.Path != "/*"
	})
	slices.SortFunc(routes, func(a, b *echo.Route) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
	})

	for _, route := range routes {
		log.WithField("method", route.Method).Info(route.Path)
	}
}
