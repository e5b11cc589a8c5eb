package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/mdouchement/udeshare/internal/backend"
	"github.com/mdouchement/udeshare/internal/bridge"
	"github.com/mdouchement/udeshare/internal/browser"
	"github.com/mdouchement/udeshare/internal/config"
	"github.com/mdouchement/udeshare/internal/courses"
	"github.com/mdouchement/udeshare/internal/logger"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "udeshare-bridge",
		Short:   "Embedded browser driven by the udeshare client",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	serverCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(serverCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

var serverCmd = &coral.Command{
	Use:   "server",
	Short: "Start the browser and its bridge",
	Args:  coral.ExactArgs(0),
	RunE: func(_ *coral.Command, _ []string) error {
		konf, err := config.Load(cfg)
		if err != nil {
			return errors.Wrap(err, "could not load configuration")
		}

		l := logger.New(logger.Options{
			Filename: konf.Log.File,
			Level:    konf.Log.Level,
			Console:  true,
		})

		api, err := backend.NewDefaultClient(konf.Backend.Endpoint)
		if err != nil {
			return errors.Wrap(err, "could not reach backend endpoint")
		}

		chrome, err := browser.NewChrome(browser.Options{
			Headless:    konf.Browser.Headless,
			UserDataDir: konf.Browser.UserDataDir,
			ExecPath:    konf.Browser.ExecPath,
			UserAgent:   konf.UserAgent,
		}, l)
		if err != nil {
			return err
		}
		defer chrome.Close()

		engine := bridge.EchoEngine(bridge.IOC{
			Version: version,
			Browser: chrome,
			Catalog: courses.New(api, konf.CoursesTTL, l),
			Tracker: bridge.NewTracker(l),
			Logger:  l,
			Targets: map[string]string{
				bridge.TargetLogin: konf.URLs.Login,
				bridge.TargetUdemy: konf.URLs.Udemy,
				bridge.TargetHome:  konf.URLs.Home,
			},
		})
		bridge.LogRoutes(engine, l)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := engine.Shutdown(sctx); err != nil {
				l.WithError(err).Error("could not shutdown bridge")
			}
		}()

		address := konf.Bridge.Address
		message := "could not run bridge"
		l.Infof("Bridge listening on %s", address)

		err = engine.Start(address)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, message)
	},
}
