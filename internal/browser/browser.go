// Package browser drives the embedded Chrome instance in which Udemy is browsed.
package browser

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type (
	// A Browser is the web view receiving cookies and navigation orders.
	Browser interface {
		SetCookie(ctx context.Context, cookie model.Cookie) error
		ClearCookies(ctx context.Context) error
		Navigate(ctx context.Context, url string) error
		Close() error
	}

	// Options configures the Chrome process.
	Options struct {
		Headless    bool
		UserDataDir string
		ExecPath    string
		UserAgent   string
	}

	// Chrome is a Browser backed by a chromedp controlled Chrome.
	Chrome struct {
		sync.Mutex
		ctx    context.Context
		cancel context.CancelFunc
		log    logrus.FieldLogger
	}
)

// NewChrome starts a Chrome process and opens its first tab.
func NewChrome(opts Options, log logrus.FieldLogger) (*Chrome, error) {
	allocator := append(chromedp.DefaultExecAllocatorOptions[:0:0], chromedp.DefaultExecAllocatorOptions[:]...)
	allocator = append(allocator,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserDataDir != "" {
		allocator = append(allocator, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.ExecPath != "" {
		allocator = append(allocator, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocator = append(allocator, chromedp.UserAgent(opts.UserAgent))
	}

	actx, acancel := chromedp.NewExecAllocator(context.Background(), allocator...)
	ctx, cancel := chromedp.NewContext(actx, chromedp.WithLogf(log.Debugf))

	c := &Chrome{
		ctx: ctx,
		cancel: func() {
			cancel()
			acancel()
		},
		log: log,
	}

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		c.cancel()
		return nil, errors.Wrap(err, "could not start browser")
	}
	return c, nil
}

// SetCookie sets one cookie in the browser's cookie jar.
func (c *Chrome) SetCookie(ctx context.Context, cookie model.Cookie) error {
	c.Lock()
	defer c.Unlock()

	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookie(cookie.Name, cookie.Value).
			WithDomain(cookie.Domain).
			WithPath(cookie.Path).
			WithSecure(cookie.Secure).
			WithHTTPOnly(cookie.HTTPOnly).
			Do(ctx)
	}))
	return errors.Wrapf(err, "could not set cookie %s", cookie.Name)
}

// ClearCookies removes every cookie of the browser.
func (c *Chrome) ClearCookies(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.ClearBrowserCookies().Do(ctx)
	}))
	return errors.Wrap(err, "could not clear cookies")
}

// Navigate loads the given URL in the current tab.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	c.Lock()
	defer c.Unlock()

	c.log.WithField("url", url).Info("navigating")
	return errors.Wrapf(c.run(ctx, chromedp.Navigate(url)), "could not navigate to %s", url)
}

// Close stops the Chrome process.
func (c *Chrome) Close() error {
	c.Lock()
	defer c.Unlock()

	err := chromedp.Cancel(c.ctx)
	c.cancel()
	return errors.Wrap(err, "could not close browser")
}

// run executes the actions on the browser tab, stopping when ctx is done.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithCancel(c.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(tctx, actions...)
}
