package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mdouchement/udeshare/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

// Readiness polling of the bridge.
const (
	ReadyInterval = 250 * time.Millisecond
	ReadyTimeout  = 10 * time.Second
)

type (
	// A Bridge forwards orders to the embedded browser.
	Bridge interface {
		// SetCookies applies all the cookies in one call.
		SetCookies(ctx context.Context, cookies []model.Cookie) error
		// ClearCookies removes every browser cookie.
		ClearCookies(ctx context.Context) error
		// Navigate asks the browser to load the target, failures are only logged.
		Navigate(ctx context.Context, target string)
		// FetchCourses returns the course dropdown content.
		FetchCourses(ctx context.Context, token string, force bool) ([]model.Course, error)
		// WaitReady blocks until the bridge answers or its ready timeout (ReadyTimeout by default) is elapsed.
		WaitReady(ctx context.Context) error
	}

	// BridgeClient is the HTTP implementation of Bridge.
	BridgeClient struct {
		http     *http.Client
		endpoint string
		timeout  time.Duration
		log      logrus.FieldLogger
	}

	// A BridgeOption configures a BridgeClient.
	BridgeOption func(*BridgeClient)

	// A BridgeError is a failure reported by the bridge itself.
	BridgeError struct {
		Message string
		Applied int
	}
)

// WithReadyTimeout sets how long WaitReady polls the bridge.
func WithReadyTimeout(d time.Duration) BridgeOption {
	return func(b *BridgeClient) {
		b.timeout = d
	}
}

// NewBridgeClient returns a new BridgeClient.
func NewBridgeClient(c *http.Client, endpoint string, log logrus.FieldLogger, opts ...BridgeOption) (*BridgeClient, error) {
	_, err := url.Parse(endpoint)

	b := &BridgeClient{
		http:     c,
		endpoint: endpoint,
		timeout:  ReadyTimeout,
		log:      log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, errors.Wrap(err, "could not parse bridge endpoint")
}

func (e *BridgeError) Error() string {
	return e.Message
}

// SetCookies implements Bridge.
func (b *BridgeClient) SetCookies(ctx context.Context, cookies []model.Cookie) error {
	v, err := b.do(ctx, http.MethodPost, "/cookies", map[string]any{"cookies": cookies})
	if err != nil {
		return err
	}

	if !v.GetBool("success") {
		return &BridgeError{
			Message: string(v.GetStringBytes("error")),
			Applied: v.GetInt("applied"),
		}
	}
	return nil
}

// ClearCookies implements Bridge.
func (b *BridgeClient) ClearCookies(ctx context.Context) error {
	_, err := b.do(ctx, http.MethodDelete, "/cookies", nil)
	return err
}

// Navigate implements Bridge.
func (b *BridgeClient) Navigate(ctx context.Context, target string) {
	if _, err := b.do(ctx, http.MethodPost, "/navigate/"+url.PathEscape(target), nil); err != nil {
		b.log.WithField("target", target).WithError(err).Error("could not navigate")
	}
}

// FetchCourses implements Bridge.
func (b *BridgeClient) FetchCourses(ctx context.Context, token string, force bool) ([]model.Course, error) {
	v, err := b.do(ctx, http.MethodPost, "/courses", map[string]any{
		"authToken":    token,
		"forceRefresh": force,
	})
	if err != nil {
		return nil, err
	}

	if !v.GetBool("success") {
		return nil, &BridgeError{Message: string(v.GetStringBytes("error"))}
	}

	var courses []model.Course
	if list := v.Get("courses"); list != nil {
		err = json.Unmarshal(list.MarshalTo(nil), &courses)
	}
	return courses, errors.Wrap(err, "could not parse courses")
}

// WaitReady implements Bridge.
func (b *BridgeClient) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ticker := time.NewTicker(ReadyInterval)
	defer ticker.Stop()

	for {
		if _, err := b.do(ctx, http.MethodGet, "/version", nil); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "bridge is not ready")
		case <-ticker.C:
		}
	}
}

func (b *BridgeClient) do(ctx context.Context, method, path string, params any) (*fastjson.Value, error) {
	//
	// Build request
	var body bytes.Buffer
	if params != nil {
		if err := json.NewEncoder(&body).Encode(params); err != nil {
			return nil, errors.Wrap(err, "could not serialize request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, b.endpoint+path, &body)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	req.Header.Set("Content-Type", "application/json")

	//
	// Perform request
	res, err := b.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not reach bridge")
	}
	defer res.Body.Close()

	//
	// Process response
	var p fastjson.Parser
	payload := new(bytes.Buffer)
	if _, err = payload.ReadFrom(res.Body); err != nil {
		return nil, errors.Wrap(err, "could not read bridge response")
	}
	v, err := p.ParseBytes(payload.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse bridge response (%s)", res.Status)
	}

	if res.StatusCode >= 300 {
		message := string(v.GetStringBytes("error", "message"))
		if message == "" {
			message = fmt.Sprintf("Error %d", res.StatusCode)
		}
		return nil, &BridgeError{Message: message}
	}

	return v, nil
}
