package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mdouchement/udeshare/internal/bridge"
	"github.com/mdouchement/udeshare/internal/client"
	"github.com/mdouchement/udeshare/internal/courses"
	"github.com/mdouchement/udeshare/internal/logger"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type browser struct {
	mu        sync.Mutex
	cookies   []model.Cookie
	reject    string
	navigated chan string
}

func (b *browser) SetCookie(_ context.Context, cookie model.Cookie) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cookie.Name == b.reject {
		return errors.New("invalid cookie value")
	}
	b.cookies = append(b.cookies, cookie)
	return nil
}

func (b *browser) ClearCookies(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cookies = nil
	return nil
}

func (b *browser) Navigate(_ context.Context, url string) error {
	b.navigated <- url
	return nil
}

func (b *browser) Close() error {
	return nil
}

type fetcher struct{}

func (fetcher) Courses(_ context.Context, token string) ([]model.Course, error) {
	if token != "T" {
		return nil, errors.New("Error 401")
	}
	return []model.Course{{ID: "1", Title: "Go"}}, nil
}

func bridgeSetup(t *testing.T) (*client.BridgeClient, *browser) {
	log := logger.Discard()
	b := &browser{navigated: make(chan string, 1)}

	srv := httptest.NewServer(bridge.EchoEngine(bridge.IOC{
		Version: "test",
		Browser: b,
		Catalog: courses.New(fetcher{}, time.Minute, log),
		Tracker: bridge.NewTracker(log),
		Logger:  log,
		Targets: map[string]string{bridge.TargetUdemy: "https://www.udemy.com/"},
	}))
	t.Cleanup(srv.Close)

	c, err := client.NewBridgeClient(srv.Client(), srv.URL, log)
	require.NoError(t, err)
	return c, b
}

func TestBridgeClient_SetCookies(t *testing.T) {
	c, b := bridgeSetup(t)

	cookies := model.Cookies(".udemy.com", model.Session{UserID: "42"}, model.Account{AccessToken: "A", SessionID: "S"})
	require.NoError(t, c.SetCookies(context.Background(), cookies))
	assert.Equal(t, cookies, b.cookies)

	require.NoError(t, c.ClearCookies(context.Background()))
	assert.Empty(t, b.cookies)
}

func TestBridgeClient_SetCookiesFailure(t *testing.T) {
	c, b := bridgeSetup(t)
	b.reject = "dj_session_id"

	cookies := model.Cookies(".udemy.com", model.Session{UserID: "42"}, model.Account{AccessToken: "A", SessionID: "S"})
	err := c.SetCookies(context.Background(), cookies)
	require.Error(t, err)

	var berr *client.BridgeError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "invalid cookie value", berr.Message)
	assert.Equal(t, 1, berr.Applied)
	assert.Len(t, b.cookies, 1)

	err = c.SetCookies(context.Background(), nil)
	assert.EqualError(t, err, "No cookies given")
}

func TestBridgeClient_Navigate(t *testing.T) {
	c, b := bridgeSetup(t)

	c.Navigate(context.Background(), bridge.TargetUdemy)
	select {
	case url := <-b.navigated:
		assert.Equal(t, "https://www.udemy.com/", url)
	case <-time.After(time.Second):
		t.Fatal("navigation not performed")
	}

	c.Navigate(context.Background(), "nowhere") // Only logged
}

func TestBridgeClient_FetchCourses(t *testing.T) {
	c, _ := bridgeSetup(t)

	list, err := c.FetchCourses(context.Background(), "T", false)
	require.NoError(t, err)
	assert.Equal(t, []model.Course{{ID: "1", Title: "Go"}}, list)

	_, err = c.FetchCourses(context.Background(), "", false)
	assert.EqualError(t, err, "Missing auth token")

	_, err = c.FetchCourses(context.Background(), "other", true)
	assert.EqualError(t, err, "Error 401")
}

func TestBridgeClient_WaitReady(t *testing.T) {
	c, _ := bridgeSetup(t)
	assert.NoError(t, c.WaitReady(context.Background()))
}

func TestBridgeClient_WaitReadyTimeout(t *testing.T) {
	timeout := 3 * client.ReadyInterval

	down, err := client.NewBridgeClient(http.DefaultClient, "http://127.0.0.1:1", logger.Discard(), client.WithReadyTimeout(timeout))
	require.NoError(t, err)

	start := time.Now()
	err = down.WaitReady(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+time.Second)
}

func TestBridgeClient_WaitReadyCallerDeadline(t *testing.T) {
	down, err := client.NewBridgeClient(http.DefaultClient, "http://127.0.0.1:1", logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*client.ReadyInterval)
	defer cancel()

	start := time.Now()
	assert.Error(t, down.WaitReady(ctx))
	assert.Less(t, time.Since(start), client.ReadyTimeout)
}
