package bridge_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/appleboy/gofight"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/udeshare/internal/bridge"
	"github.com/mdouchement/udeshare/internal/courses"
	"github.com/mdouchement/udeshare/internal/logger"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jsonHeader = gofight.H{"Content-Type": "application/json"}

type fakeBrowser struct {
	mu        sync.Mutex
	cookies   []model.Cookie
	reject    string
	cleared   int
	navigated chan string
}

func (b *fakeBrowser) SetCookie(_ context.Context, cookie model.Cookie) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cookie.Name == b.reject {
		return errors.New("invalid cookie domain")
	}
	b.cookies = append(b.cookies, cookie)
	return nil
}

func (b *fakeBrowser) ClearCookies(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cookies = nil
	b.cleared++
	return nil
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.navigated <- url
	return nil
}

func (b *fakeBrowser) Close() error {
	return nil
}

type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	tokens []string
	err    error
}

func (f *fakeFetcher) Courses(_ context.Context, token string) ([]model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	return []model.Course{{ID: "1", Title: "Go", URL: "https://www.udemy.com/course/go/"}}, nil
}

type fixture struct {
	engine  *echo.Echo
	browser *fakeBrowser
	fetcher *fakeFetcher
	tracker *bridge.Tracker
}

func setup() (*fixture, *gofight.RequestConfig) {
	log := logger.Discard()

	f := &fixture{
		browser: &fakeBrowser{navigated: make(chan string, 1)},
		fetcher: &fakeFetcher{},
		tracker: bridge.NewTracker(log),
	}
	f.engine = bridge.EchoEngine(bridge.IOC{
		Version: "test",
		Browser: f.browser,
		Catalog: courses.New(f.fetcher, time.Minute, log),
		Tracker: f.tracker,
		Logger:  log,
		Targets: map[string]string{
			bridge.TargetLogin: "app://login",
			bridge.TargetUdemy: "https://www.udemy.com/",
			bridge.TargetHome:  "https://udeshare.app/",
		},
	})

	return f, gofight.New()
}

func TestRequestHome(t *testing.T) {
	f, r := setup()

	r.GET("/").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestVersion(t *testing.T) {
	f, r := setup()

	r.GET("/version").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestLogRoutes(t *testing.T) {
	f, _ := setup()

	log, hook := test.NewNullLogger()
	bridge.LogRoutes(f.engine, log)

	routes := []string{}
	for _, entry := range hook.AllEntries() {
		routes = append(routes, fmt.Sprintf("%s %s", entry.Data["method"], entry.Message))
	}
	assert.Equal(t, []string{
		"GET /connections",
		"DELETE /cookies",
		"POST /cookies",
		"POST /courses",
		"POST /navigate/:target",
		"GET /version",
		"GET /ws",
	}, routes)
}

func TestSetCookies(t *testing.T) {
	f, r := setup()

	params := gofight.D{
		"cookies": []gofight.D{
			{"name": "access_token", "value": "A", "domain": ".udemy.com", "path": "/", "secure": true},
			{"name": "dj_session_id", "value": "S", "domain": ".udemy.com", "secure": true, "httpOnly": true},
		},
	}

	r.POST("/cookies").SetHeader(jsonHeader).SetJSON(params).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"success":true,"applied":2}`, r.Body.String())
	})

	require.Len(t, f.browser.cookies, 2)
	assert.Equal(t, "access_token", f.browser.cookies[0].Name)
	assert.Equal(t, "dj_session_id", f.browser.cookies[1].Name)
	assert.Equal(t, "/", f.browser.cookies[1].Path)
	assert.True(t, f.browser.cookies[1].HTTPOnly)
}

func TestSetCookies_StopsAtFirstFailure(t *testing.T) {
	f, r := setup()
	f.browser.reject = "dj_session_id"

	params := gofight.D{
		"cookies": []gofight.D{
			{"name": "access_token", "value": "A"},
			{"name": "client_id", "value": "C"},
			{"name": "dj_session_id", "value": "S"},
			{"name": "csrftoken", "value": "X"},
		},
	}

	r.POST("/cookies").SetHeader(jsonHeader).SetJSON(params).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"success":false,"applied":2,"error":"invalid cookie domain"}`, r.Body.String())
	})

	require.Len(t, f.browser.cookies, 2)
	assert.Equal(t, "client_id", f.browser.cookies[1].Name)
}

func TestSetCookies_BadRequest(t *testing.T) {
	f, r := setup()

	r.POST("/cookies").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Request body can't be empty"}}`, r.Body.String())
	})

	r.POST("/cookies").SetHeader(jsonHeader).SetJSON(gofight.D{"cookies": []gofight.D{}}).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"No cookies given"}}`, r.Body.String())
	})

	r.POST("/cookies").SetHeader(jsonHeader).SetBody(`{"cookies":`).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Invalid request body"}}`, r.Body.String())
	})
}

func TestClearCookies(t *testing.T) {
	f, r := setup()
	params := gofight.D{"authToken": "T"}

	r.POST("/courses").SetHeader(jsonHeader).SetJSON(params).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})
	assert.Equal(t, 1, f.fetcher.calls)

	r.DELETE("/cookies").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"success":true}`, r.Body.String())
	})
	assert.Equal(t, 1, f.browser.cleared)

	// Cache purged
	r.POST("/courses").SetHeader(jsonHeader).SetJSON(params).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})
	assert.Equal(t, 2, f.fetcher.calls)
}

func TestNavigate(t *testing.T) {
	f, r := setup()

	r.POST("/navigate/udemy").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusAccepted, r.Code)
		assert.JSONEq(t, `{"target":"udemy","url":"https://www.udemy.com/"}`, r.Body.String())
	})

	select {
	case url := <-f.browser.navigated:
		assert.Equal(t, "https://www.udemy.com/", url)
	case <-time.After(time.Second):
		t.Fatal("navigation not performed")
	}

	r.POST("/navigate/elsewhere").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Unknown navigation target"}}`, r.Body.String())
	})
}

func TestCourses(t *testing.T) {
	f, r := setup()

	r.POST("/courses").SetHeader(jsonHeader).SetJSON(gofight.D{"authToken": "T"}).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"success":true,"courses":[{"id":"1","title":"Go","url":"https://www.udemy.com/course/go/"}]}`, r.Body.String())
	})

	r.POST("/courses").SetHeader(jsonHeader).SetJSON(gofight.D{"authToken": "T"}).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})
	assert.Equal(t, 1, f.fetcher.calls)

	r.POST("/courses").SetHeader(jsonHeader).SetJSON(gofight.D{"authToken": "T", "forceRefresh": true}).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})
	assert.Equal(t, 2, f.fetcher.calls)
	assert.Equal(t, []string{"T", "T"}, f.fetcher.tokens)
}

func TestCourses_MissingToken(t *testing.T) {
	f, r := setup()

	r.POST("/courses").SetHeader(jsonHeader).SetJSON(gofight.D{"forceRefresh": true}).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Missing auth token"}}`, r.Body.String())
	})
	assert.Equal(t, 0, f.fetcher.calls)
}

func TestCourses_BackendFailure(t *testing.T) {
	f, r := setup()
	f.fetcher.err = errors.New("Error 502")

	r.POST("/courses").SetHeader(jsonHeader).SetJSON(gofight.D{"authToken": "T"}).Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"success":false,"error":"Error 502"}`, r.Body.String())
	})
}

func TestConnections(t *testing.T) {
	f, r := setup()

	r.GET("/connections").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"total":0,"tabs":{}}`, r.Body.String())
	})

	f.tracker.Add("a", &fakeConn{})
	f.tracker.Add("a", &fakeConn{})
	f.tracker.Add("b", &fakeConn{})

	r.GET("/connections").Run(f.engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"total":3,"tabs":{"a":2,"b":1}}`, r.Body.String())
	})
}
