package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/mdouchement/udeshare/internal/model"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Endpoints of the backend API.
const (
	PathLogin          = "/api/v1/auth/login"
	PathOptimalAccount = "/api/v1/udemy-accounts/optimal-account"
	PathCourses        = "/api/v1/courses"
)

type (
	// A Client defines all interactions that can be performed on the backend.
	Client interface {
		// Login authenticates the user and returns its session (without login time).
		Login(ctx context.Context, params LoginParams) (model.Session, error)
		// OptimalAccount returns the Udemy account selected by the backend for the token's owner.
		OptimalAccount(ctx context.Context, token string) (model.Account, error)
		// Courses returns the courses available to the token's owner.
		Courses(ctx context.Context, token string) ([]model.Course, error)
	}

	// LoginParams are the parameters sent to the login endpoint.
	LoginParams struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		DeviceID  string `json:"device_id"`
		UserAgent string `json:"user_agent"`
		IPAddress string `json:"ip_address"`
	}

	client struct {
		http     *http.Client
		endpoint string
	}
)

// NewDefaultClient returns a new Client with default HTTP client.
func NewDefaultClient(endpoint string) (Client, error) {
	return NewClient(http.DefaultClient, endpoint)
}

// NewClient returns a new Client.
func NewClient(c *http.Client, endpoint string) (Client, error) {
	_, err := url.Parse(endpoint)
	return &client{endpoint: endpoint, http: c}, errors.Wrap(err, "could not parse endpoint")
}

func (c *client) Login(ctx context.Context, params LoginParams) (model.Session, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return model.Session{}, errors.Wrap(err, "could not serialize credentials")
	}

	v, raw, err := c.do(ctx, http.MethodPost, PathLogin, "", body)
	if err != nil {
		return model.Session{}, err
	}

	//
	// Process response
	var session model.Session
	if err = json.Unmarshal(raw, &session); err != nil {
		return model.Session{}, errors.Wrap(err, "could not parse response")
	}
	session.Token = string(v.GetStringBytes("token"))
	if session.Token == "" {
		return model.Session{}, errors.New("no token in login response")
	}

	return session, nil
}

func (c *client) OptimalAccount(ctx context.Context, token string) (model.Account, error) {
	_, raw, err := c.do(ctx, http.MethodGet, PathOptimalAccount, token, nil)
	if err != nil {
		return model.Account{}, err
	}

	var account model.Account
	return account, errors.Wrap(json.Unmarshal(raw, &account), "could not parse response")
}

func (c *client) Courses(ctx context.Context, token string) ([]model.Course, error) {
	v, _, err := c.do(ctx, http.MethodGet, PathCourses, token, nil)
	if err != nil {
		return nil, err
	}

	if v.Type() == fastjson.TypeObject {
		v = v.Get("courses")
	}
	if v == nil || v.Type() != fastjson.TypeArray {
		return nil, errors.New("could not parse response: no course list")
	}

	var courses []model.Course
	err = json.Unmarshal(v.MarshalTo(nil), &courses)
	return courses, errors.Wrap(err, "could not parse response")
}

// do performs the request and returns the response payload, unwrapped from its `data` envelope.
func (c *client) do(ctx context.Context, method, p, token string, body []byte) (*fastjson.Value, []byte, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not parse endpoint")
	}
	u.Path = path.Join(u.Path, p)

	//
	// Build request
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not build request")
	}
	req.Close = true
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	if token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	//
	// Perform request
	res, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, nil, parseError(res.Body, res.StatusCode)
	}

	//
	// Process response
	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not read response")
	}

	v, err := fastjson.ParseBytes(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not parse response")
	}
	if data := v.Get("data"); data != nil && data.Type() != fastjson.TypeNull {
		v = data
	}

	return v, v.MarshalTo(nil), nil
}

// LookupIP returns the public IP address given as plain text by the lookup URL.
func LookupIP(ctx context.Context, c *http.Client, lookupURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "could not build request")
	}

	res, err := c.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "could not perform request")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("ip lookup failed: %s", res.Status)
	}

	ip, err := io.ReadAll(io.LimitReader(res.Body, 64))
	return strings.TrimSpace(string(ip)), errors.Wrap(err, "could not read response")
}
