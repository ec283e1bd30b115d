package betterauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/moto-session/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BetterAuth route constants
const (
	RouteGetSession       = "/api/auth/get-session"
	RouteActiveMemberRole = "/api/auth/organization/get-active-member-role"
	RouteFullOrganization = "/api/auth/organization/get-full-organization"
	RouteSetActive        = "/api/auth/organization/set-active"
	RouteSignupWithOrg    = "/api/auth/signup-with-org"
)

const (
	contentTypeJSON = "application/json"
	maxBody         = 1 << 20
)

// StatusError is a non-2xx answer from BetterAuth.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("betterauth %s: status %d", e.Endpoint, e.StatusCode)
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Client calls the BetterAuth service. Authentication is by session
// cookie only; no bearer tokens are involved.
type Client struct {
	baseURL    string
	cookieName string
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithBreakerSettings replaces the default circuit breaker settings.
func WithBreakerSettings(st gobreaker.Settings) ClientOption {
	return func(cl *Client) {
		cl.breaker = newBreaker(st)
	}
}

func New(baseURL, cookieName string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookieName: cookieName,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	if c.breaker == nil {
		c.breaker = newBreaker(gobreaker.Settings{
			Name:        "betterauth",
			MaxRequests: 100,
			Interval:    5 * time.Second,
			Timeout:     3 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		})
	}
	return c
}

// newBreaker counts only transport errors and 5xx answers as failures. A
// 4xx is BetterAuth working as intended.
func newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker {
	st.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		code := statusCode(err)
		return code != 0 && code < http.StatusInternalServerError
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
	}
	return gobreaker.NewCircuitBreaker(st)
}

func (c *Client) CookieName() string {
	return c.cookieName
}

// Session binds the client to a browser's BetterAuth session cookie.
func (c *Client) Session(sessionToken string) *Session {
	return &Session{client: c, token: sessionToken}
}

type response struct {
	body    []byte
	cookies []*http.Cookie
}

// do sends one request through the breaker. sessionToken may be empty for
// unauthenticated endpoints. Non-2xx answers come back as *StatusError.
func (c *Client) do(ctx context.Context, method, route string, query map[string]string, sessionToken string, in any) (*response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("[betterauth %s] marshal: %w", route, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, body)
	if err != nil {
		return nil, fmt.Errorf("[betterauth %s] new request: %w", route, err)
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", contentTypeJSON)
	if in != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: sessionToken})
	}

	out, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Endpoint: route, StatusCode: resp.StatusCode, Body: b}
		}
		return &response{body: b, cookies: resp.Cookies()}, nil
	})

	status := "error"
	switch {
	case err == nil:
		status = "2xx"
	case statusCode(err) != 0:
		status = strconv.Itoa(statusCode(err)/100) + "xx"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "breaker_open"
	}
	metrics.BetterAuthRequests.WithLabelValues(route, status).Inc()

	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, fmt.Errorf("[betterauth %s] request: %w", route, err)
	}
	return out.(*response), nil
}

// decode unmarshals a response body. It reports false for an empty or null
// body, which BetterAuth uses for "nothing here".
func decode(route string, b []byte, out any) (bool, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, fmt.Errorf("[betterauth %s] decode: %w", route, err)
	}
	return true, nil
}
