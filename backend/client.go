package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Backend route constants
const (
	RouteLogin   = "/auth/login"
	RouteRefresh = "/auth/refresh"
)

const (
	contentTypeJSON = "application/json"
	maxErrorBody    = 4 << 10
)

// Client talks to the moto REST API auth endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

func New(baseURL string, options ...ClientOption) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range options {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(10 * time.Second)
	}
	return c
}

// BaseURL returns the REST API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email/password for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("[backend.Login] marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteLogin, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("[backend.Login] new request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	return c.doTokenRequest(req, RouteLogin)
}

// Refresh presents the refresh token as a bearer credential and returns the
// rotated pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteRefresh, nil)
	if err != nil {
		return nil, fmt.Errorf("[backend.Refresh] new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	req.Header.Set("Accept", contentTypeJSON)

	tokens, err := c.doTokenRequest(req, RouteRefresh)
	if err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, errors.New("[backend.Refresh] response missing access_token")
	}
	return tokens, nil
}

func (c *Client) doTokenRequest(req *http.Request, endpoint string) (*TokenResponse, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[backend %s] request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(b)}
	}

	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("[backend %s] decode: %w", endpoint, err)
	}
	return &tokens, nil
}
