package betterauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jrsteele09/moto-session/organizations"
)

// SignupRequest creates a user and their organization in one step.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OrgName  string `json:"orgName"`
	OrgSlug  string `json:"orgSlug"`
}

type SignupResult struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Organization organizations.Organization `json:"organization"`
	Session      struct {
		ID        string `json:"id"`
		Token     string `json:"token,omitempty"`
		ExpiresAt string `json:"expiresAt,omitempty"`
	} `json:"session"`

	// Cookies are the session cookies BetterAuth set on the response.
	Cookies []*http.Cookie `json:"-"`
}

// SignupError is a refused signup. Field names the offending input when the
// failure is a validation error (for example a taken slug).
type SignupError struct {
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
}

func (e *SignupError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("signup failed (%d) on %s: %s", e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("signup failed (%d): %s", e.Status, e.Message)
}

// SignupWithOrganization creates the user and organization. Creation is
// all-or-nothing on the server; a failure leaves nothing behind.
func (c *Client) SignupWithOrganization(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	resp, err := c.do(ctx, http.MethodPost, RouteSignupWithOrg, nil, "", req)
	if err != nil {
		var se *StatusError
		if !errors.As(err, &se) {
			return nil, err
		}
		signupErr := &SignupError{Status: se.StatusCode}
		if json.Unmarshal(se.Body, signupErr) != nil || signupErr.Message == "" {
			signupErr.Message = http.StatusText(se.StatusCode)
		}
		return nil, signupErr
	}

	var result SignupResult
	if _, err := decode(RouteSignupWithOrg, resp.body, &result); err != nil {
		return nil, err
	}
	result.Cookies = resp.cookies
	return &result, nil
}
