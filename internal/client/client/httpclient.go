package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/agentdeck/internal/common"
	"github.com/dmitrijs2005/agentdeck/internal/models"
)

const (
	registerPath = "/api/auth/register"
	loginPath    = "/api/auth/login"
	mePath       = "/api/auth/me"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type meResponse struct {
	User *models.User `json:"user"`
}

// NewHTTPClient returns a client for the backend rooted at baseURL. A zero
// timeout means requests may hang as long as the backend does.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, email, password string, fullName *string) (*AuthResponse, error) {
	req := registerRequest{Email: email, Password: password, FullName: fullName}
	return c.authenticate(ctx, registerPath, req, DefaultRegisterMessage)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := loginRequest{Email: email, Password: password}
	return c.authenticate(ctx, loginPath, req, DefaultLoginMessage)
}

func (c *HTTPClient) authenticate(ctx context.Context, path string, payload any, defaultMessage string) (*AuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &AuthRejectedError{
			StatusCode: resp.StatusCode,
			Message:    rejectionMessage(resp.Body, defaultMessage),
		}
	}

	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if out.Token == "" {
		return nil, &AuthRejectedError{StatusCode: resp.StatusCode, Message: defaultMessage}
	}
	return &out, nil
}

// Me probes the identity endpoint with token. Any non-success status is
// reported as ErrUnauthorized regardless of the body.
func (c *HTTPClient) Me(ctx context.Context, token string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mePath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.AuthorizationHeader, common.BearerValue(token))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	var out meResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode me response: %w", err)
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: empty user", ErrUnauthorized)
	}
	return out.User, nil
}

func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func rejectionMessage(body io.Reader, def string) string {
	var e errorResponse
	if err := json.NewDecoder(body).Decode(&e); err != nil || e.Error == "" {
		return def
	}
	return e.Error
}
