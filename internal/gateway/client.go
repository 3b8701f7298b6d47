package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"medilink-client/internal/config"
	"medilink-client/internal/logger"
)

const maxErrorBody = 512

// Session is the part of the session provider the gateway needs
type Session interface {
	Token() string
	Invalidate(ctx context.Context, token string) bool
}

// Navigator sends the user back to the login screen
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() { f() }

// Client is the single configured channel to the backend. Every call carries
// the current bearer token, and authorization failures end the session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	navigator  Navigator
}

func NewClient(baseURL string, timeout time.Duration, session Session, navigator Navigator) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
		navigator:  navigator,
	}
}

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any // encoded as JSON when non-nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// Do sends r and decodes a JSON response into out when out is non-nil
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	requestID := uuid.NewString()
	op := r.Method + " " + r.Path
	logger.ExternalServiceCall("backend", op, "request_id", requestID)

	req, err := c.newRequest(ctx, r, requestID)
	if err != nil {
		logger.ExternalServiceResult("backend", op, err, "request_id", requestID)
		return err
	}

	// Remember which token went out so a late 401 cannot end a newer session
	sentToken := c.session.Token()
	if sentToken != "" {
		req.Header.Set("Authorization", "Bearer "+sentToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &NetworkError{Method: r.Method, Path: r.Path, Err: err}
		logger.ExternalServiceResult("backend", op, netErr, "request_id", requestID)
		return netErr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := c.handleFailure(ctx, r, resp, sentToken)
		logger.ExternalServiceResult("backend", op, err, "request_id", requestID, "status", resp.StatusCode)
		return err
	}

	logger.ExternalServiceResult("backend", op, nil, "request_id", requestID, "status", resp.StatusCode)
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Message: "unexpected response body", Err: err}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r Request, requestID string) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", requestID)
	return req, nil
}

func (c *Client) handleFailure(ctx context.Context, r Request, resp *http.Response, sentToken string) error {
	netErr := &NetworkError{
		Method:     r.Method,
		Path:       r.Path,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Body),
	}

	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return netErr
	}
	// A rejected login or registration is a credentials problem, not an expired
	// session. Every other route, public catalogue reads included, ends it.
	if config.GetSecurityLevel(r.Method, r.Path) == config.SecurityCredentials {
		return netErr
	}

	// Nothing to expire for anonymous callers
	if sentToken == "" {
		return netErr
	}
	// Only the caller that actually ended the session redirects
	if c.session.Invalidate(ctx, sentToken) {
		logger.Info("Session rejected by backend, signing out", "path", r.Path, "status", resp.StatusCode)
		if c.navigator != nil {
			c.navigator.RedirectToLogin()
		}
	}
	return fmt.Errorf("%w: %w", ErrAuthorizationExpired, netErr)
}

// errorMessage extracts a readable message from an error response body
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}
