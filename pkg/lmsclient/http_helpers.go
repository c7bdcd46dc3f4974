package lmsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/lmsconsole/pkg/idx"
)

// Request describes a call to the backend. The body is kept as bytes so
// the request can be replayed after a token refresh.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
}

// NewJSONRequest builds a Request with v marshaled as a JSON body.
// A nil v produces a request without a body.
func NewJSONRequest(method, path string, v any) (*Request, error) {
	req := &Request{Method: method, Path: path, Header: http.Header{}}
	if v == nil {
		return req, nil
	}

	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req.Body = body
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// Do sends req with the current session token attached.
//
// Responses other than 401 are returned as-is and the caller owns the body.
// A 401 hands the request to the refresh coordinator: once a fresh token is
// available the request is sent again, exactly once. A second 401 is
// returned as an *APIError matching ErrUnauthorized, a failed refresh as a
// *RefreshError matching ErrSessionExpired.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	token, _ := c.tokens.Token()

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	fresh, err := c.coordinator.awaitToken(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err = c.send(ctx, req, fresh)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp, body)
	}

	return resp, nil
}

// send performs a single HTTP exchange. An empty token sends the request
// unauthenticated.
func (c *Client) send(ctx context.Context, r *Request, token string) (*http.Response, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.url(r.Path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("X-Request-ID", idx.New().String())

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// refreshToken calls the refresh endpoint directly on the HTTP client,
// bypassing Do so a failing refresh can never trigger another refresh.
func (c *Client) refreshToken(ctx context.Context) (*RefreshResponse, error) {
	var body io.Reader
	if rt := c.tokens.RefreshCredential(); rt != "" {
		b, err := json.Marshal(map[string]string{"refreshToken": rt})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.refreshPath), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", idx.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.refreshHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var refreshResp RefreshResponse
	if err := decodeJSON(resp, &refreshResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &refreshResp, nil
}

// refreshHTTPClient returns HTTPClient without its own timeout. The refresh
// context already carries the refresh timeout, and a shorter client timeout
// would otherwise cut the refresh off first.
func (c *Client) refreshHTTPClient() *http.Client {
	if c.HTTPClient.Timeout == 0 {
		return c.HTTPClient
	}
	hc := *c.HTTPClient
	hc.Timeout = 0
	return &hc
}

// doJSON sends an authenticated request with in as the JSON body (nil for
// none) and decodes the response into out (nil to discard it).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, expectedStatus int) error {
	req, err := NewJSONRequest(method, path, in)
	if err != nil {
		return err
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if out == nil {
		return checkStatus(resp, expectedStatus)
	}
	return decodeJSON(resp, out, expectedStatus)
}

// decodeJSON decodes a JSON response into the target.
// Returns an *APIError if the status is not the expected one.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return &APIError{StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatus returns an *APIError if the response status is not the expected one.
func checkStatus(resp *http.Response, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return &APIError{StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	return nil
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
