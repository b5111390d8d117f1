// Package remote is the HTTP client for the innersync upload API.
//
// Endpoints:
//
//	POST {base}/api/auth/login   JSON {email, password} -> {token}
//	POST {base}/api/sync/upload  multipart: payloadHash field + "files" parts
//
// Uploads authenticate with a bearer token through golang.org/x/oauth2 and
// are throttled with golang.org/x/time/rate.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
	"github.com/gmacarthur/innersync-desktop/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// ProactiveRate is the steady request rate towards the API (req/sec).
	ProactiveRate = 1.0

	// Burst allows an upload, a re-login and the retried upload back to back.
	Burst = 3

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 4096

	loginPath  = "/api/auth/login"
	uploadPath = "/api/sync/upload"
)

// Ensure Client implements the interface.
var _ driven.RemoteClient = (*Client)(nil)

// Client calls the innersync API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the base HTTP client. Bearer auth is layered on top of
// its transport for uploads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit overrides the request throttle.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(ProactiveRate), Burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token. Missing credentials yield "" and
// no error; any HTTP failure is an error wrapping domain.ErrLoginFailed.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if !creds.IsSet() {
		return "", nil
	}

	body, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return "", fmt.Errorf("encoding login: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLoginFailed, err)
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrLoginFailed, err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", fmt.Errorf("%w: empty token in response", domain.ErrLoginFailed)
	}
	return strings.TrimSpace(out.Token), nil
}

// Upload sends payload authenticated with token.
func (c *Client) Upload(ctx context.Context, token string, payload domain.Payload) (*domain.RemoteResponse, error) {
	body, contentType, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.authClient(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var out domain.RemoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if out.Status == "" {
		out.Status = domain.RemoteStatusOK
	}
	return &out, nil
}

// authClient returns an HTTP client that sends token as a bearer credential.
func (c *Client) authClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = c.http.Timeout
	return hc
}

// encodePayload builds the multipart upload body.
func encodePayload(payload domain.Payload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("payloadHash", payload.Hash); err != nil {
		return nil, "", fmt.Errorf("encoding payload: %w", err)
	}
	for _, f := range payload.Files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("encoding %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("encoding %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encoding payload: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// checkResponse converts non-2xx answers to *APIError.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(data))

	var structured struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &structured) == nil {
		switch {
		case structured.Message != "":
			msg = structured.Message
		case structured.Error != "":
			msg = structured.Error
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		URL:        resp.Request.URL.String(),
	}
}
