// Package apiclient talks to the inventory REST API and normalizes its
// response envelopes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 32 << 20

// TokenSource supplies bearer tokens for the current request.
type TokenSource interface {
	// Token returns the access token bound to ctx.
	Token(ctx context.Context) (string, error)
	// Refresh exchanges the refresh token for a new access token.
	Refresh(ctx context.Context) (string, error)
}

// Observer receives one callback per backend call.
type Observer interface {
	ObserveBackendCall(method, resource string, status int, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Observer   Observer
}

// Client is the single configured HTTP client for the backend.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
	observer Observer
	tokens   TokenSource
}

// NewClient constructs a Client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     httpClient,
		logger:   logger,
		observer: opts.Observer,
	}
}

// SetTokenSource installs the token source used for authenticated calls.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON encoded unless RawBody is set.
	Body        any
	RawBody     []byte
	ContentType string
	// Anonymous skips the Authorization header and the refresh retry.
	Anonymous bool
	// Token overrides the token source and disables the refresh retry.
	Token string
}

// Response is a raw backend response, used for file downloads.
type Response struct {
	Status      int
	ContentType string
	Filename    string
	Body        []byte
}

// Do executes req and returns the JSON body of a 2xx response.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

// Send executes req and returns the raw response. A 401 on an authenticated
// call triggers one token refresh and one retry.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err == nil || req.Anonymous || req.Token != "" || c.tokens == nil || !IsStatus(err, http.StatusUnauthorized) {
		return resp, err
	}
	if _, refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
		c.logger.Warn("api token refresh failed", slog.Any("error", refreshErr))
		return nil, err
	}
	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("X-Request-ID", requestID(ctx))
	switch {
	case req.Anonymous:
	case req.Token != "":
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	default:
		if c.tokens == nil {
			return nil, ErrNoToken
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, ErrNoToken
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(method, req.Path, 0, start)
		c.logger.Warn("api call failed", slog.String("method", method), slog.String("path", req.Path), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, req.Path, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()
	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		c.observe(method, req.Path, httpResp.StatusCode, start)
		return nil, fmt.Errorf("%w: %s %s: read body: %w", ErrUnreachable, method, req.Path, err)
	}
	c.observe(method, req.Path, httpResp.StatusCode, start)
	c.logger.Debug("api call", slog.String("method", method), slog.String("path", req.Path), slog.Int("status", httpResp.StatusCode), slog.Duration("elapsed", time.Since(start)))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newError(method, req.Path, httpResp.StatusCode, payload)
	}
	return &Response{
		Status:      httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Filename:    filenameFrom(httpResp.Header.Get("Content-Disposition")),
		Body:        payload,
	}, nil
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(method, resourceOf(path), status, time.Since(start))
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.RawBody != nil {
		return bytes.NewReader(req.RawBody), req.ContentType, nil
	}
	if req.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("api: encode body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// resourceOf keeps metric cardinality bounded: "/products/42/pay" -> "products".
func resourceOf(path string) string {
	path = strings.Trim(path, "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return "root"
	}
	return path
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// IsUnreachable reports whether err is a transport failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
