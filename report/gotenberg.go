// Package report converts rendered HTML documents to PDF through Gotenberg.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no Gotenberg URL is set.
var ErrNotConfigured = errors.New("report: pdf service not configured")

// maxPDFBytes caps how much of a converted document is read.
const maxPDFBytes = 20 << 20

// Document is one HTML page plus the assets it links relatively.
type Document struct {
	HTML   string
	Assets map[string][]byte
	// Landscape switches the page orientation.
	Landscape bool
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client. An empty baseURL yields a client whose
// calls return ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether a Gotenberg URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// Convert renders doc into a PDF document. Gotenberg requires the page to
// be named index.html; assets are sent alongside it.
func (c *Client) Convert(ctx context.Context, doc Document) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := addFile(writer, "index.html", []byte(doc.HTML)); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Assets))
	for name := range doc.Assets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := addFile(writer, name, doc.Assets[name]); err != nil {
			return nil, err
		}
	}
	if doc.Landscape {
		if err := writer.WriteField("landscape", "true"); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("printBackground", "true"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
}

func addFile(w *multipart.Writer, name string, content []byte) error {
	part, err := w.CreateFormFile("files", name)
	if err != nil {
		return err
	}
	_, err = part.Write(content)
	return err
}
