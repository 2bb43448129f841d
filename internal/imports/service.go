package imports

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/medistock/medistock/internal/apiclient"
)

// File is a downloadable document.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// RowError is one rejected spreadsheet row reported by the backend.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result is the backend's import report.
type Result struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors"`
}

// Message summarises the result for the success toast.
func (r Result) Message() string {
	msg := fmt.Sprintf("Imported %d product", r.Imported)
	if r.Imported != 1 {
		msg += "s"
	}
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" (%d skipped)", r.Skipped)
	}
	return msg
}

// Service talks to /products/import.
type Service struct {
	client   *apiclient.Client
	maxBytes int64
}

// NewService constructs a Service. maxBytes <= 0 uses DefaultMaxBytes.
func NewService(client *apiclient.Client, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{client: client, maxBytes: maxBytes}
}

// MaxBytes is the upload limit.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Template downloads the backend's template, generating one locally when the
// backend does not provide it.
func (s *Service) Template(ctx context.Context) (*File, error) {
	resp, err := s.client.Send(ctx, apiclient.Request{Method: http.MethodGet, Path: "/products/import/template"})
	if err == nil && len(resp.Body) > 0 {
		name := resp.Filename
		if name == "" {
			name = templateFilename
		}
		contentType := resp.ContentType
		if contentType == "" {
			contentType = xlsxContentType
		}
		return &File{Name: name, ContentType: contentType, Body: resp.Body}, nil
	}
	if err != nil && !apiclient.IsStatus(err, http.StatusNotFound) {
		return nil, err
	}
	body, genErr := GenerateTemplate()
	if genErr != nil {
		return nil, genErr
	}
	return &File{Name: templateFilename, ContentType: xlsxContentType, Body: body}, nil
}

// Import checks the upload and forwards it as multipart form data.
func (s *Service) Import(ctx context.Context, filename string, data []byte) (*Result, *Upload, error) {
	up, err := Check(filename, data, s.maxBytes)
	if err != nil {
		return nil, nil, err
	}
	body, contentType, err := multipartBody(up)
	if err != nil {
		return nil, up, err
	}
	raw, err := s.client.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "/products/import",
		RawBody:     body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, up, err
	}
	result, ok := apiclient.UnwrapRecord[Result](raw)
	if !ok {
		result = Result{Imported: up.Rows}
	}
	return &result, up, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartBody(up *Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+quoteEscaper.Replace(up.Filename)+`"`)
	header.Set("Content-Type", up.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
