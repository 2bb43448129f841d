package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/medistock/medistock/internal/shared"
)

var (
	// ErrUnreachable wraps transport failures (DNS, refused connections, timeouts).
	ErrUnreachable = errors.New("api: backend unreachable")
	// ErrNoToken indicates an authenticated call was attempted without a session token.
	ErrNoToken = errors.New("api: no access token")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Method string
	Path   string
	// Payload is the decoded JSON body: a map, a slice, a string or nil.
	Payload any
	Body    []byte
}

func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Status: status, Method: method, Path: path, Body: body}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		var payload any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			e.Payload = payload
		} else {
			e.Payload = string(trimmed)
		}
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Is lets a 404 match shared.ErrNotFound so handlers can render the
// not-found page without inspecting statuses.
func (e *Error) Is(target error) bool {
	return target == shared.ErrNotFound && e.Status == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsStatus reports whether err is a backend error with the given status.
func IsStatus(err error, status int) bool {
	return StatusOf(err) == status
}
