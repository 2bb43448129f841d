// Package feedback turns API failures into user-facing messages and toasts.
package feedback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Kind classifies an error for logging and presentation.
type Kind string

// Error kinds.
const (
	KindPermission   Kind = "permission"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindValidation   Kind = "validation"
	KindRateLimited  Kind = "rate_limited"
	KindServer       Kind = "server"
	KindUnavailable  Kind = "unavailable"
	KindNetwork      Kind = "network"
	KindUnknown      Kind = "unknown"
)

// UserError is implemented by errors whose message is safe to show as is,
// such as local form validation failures.
type UserError interface {
	error
	UserMessage() string
}

// Classify maps err onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusForbidden:
			return KindPermission
		case apiErr.Status == http.StatusUnauthorized:
			return KindUnauthorized
		case apiErr.Status == http.StatusNotFound:
			return KindNotFound
		case apiErr.Status == http.StatusConflict:
			return KindConflict
		case apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity:
			return KindValidation
		case apiErr.Status == http.StatusTooManyRequests:
			return KindRateLimited
		case apiErr.Status == http.StatusServiceUnavailable:
			return KindUnavailable
		case apiErr.Status >= 500:
			return KindServer
		}
		if _, ok := foreignKeyText(apiErr); ok {
			return KindConflict
		}
		return KindUnknown
	}
	if errors.Is(err, apiclient.ErrNoToken) || errors.Is(err, shared.ErrUnauthenticated) {
		return KindUnauthorized
	}
	if apiclient.IsUnreachable(err) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var userErr UserError
	if errors.As(err, &userErr) {
		return KindValidation
	}
	return KindUnknown
}

type extractOptions struct {
	fallback string
}

// Option tunes ExtractErrorMessage.
type Option func(*extractOptions)

// WithFallback replaces the final "Operation failed" fallback.
func WithFallback(msg string) Option {
	return func(o *extractOptions) {
		if strings.TrimSpace(msg) != "" {
			o.fallback = msg
		}
	}
}

// ExtractErrorMessage produces one human readable sentence for err. Permission
// errors win over any payload; then the payload message, the nested error
// message or details, a rewritten foreign key violation, the status table,
// and finally the fallback.
func ExtractErrorMessage(err error, opts ...Option) string {
	cfg := extractOptions{fallback: FallbackMessage}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err == nil {
		return cfg.fallback
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusForbidden {
			return PermissionDeniedMessage
		}
		candidate := payloadMessage(apiErr.Payload)
		if rewritten, ok := rewriteForeignKey(candidate); ok {
			return rewritten
		}
		if rewritten, ok := foreignKeyText(apiErr); ok {
			return rewritten
		}
		if candidate != "" {
			return candidate
		}
		if msg, ok := StatusMessage(apiErr.Status); ok {
			return msg
		}
		return cfg.fallback
	}

	switch {
	case errors.Is(err, apiclient.ErrNoToken), errors.Is(err, shared.ErrUnauthenticated):
		msg, _ := StatusMessage(http.StatusUnauthorized)
		return msg
	case apiclient.IsUnreachable(err), errors.Is(err, context.DeadlineExceeded):
		return NetworkMessage
	}
	var userErr UserError
	if errors.As(err, &userErr) {
		if msg := strings.TrimSpace(userErr.UserMessage()); msg != "" {
			return msg
		}
	}
	return cfg.fallback
}

func foreignKeyText(apiErr *apiclient.Error) (string, bool) {
	return rewriteForeignKey(string(apiErr.Body))
}

// payloadMessage walks the known error payload shapes:
// {message}, {data: {message}}, {error: {message|details}}, {data: {error: ...}}.
func payloadMessage(payload any) string {
	switch p := payload.(type) {
	case string:
		return strings.TrimSpace(p)
	case map[string]any:
		if data, ok := p["data"].(map[string]any); ok {
			if msg := firstText(data["message"]); msg != "" {
				return msg
			}
			if msg := nestedError(data["error"]); msg != "" {
				return msg
			}
		}
		if msg := firstText(p["message"]); msg != "" {
			return msg
		}
		if msg := nestedError(p["error"]); msg != "" {
			return msg
		}
	}
	return ""
}

func nestedError(value any) string {
	switch e := value.(type) {
	case map[string]any:
		if msg := firstText(e["message"]); msg != "" {
			return msg
		}
		return firstText(e["details"])
	case string:
		// A bare "error" string is usually the reason phrase ("Conflict"),
		// which the status table words better.
		return ""
	}
	return ""
}

// firstText returns a string value, or the first string of an array.
func firstText(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
			if m, ok := item.(map[string]any); ok {
				if s := firstText(m["message"]); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// Options control HandleError.
type Options struct {
	// Operation names the call site in logs, e.g. "delete customer".
	Operation string
	// Method is the HTTP method of the failed operation; when empty it is
	// taken from the API error.
	Method string
	// Silent logs without queuing a toast.
	Silent bool
	// SuppressForbiddenOnRead skips the toast for 403s on GET operations,
	// which would otherwise fire on every list view the user cannot see.
	SuppressForbiddenOnRead bool
	// Fallback replaces "Operation failed".
	Fallback string
	Logger   *slog.Logger
}

// HandleError logs err, queues an error toast on the request session unless
// suppressed, and returns the user-facing message. It never panics.
func HandleError(ctx context.Context, err error, opts Options) (msg string) {
	msg = FallbackMessage
	defer func() {
		if r := recover(); r != nil {
			msg = FallbackMessage
		}
	}()

	msg = ExtractErrorMessage(err, WithFallback(opts.Fallback))
	kind := Classify(err)

	method := strings.ToUpper(opts.Method)
	attrs := []any{slog.String("operation", opts.Operation), slog.String("kind", string(kind)), slog.Any("error", err)}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if method == "" {
			method = apiErr.Method
		}
		attrs = append(attrs, slog.Int("status", apiErr.Status), slog.String("path", apiErr.Path))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "operation failed", attrs...)

	if opts.Silent {
		return msg
	}
	if opts.SuppressForbiddenOnRead && kind == KindPermission && (method == "" || method == http.MethodGet) {
		return msg
	}
	if sess := shared.SessionFromContext(ctx); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: msg})
	}
	return msg
}

// HandleSuccess queues a success toast.
func HandleSuccess(ctx context.Context, message string) {
	if sess := shared.SessionFromContext(ctx); sess != nil && message != "" {
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: message})
	}
}
