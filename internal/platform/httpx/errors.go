// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/feedback"
	"github.com/medistock/medistock/internal/platform/validation"
)

// Sentinel errors for handlers serving JSON.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps errors to RFC7807 responses. Backend failures keep their
// status and carry the same message a toast would show.
func RespondError(w http.ResponseWriter, err error) {
	if errs, ok := validation.As(err); ok {
		JSON(w, http.StatusUnprocessableEntity, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusUnprocessableEntity,
			Detail: errs.UserMessage(),
			Errors: errs,
		})
		return
	}
	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &apiErr):
		Problem(w, apiErr.Status, http.StatusText(apiErr.Status), feedback.ExtractErrorMessage(err))
	case apiclient.IsUnreachable(err):
		Problem(w, http.StatusBadGateway, "Bad Gateway", feedback.NetworkMessage)
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", feedback.PermissionDeniedMessage)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, apiclient.ErrNoToken):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	default:
		var userErr feedback.UserError
		if errors.As(err, &userErr) {
			Problem(w, http.StatusBadRequest, "Bad Request", userErr.UserMessage())
			return
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
