package feedback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

func apiError(status int, method string, payload any) *apiclient.Error {
	return &apiclient.Error{Status: status, Method: method, Path: "/customers/1", Payload: payload}
}

type formErr struct{ msg string }

func (e formErr) Error() string       { return "form: " + e.msg }
func (e formErr) UserMessage() string { return e.msg }

func TestForbiddenAlwaysYieldsPermissionMessage(t *testing.T) {
	err := apiError(http.StatusForbidden, http.MethodDelete, map[string]any{"message": "role SALES lacks customers.delete"})
	assert.Equal(t, PermissionDeniedMessage, ExtractErrorMessage(err))
	assert.Equal(t, KindPermission, Classify(err))
}

func TestForeignKeyViolationIsRewritten(t *testing.T) {
	raw := `update or delete on table "customer" violates foreign key constraint "sale_customer_id_fkey" on table "sale"`
	err := apiError(http.StatusInternalServerError, http.MethodDelete, map[string]any{
		"success": false,
		"message": raw,
	})

	msg := ExtractErrorMessage(err)
	assert.Contains(t, msg, "sales")
	assert.NotContains(t, msg, "violates")
	assert.NotContains(t, msg, "fkey")
}

func TestForeignKeyInNestedErrorDetails(t *testing.T) {
	err := apiError(http.StatusBadRequest, http.MethodDelete, map[string]any{
		"error": map[string]any{"details": `delete on table "product" violates foreign key constraint "x" on table "product_batch"`},
	})
	assert.Equal(t, "Cannot delete this record because it has associated product batches. Remove or reassign the related product batches first.", ExtractErrorMessage(err))
}

func TestForeignKeyUnknownTable(t *testing.T) {
	err := apiError(http.StatusConflict, http.MethodDelete, `violates foreign key constraint "a" on table "ledger"`)
	assert.Contains(t, ExtractErrorMessage(err), "associated other records")
}

func TestPayloadMessagePriority(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		want    string
	}{
		{"data message", map[string]any{"data": map[string]any{"message": "Batch expired"}, "message": "outer"}, "Batch expired"},
		{"top level", map[string]any{"message": "Email already registered"}, "Email already registered"},
		{"array message", map[string]any{"message": []any{"name should not be empty", "email must be an email"}}, "name should not be empty"},
		{"nested error message", map[string]any{"error": map[string]any{"message": "Insufficient stock"}}, "Insufficient stock"},
		{"nested error details", map[string]any{"error": map[string]any{"details": "Quantity exceeds stock"}}, "Quantity exceeds stock"},
		{"data nested error", map[string]any{"data": map[string]any{"error": map[string]any{"message": "Locked"}}}, "Locked"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractErrorMessage(apiError(http.StatusBadRequest, http.MethodPost, tc.payload)))
		})
	}
}

func TestStatusTableWhenPayloadIsSilent(t *testing.T) {
	for status, want := range statusMessages {
		err := apiError(status, http.MethodPost, map[string]any{"error": "Reason Phrase"})
		assert.Equal(t, want, ExtractErrorMessage(err), "status %d", status)
	}
}

func TestFallbacks(t *testing.T) {
	assert.Equal(t, FallbackMessage, ExtractErrorMessage(apiError(418, http.MethodPost, nil)))
	assert.Equal(t, FallbackMessage, ExtractErrorMessage(errors.New("boom")))
	assert.Equal(t, FallbackMessage, ExtractErrorMessage(nil))
	assert.Equal(t, "Could not save sale", ExtractErrorMessage(errors.New("boom"), WithFallback("Could not save sale")))
}

func TestNetworkAndLocalErrors(t *testing.T) {
	network := fmt.Errorf("%w: GET /products: dial tcp: refused", apiclient.ErrUnreachable)
	assert.Equal(t, NetworkMessage, ExtractErrorMessage(network))
	assert.Equal(t, KindNetwork, Classify(network))

	local := formErr{msg: "License expiry date must be after issue date"}
	assert.Equal(t, local.msg, ExtractErrorMessage(local))
	assert.Equal(t, KindValidation, Classify(local))

	assert.Equal(t, KindUnauthorized, Classify(apiclient.ErrNoToken))
}

func TestClassifyStatuses(t *testing.T) {
	cases := map[int]Kind{
		401: KindUnauthorized,
		404: KindNotFound,
		409: KindConflict,
		422: KindValidation,
		429: KindRateLimited,
		500: KindServer,
		502: KindServer,
		503: KindUnavailable,
	}
	for status, want := range cases {
		assert.Equal(t, want, Classify(apiError(status, http.MethodGet, nil)), "status %d", status)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleErrorQueuesToast(t *testing.T) {
	sess := &shared.Session{}
	ctx := shared.ContextWithSession(context.Background(), sess)

	msg := HandleError(ctx, apiError(http.StatusNotFound, http.MethodGet, nil), Options{Operation: "load customer", Logger: quietLogger()})

	flashes := sess.PeekFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashError, flashes[0].Kind)
	assert.Equal(t, msg, flashes[0].Message)
}

func TestHandleErrorSuppressesForbiddenReads(t *testing.T) {
	sess := &shared.Session{}
	ctx := shared.ContextWithSession(context.Background(), sess)

	msg := HandleError(ctx, apiError(http.StatusForbidden, http.MethodGet, nil), Options{SuppressForbiddenOnRead: true, Logger: quietLogger()})
	assert.Equal(t, PermissionDeniedMessage, msg)
	assert.Empty(t, sess.PeekFlashes())

	HandleError(ctx, apiError(http.StatusForbidden, http.MethodDelete, nil), Options{SuppressForbiddenOnRead: true, Logger: quietLogger()})
	assert.Len(t, sess.PeekFlashes(), 1)
}

func TestHandleErrorSilentAndWithoutSession(t *testing.T) {
	sess := &shared.Session{}
	ctx := shared.ContextWithSession(context.Background(), sess)
	HandleError(ctx, errors.New("x"), Options{Silent: true, Logger: quietLogger()})
	assert.Empty(t, sess.PeekFlashes())

	assert.NotPanics(t, func() {
		HandleError(context.Background(), errors.New("x"), Options{})
	})
}

func TestHandleSuccess(t *testing.T) {
	sess := &shared.Session{}
	HandleSuccess(shared.ContextWithSession(context.Background(), sess), "Customer created")
	flashes := sess.PeekFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, shared.FlashSuccess, flashes[0].Kind)
}
