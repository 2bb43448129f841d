package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/shared"
)

type stubTokens struct {
	token     string
	refreshed string
	refreshes atomic.Int32
	err       error
}

func (s *stubTokens) Token(ctx context.Context) (string, error) { return s.token, nil }

func (s *stubTokens) Refresh(ctx context.Context) (string, error) {
	s.refreshes.Add(1)
	if s.err != nil {
		return "", s.err
	}
	s.token = s.refreshed
	return s.token, nil
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveBackendCall(method, resource string, status int, elapsed time.Duration) {
	o.calls = append(o.calls, method+" "+resource)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	client := NewClient(Options{BaseURL: srv.URL + "/api/", Observer: obs})
	if tokens != nil {
		client.SetTokenSource(tokens)
	}
	return client, obs
}

func TestClientAttachesBearerToken(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"entities":[{"id":1,"name":"A"}],"total":11}}`))
	}, &stubTokens{token: "tok-1"})

	products := NewResource[row](client, "products")
	page, err := products.List(context.Background(), ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	assert.Equal(t, []row{{ID: "1", Name: "A"}}, page.Items)
	assert.Equal(t, []string{"GET products"}, obs.calls)
}

func TestClientWithoutTokenFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, &stubTokens{})

	_, err := client.Do(context.Background(), Request{Path: "/customers"})
	require.ErrorIs(t, err, ErrNoToken)
	assert.Zero(t, hits.Load())
}

func TestClientRefreshesOnceOn401(t *testing.T) {
	var calls atomic.Int32
	tokens := &stubTokens{token: "stale", refreshed: "fresh"}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":5,"name":"Zinc"}`))
	}, tokens)

	rec, err := NewResource[row](client, "/products").Get(context.Background(), "5")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Zinc", rec.Name)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestClientReturnsOriginal401WhenRefreshFails(t *testing.T) {
	tokens := &stubTokens{token: "stale", err: errors.New("refresh rejected")}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, tokens)

	_, err := client.Do(context.Background(), Request{Path: "/sales"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestClientDecodesErrorPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"in use"}`))
	}, &stubTokens{token: "t"})

	err := NewResource[row](client, "/suppliers").Delete(context.Background(), "9")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "/suppliers/9", apiErr.Path)
	payload, ok := apiErr.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "in use", payload["message"])
}

func TestClientPatchEncodesJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Renamed", body["name"])
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":3,"name":"Renamed"}}`))
	}, &stubTokens{token: "t"})

	rec, err := NewResource[row](client, "/categories").Update(context.Background(), "3", map[string]string{"name": "Renamed"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, ID("3"), rec.ID)
}

func TestClientUnreachable(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := client.Do(context.Background(), Request{Path: "/health", Anonymous: true})
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
}

func TestListStateRefetch(t *testing.T) {
	var n int
	state := Load(context.Background(), func(ctx context.Context) (Page[row], error) {
		n++
		if n == 1 {
			return Page[row]{}, errors.New("down")
		}
		return Page[row]{Items: []row{{ID: "1"}}, Total: 1}, nil
	})
	require.Error(t, state.Err)
	assert.NotNil(t, state.Items)

	state = state.Refetch(context.Background())
	require.NoError(t, state.Err)
	assert.Equal(t, 1, state.Total)
}

func TestListParamsValues(t *testing.T) {
	v := ListParams{Page: 1, Limit: 25, Search: " para ", Sort: "name", Order: "desc", Filters: map[string]string{"status": "ACTIVE", "empty": ""}}.Values()
	assert.Equal(t, "para", v.Get("search"))
	assert.Equal(t, "DESC", v.Get("order"))
	assert.Equal(t, "ACTIVE", v.Get("status"))
	assert.False(t, v.Has("empty"))
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("load: %w", newError(http.MethodGet, "/products/9", http.StatusNotFound, nil))
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NotErrorIs(t, newError(http.MethodGet, "/products/9", http.StatusBadGateway, nil), shared.ErrNotFound)
}

func TestFilenameFromContentDisposition(t *testing.T) {
	cases := []struct{ header, want string }{
		{`attachment; filename="products-template.xlsx"`, "products-template.xlsx"},
		{`attachment; filename=report.xlsx; size=10`, "report.xlsx"},
		{`attachment; filename*=UTF-8''d%C3%A9p%C3%B4t.xlsx`, "dépôt.xlsx"},
		{`attachment; filename="fallback.xlsx"; filename*=UTF-8''stock%20list.xlsx`, "stock list.xlsx"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{`inline`, ""},
		{"", ""},
		{`attachment; filename="unterminated`, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, filenameFrom(tc.header), tc.header)
	}
}
