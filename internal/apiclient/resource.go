package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListParams are the query parameters understood by list endpoints.
type ListParams struct {
	// Page is 1-based.
	Page    int
	Limit   int
	Search  string
	Sort    string
	Order   string
	Filters map[string]string
}

// Values encodes the params for the query string.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		v.Set("search", s)
	}
	if p.Sort != "" {
		v.Set("sortBy", p.Sort)
		order := strings.ToUpper(p.Order)
		if order != "DESC" {
			order = "ASC"
		}
		v.Set("order", order)
	}
	for key, value := range p.Filters {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

// Page is a normalized list response.
type Page[T any] struct {
	Items []T
	Total int
}

// ListState is what list handlers consume: the rows, the total, and the
// error that prevented loading them. Refetch re-runs the original query.
type ListState[T any] struct {
	Items   []T
	Total   int
	Loading bool
	Err     error
	refetch func(context.Context) ListState[T]
}

// Load runs fn once and captures its outcome as a ListState.
func Load[T any](ctx context.Context, fn func(context.Context) (Page[T], error)) ListState[T] {
	var state ListState[T]
	state.refetch = func(ctx context.Context) ListState[T] {
		return Load(ctx, fn)
	}
	page, err := fn(ctx)
	if err != nil {
		state.Items = []T{}
		state.Err = err
		return state
	}
	state.Items = page.Items
	if state.Items == nil {
		state.Items = []T{}
	}
	state.Total = page.Total
	return state
}

// Refetch re-runs the query that produced s.
func (s ListState[T]) Refetch(ctx context.Context) ListState[T] {
	if s.refetch == nil {
		return s
	}
	return s.refetch(ctx)
}

// FetchList performs a GET on path and unwraps the list envelope.
func FetchList[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return Page[T]{Items: []T{}}, err
	}
	items, total := UnwrapList[T](raw)
	return Page[T]{Items: items, Total: total}, nil
}

// FetchRecord performs a GET on path and unwraps a single record. A nil
// record with a nil error means the response held no recognisable object.
func FetchRecord[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	return recordOrNil[T](raw), nil
}

// Resource binds the standard CRUD endpoints of one backend entity.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource constructs a Resource rooted at path (e.g. "/products").
func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: "/" + strings.Trim(path, "/")}
}

// Path returns the resource root.
func (r *Resource[T]) Path() string { return r.path }

// Client exposes the underlying client for non-CRUD calls.
func (r *Resource[T]) Client() *Client { return r.client }

// List fetches one page: GET /<entity>.
func (r *Resource[T]) List(ctx context.Context, params ListParams) (Page[T], error) {
	return FetchList[T](ctx, r.client, r.path, params.Values())
}

// All fetches every row for selects: GET /<entity>/all.
func (r *Resource[T]) All(ctx context.Context) ([]T, error) {
	page, err := FetchList[T](ctx, r.client, r.path+"/all", nil)
	return page.Items, err
}

// Get fetches one record: GET /<entity>/:id.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	return FetchRecord[T](ctx, r.client, r.itemPath(id), nil)
}

// Create posts payload: POST /<entity>.
func (r *Resource[T]) Create(ctx context.Context, payload any) (*T, error) {
	raw, err := r.client.Do(ctx, Request{Method: http.MethodPost, Path: r.path, Body: payload})
	if err != nil {
		return nil, err
	}
	return recordOrNil[T](raw), nil
}

// Update patches payload: PATCH /<entity>/:id.
func (r *Resource[T]) Update(ctx context.Context, id string, payload any) (*T, error) {
	raw, err := r.client.Do(ctx, Request{Method: http.MethodPatch, Path: r.itemPath(id), Body: payload})
	if err != nil {
		return nil, err
	}
	return recordOrNil[T](raw), nil
}

// Delete removes a record: DELETE /<entity>/:id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.Do(ctx, Request{Method: http.MethodDelete, Path: r.itemPath(id)})
	return err
}

// Summary fetches GET /<entity>/summary into a record of type S.
func Summary[S any, T any](ctx context.Context, r *Resource[T], query url.Values) (*S, error) {
	return FetchRecord[S](ctx, r.client, r.path+"/summary", query)
}

// Action calls a member action such as POST /credits/:id/pay.
func (r *Resource[T]) Action(ctx context.Context, method, id, action string, payload any) (json.RawMessage, error) {
	return r.client.Do(ctx, Request{Method: method, Path: r.itemPath(id) + "/" + strings.Trim(action, "/"), Body: payload})
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func recordOrNil[T any](raw json.RawMessage) *T {
	record, ok := UnwrapRecord[T](raw)
	if !ok {
		return nil
	}
	return &record
}
