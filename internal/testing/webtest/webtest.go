// Package webtest wires sessions, templates and a fake backend for handler tests.
package webtest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
	_ "github.com/medistock/medistock/internal/testing/guard"
)

// Env is a handler test environment backed by miniredis.
type Env struct {
	Redis    *miniredis.Miniredis
	Client   *redis.Client
	Sessions *shared.SessionManager
	CSRF     *shared.CSRFManager
	Views    *view.Responder
	Logger   *slog.Logger
}

// New builds an Env using the embedded templates.
func New(t *testing.T) *Env {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	csrf := shared.NewCSRFManager("csrf-secret")
	return &Env{
		Redis:    mr,
		Client:   client,
		Sessions: shared.NewSessionManager(client, "medistock_session", "session-secret", time.Hour, false),
		CSRF:     csrf,
		Views:    view.NewResponder(engine, csrf, logger),
		Logger:   logger,
	}
}

// Admin is a profile that passes every permission check.
func Admin() *shared.Profile {
	return &shared.Profile{ID: "1", FirstName: "Ada", LastName: "Admin", Email: "admin@pharmacy.test", Roles: []string{shared.RoleAdmin}}
}

// Operator is a profile holding only perms.
func Operator(perms ...string) *shared.Profile {
	return &shared.Profile{ID: "2", FirstName: "Olu", Email: "operator@pharmacy.test", Roles: []string{"PHARMACIST"}, Permissions: perms}
}

// Session creates a session, signed in as profile when it is non-nil.
func (e *Env) Session(t *testing.T, profile *shared.Profile) *shared.Session {
	t.Helper()
	sess, err := e.Sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if profile != nil {
		if err := sess.SetTokens("access-token", "refresh-token"); err != nil {
			t.Fatalf("seal tokens: %v", err)
		}
		sess.SetProfile(*profile)
	}
	return sess
}

// Serve runs req through h with sess bound to the request context.
func (e *Env) Serve(h http.Handler, req *http.Request, sess *shared.Session) *httptest.ResponseRecorder {
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Get builds a GET request.
func Get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

// Form builds a urlencoded POST request.
func Form(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// Flashes returns the queued flash messages of sess without consuming them.
func Flashes(sess *shared.Session) []string {
	var out []string
	for _, f := range sess.PeekFlashes() {
		out = append(out, f.Kind+": "+f.Message)
	}
	return out
}

// Call is one request received by a Backend.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Auth   string
}

// Backend is a fake REST API. Routes are keyed by "METHOD /path".
type Backend struct {
	Server *httptest.Server
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// NewBackend starts a fake backend closed at test cleanup.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]http.HandlerFunc)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// Handle registers fn for "METHOD /path".
func (b *Backend) Handle(route string, fn http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = fn
}

// JSON registers a canned JSON response.
func (b *Backend) JSON(route string, status int, body string) {
	b.Handle(route, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Calls returns the requests received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Last returns the most recent call matching method and path.
func (b *Backend) Last(method, path string) (Call, bool) {
	calls := b.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method && calls[i].Path == path {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Client returns an API client pointed at the backend using a static token.
func (b *Backend) Client() *apiclient.Client {
	client := apiclient.NewClient(apiclient.Options{BaseURL: b.Server.URL, Timeout: 5 * time.Second})
	client.SetTokenSource(StaticTokens("access-token"))
	return client
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	call := Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Auth: r.Header.Get("Authorization")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(r.Body).Decode(&call.Body)
	}
	b.mu.Lock()
	b.calls = append(b.calls, call)
	fn, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"Route not found"}`)
		return
	}
	fn(w, r)
}

// StaticTokens is a TokenSource returning a fixed token.
type StaticTokens string

// Token implements apiclient.TokenSource.
func (s StaticTokens) Token(context.Context) (string, error) { return string(s), nil }

// Refresh implements apiclient.TokenSource.
func (s StaticTokens) Refresh(context.Context) (string, error) { return string(s), nil }
