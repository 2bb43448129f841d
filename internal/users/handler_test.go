package users_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/testing/webtest"
	"github.com/medistock/medistock/internal/users"
)

func setup(t *testing.T) (http.Handler, *webtest.Env, *webtest.Backend) {
	t.Helper()
	env := webtest.New(t)
	backend := webtest.NewBackend(t)
	backend.JSON("GET /roles", http.StatusOK, `[{"id":"r1","name":"ADMIN"},{"id":"r2","name":"Pharmacist","description":"Dispensing"}]`)
	client := backend.Client()
	deps := pages.Deps{Logger: env.Logger, Views: env.Views, RBAC: rbac.Middleware{Views: env.Views}}
	handler := users.NewHandler(deps, users.NewService(client, rbac.NewService(client)))
	r := chi.NewRouter()
	r.Route("/users", handler.MountRoutes)
	return r, env, backend
}

func TestListShowsRoles(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /users", http.StatusOK, `{"items":[{"id":"u1","firstName":"Ada","lastName":"Obi","email":"ada@example.com",
		"roles":[{"id":"r2","name":"Pharmacist"}]}],"total":1}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/users?row=u1", nil), env.Session(t, webtest.Operator(shared.PermUsersView)))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Ada Obi")
	assert.Contains(t, body, "Pharmacist")
	assert.NotContains(t, body, "New user")
}

func TestCreateValidatesLocally(t *testing.T) {
	router, env, backend := setup(t)
	form := url.Values{"firstName": {"Ada"}, "lastName": {"Obi"}, "email": {"ada@example.com"}, "password": {"short"}}

	res := env.Serve(router, webtest.Form("/users", form), env.Session(t, webtest.Admin()))

	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Password must be at least 8 characters")
	assert.Contains(t, body, users.MsgRoleRequired)
	_, posted := backend.Last(http.MethodPost, "/users")
	assert.False(t, posted)
}

func TestCreatePostsRoles(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("POST /users", http.StatusCreated, `{"success":true,"data":{"id":"u9"}}`)
	form := url.Values{
		"firstName": {"Ada"}, "lastName": {"Obi"}, "email": {" Ada@Example.com "},
		"password": {"s3cretpass"}, "roleIds": {"r2", ""}, "isActive": {"true"},
	}
	sess := env.Session(t, webtest.Admin())

	res := env.Serve(router, webtest.Form("/users", form), sess)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Contains(t, webtest.Flashes(sess), "success: User created successfully")
	call, ok := backend.Last(http.MethodPost, "/users")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", call.Body["email"])
	assert.Equal(t, []any{"r2"}, call.Body["roleIds"])
	assert.Equal(t, "s3cretpass", call.Body["password"])
}

func TestUpdateKeepsPasswordWhenBlank(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("PATCH /users/u1", http.StatusOK, `{"success":true,"data":{"id":"u1"}}`)
	form := url.Values{"firstName": {"Ada"}, "lastName": {"Obi"}, "email": {"ada@example.com"}, "roleIds": {"r1"}}

	res := env.Serve(router, webtest.Form("/users/u1/edit", form), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusSeeOther, res.Code)
	call, ok := backend.Last(http.MethodPatch, "/users/u1")
	require.True(t, ok)
	assert.NotContains(t, call.Body, "password")
	assert.Equal(t, false, call.Body["isActive"])
}

func TestEditFormChecksAssignedRoles(t *testing.T) {
	router, env, backend := setup(t)
	backend.JSON("GET /users/u1", http.StatusOK, `{"success":true,"data":{"id":"u1","firstName":"Ada","roles":[{"id":"r2","name":"Pharmacist"}]}}`)

	res := env.Serve(router, httptest.NewRequest(http.MethodGet, "/users/u1/edit", nil), env.Session(t, webtest.Admin()))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `value="r2" checked`)
	assert.NotContains(t, res.Body.String(), `value="r1" checked`)
}

func TestCannotDeleteSelf(t *testing.T) {
	router, env, backend := setup(t)
	profile := webtest.Admin()
	sess := env.Session(t, profile)

	res := env.Serve(router, webtest.Form("/users/"+profile.ID+"/delete", nil), sess)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Contains(t, webtest.Flashes(sess), "error: You cannot delete your own account.")
	_, deleted := backend.Last(http.MethodDelete, "/users/"+profile.ID)
	assert.False(t, deleted)
}

func TestManageNeedsPermission(t *testing.T) {
	router, env, backend := setup(t)

	res := env.Serve(router, webtest.Form("/users", url.Values{"firstName": {"X"}}), env.Session(t, webtest.Operator(shared.PermUsersView)))

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, backend.Calls())
}
