package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-dashboard/internal/adapter/db/sqlstore"
	"user-dashboard/internal/adapter/gin/handler"
	"user-dashboard/internal/dashboard"
	"user-dashboard/internal/usecase/user"
	"user-dashboard/pkg/logger"
)

// setupServer wires the full stack over an in-memory database and serves it.
func setupServer(t testing.TB) *httptest.Server {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, sqlstore.Migrate(db))

	log := zaptest.NewLogger(t)
	uc := user.New(sqlstore.NewUserRepo(db, log), log)

	srv := httptest.NewUnstartedServer(nil)
	client := dashboard.NewClient("http://"+srv.Listener.Addr().String(), nil)
	srv.Config.Handler = SetupRouter(
		handler.NewUserHandler(uc, log),
		dashboard.NewHandler(client, log),
		log,
	)
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

type apiClient struct {
	t   *testing.T
	srv *httptest.Server
}

func (a apiClient) do(method, path, body string) *http.Response {
	a.t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
	require.NoError(a.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := a.srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestUsersAPI_CreateThenList(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	resp := api.do(http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]handler.UserResponse](t, resp))

	resp = api.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[handler.UserResponse](t, resp)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Ann", created.Name)
	assert.Equal(t, "ann@x.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	resp = api.do(http.MethodPost, "/users", `{"name":"Bob","email":"bob@x.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[handler.UserResponse](t, resp)
	assert.Greater(t, second.ID, created.ID)

	users := decode[[]handler.UserResponse](t, api.do(http.MethodGet, "/users", ""))
	require.Len(t, users, 2)
	assert.Equal(t, created.ID, users[0].ID)
	assert.Equal(t, second.ID, users[1].ID)
}

func TestUsersAPI_CreateRequiresFields(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	for _, body := range []string{
		`{"name":"","email":"ann@x.com"}`,
		`{"name":"Ann","email":""}`,
		`{"email":"ann@x.com"}`,
		`{"name":"   ","email":"ann@x.com"}`,
		`{not json`,
	} {
		resp := api.do(http.MethodPost, "/users", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "validation_error", decode[handler.ErrorResponse](t, resp).Error, body)
	}

	assert.Empty(t, decode[[]handler.UserResponse](t, api.do(http.MethodGet, "/users", "")))
}

func TestUsersAPI_GetErrors(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	resp := api.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	created := decode[handler.UserResponse](t, resp)

	resp = api.do(http.MethodGet, "/users/"+itoa(created.ID+100), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, resp).Error)

	resp = api.do(http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_id", decode[handler.ErrorResponse](t, resp).Error)
}

func TestUsersAPI_DuplicateEmailMessage(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`).StatusCode)

	resp := api.do(http.MethodPost, "/users", `{"name":"Bob","email":"ann@x.com"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[handler.ErrorResponse](t, resp)
	assert.Equal(t, "internal_error", body.Error)
	assert.True(t, strings.HasPrefix(body.Message, "failed to create user: "), body.Message)
	assert.Equal(t, 1, strings.Count(body.Message, "failed to create user"), body.Message)
}

func TestUsersAPI_UpdateKeepsOtherFields(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	created := decode[handler.UserResponse](t, api.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`))
	path := "/users/" + itoa(created.ID)

	resp := api.do(http.MethodPut, path, `{"name":"Anna"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[handler.UserResponse](t, api.do(http.MethodGet, path, ""))
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, "ann@x.com", got.Email)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	resp = api.do(http.MethodPut, path, `{"email":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(http.MethodPut, "/users/"+itoa(created.ID+1), `{"name":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUsersAPI_Delete(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	created := decode[handler.UserResponse](t, api.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`))
	path := "/users/" + itoa(created.ID)

	resp := api.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Empty(t, decode[[]handler.UserResponse](t, api.do(http.MethodGet, "/users", "")))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, "").StatusCode)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, path, "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodDelete, "/users/abc", "").StatusCode)
}

func TestUsersAPI_Scenario(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	resp := api.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[handler.UserResponse](t, resp)
	assert.Equal(t, int64(1), created.ID)

	resp = api.do(http.MethodPut, "/users/1", `{"name":"Anna","email":"ann@x.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[handler.UserResponse](t, resp)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "Anna", updated.Name)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/users/1", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/users/1", "").StatusCode)
}

func TestUsersAPI_MethodNotAllowed(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	tests := []struct {
		method, path, allow string
	}{
		{http.MethodPut, "/users", "GET, POST"},
		{http.MethodDelete, "/users", "GET, POST"},
		{http.MethodPatch, "/users", "GET, POST"},
		{http.MethodPost, "/users/1", "GET, PUT, DELETE"},
		{http.MethodPatch, "/users/1", "GET, PUT, DELETE"},
		{http.MethodTrace, "/users", "GET, POST"},
		{http.MethodOptions, "/users/1", "GET, PUT, DELETE"},
		{"PROPFIND", "/users/1", "GET, PUT, DELETE"},
		{"PURGE", "/users", "GET, POST"},
	}

	for _, tt := range tests {
		resp := api.do(tt.method, tt.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, tt.method+" "+tt.path)
		assert.Equal(t, tt.allow, resp.Header.Get("Allow"), tt.method+" "+tt.path)
		assert.Equal(t, "method_not_allowed", decode[handler.ErrorResponse](t, resp).Error)
	}

	resp := api.do(http.MethodHead, "/users", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))

	resp = api.do("PROPFIND", "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Allow"))
}

func TestRouter_Ambient(t *testing.T) {
	api := apiClient{t, setupServer(t)}

	resp := api.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(logger.RequestIDHeader))

	resp = api.do(http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]any](t, resp)
	assert.Equal(t, "2.0", doc["swagger"])
}

func TestDashboard_EndToEnd(t *testing.T) {
	srv := setupServer(t)
	api := apiClient{t, srv}

	postForm := func(path string, form url.Values) *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		client := srv.Client()
		client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := postForm("/dashboard/submit", url.Values{"name": {"Ann"}, "email": {"ann@x.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?success=created", resp.Header.Get("Location"))

	page := readBody(t, api.do(http.MethodGet, "/?success=created", ""))
	assert.Contains(t, page, "All Users (1)")
	assert.Contains(t, page, "<strong>Ann</strong>")
	assert.Contains(t, page, "User created successfully")

	resp = postForm("/dashboard/submit", url.Values{"id": {"1"}, "name": {"Anna"}, "email": {"ann@x.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "Anna", decode[handler.UserResponse](t, api.do(http.MethodGet, "/users/1", "")).Name)

	resp = postForm("/dashboard/submit", url.Values{"name": {"Bob"}, "email": {"ann@x.com"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "duplicate email re-renders the page")
	assert.Contains(t, readBody(t, resp), `role="alert"`)

	resp = postForm("/dashboard/users/1/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, readBody(t, api.do(http.MethodGet, "/", "")), "No users yet.")
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return buf.String()
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
