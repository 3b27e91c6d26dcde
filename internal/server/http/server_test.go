package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
	"github.com/avdeenkov/taskdeck/internal/service"
	"github.com/avdeenkov/taskdeck/internal/token"
)

/************ fake services ************/

type fakeAuth struct {
	user model.User
	toks model.Tokens
	err  error
}

func (f *fakeAuth) Register(_ context.Context, name, email, _ string, role model.Role) (model.User, model.Tokens, error) {
	if f.err != nil {
		return model.User{}, model.Tokens{}, f.err
	}
	u := f.user
	u.Name, u.Email, u.Role = name, email, role
	return u, f.toks, nil
}

func (f *fakeAuth) Login(_ context.Context, email, _, _ string) (model.User, model.Tokens, error) {
	if f.err != nil {
		return model.User{}, model.Tokens{}, f.err
	}
	u := f.user
	u.Email = email
	return u, f.toks, nil
}

func (f *fakeAuth) Refresh(model.Principal) (model.Tokens, error) { return f.toks, f.err }

func (f *fakeAuth) UpdateProfile(_ context.Context, _ uuid.UUID, name string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := f.user
	u.Name = name
	return &u, nil
}

func (f *fakeAuth) ListUsers(context.Context) ([]model.User, error) {
	return []model.User{f.user}, f.err
}

type fakeTasks struct {
	task   model.Task
	list   []model.Task
	total  int
	stats  model.Stats
	err    error
	called string
}

func (f *fakeTasks) Create(_ context.Context, _ model.Principal, _ service.CreateTaskInput) (*model.Task, error) {
	f.called = "create"
	if f.err != nil {
		return nil, f.err
	}
	return &f.task, nil
}

func (f *fakeTasks) Get(_ context.Context, _ model.Principal, _ uuid.UUID) (*model.Task, error) {
	f.called = "get"
	if f.err != nil {
		return nil, f.err
	}
	return &f.task, nil
}

func (f *fakeTasks) List(_ context.Context, _ model.Principal, _ model.TaskFilter) ([]model.Task, int, error) {
	f.called = "list"
	return f.list, f.total, f.err
}

func (f *fakeTasks) Update(_ context.Context, _ model.Principal, _ uuid.UUID, _ model.TaskUpdate) (*model.Task, error) {
	f.called = "update"
	if f.err != nil {
		return nil, f.err
	}
	return &f.task, nil
}

func (f *fakeTasks) Delete(_ context.Context, _ model.Principal, _ uuid.UUID) error {
	f.called = "delete"
	return f.err
}

func (f *fakeTasks) Stats(_ context.Context, _ model.Principal) (model.Stats, error) {
	f.called = "stats"
	return f.stats, f.err
}

/************ harness ************/

var testKey = []byte("server-test-key")

func newApp(t *testing.T, auth *fakeAuth, tasks *fakeTasks) (*token.Manager, func(req *http.Request) *http.Response) {
	t.Helper()
	mgr := token.NewManager(testKey, time.Hour)
	app := New(Config{
		CORSOrigins:     "*",
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
	}, zap.NewNop(), auth, tasks, mgr)
	do := func(req *http.Request) *http.Response {
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}
	return mgr, do
}

func bearer(t *testing.T, mgr *token.Manager, role model.Role) string {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	toks, err := mgr.Issue(model.Principal{ID: id, Role: role, Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	return "Bearer " + toks.AccessToken
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func errCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error object: %v", body)
	return e["code"].(string)
}

/************ tests ************/

func TestHealth(t *testing.T) {
	_, do := newApp(t, &fakeAuth{}, &fakeTasks{})

	resp := do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, "OK", body["status"])
}

func TestTasks_RequireToken(t *testing.T) {
	_, do := newApp(t, &fakeAuth{}, &fakeTasks{})

	resp := do(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, false, body["success"])
	require.Equal(t, "UNAUTHORIZED", errCode(t, body))
}

func TestTasks_InvalidToken(t *testing.T) {
	_, do := newApp(t, &fakeAuth{}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := do(req)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsers_AdminGate(t *testing.T) {
	mgr, do := newApp(t, &fakeAuth{}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/users", nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "FORBIDDEN", errCode(t, decode(t, resp)))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/users", nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleAdmin))
	resp = do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister_OK(t *testing.T) {
	id, _ := uuid.NewV4()
	fa := &fakeAuth{
		user: model.User{ID: id},
		toks: model.Tokens{AccessToken: "tok123", ExpiresAt: time.Now().Add(time.Hour)},
	}
	_, do := newApp(t, fa, &fakeTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"name":"Ann","email":"ann@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := do(req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode(t, resp)
	require.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	require.Equal(t, "tok123", data["token"])
	user := data["user"].(map[string]any)
	require.Equal(t, "ann@example.com", user["email"])
	require.NotContains(t, user, "pwd_hash")
	require.Greater(t, data["expiresIn"].(float64), float64(0))
}

func TestRegister_ValidationDetails(t *testing.T) {
	fa := &fakeAuth{err: errs.Validation(errs.Field("email", "Please provide a valid email"))}
	_, do := newApp(t, fa, &fakeTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"name":"Ann","email":"nope","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := do(req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode(t, resp)
	require.Equal(t, "VALIDATION_ERROR", errCode(t, body))
	details := body["error"].(map[string]any)["details"].([]any)
	require.Len(t, details, 1)
	require.Equal(t, "email", details[0].(map[string]any)["field"])
}

func TestLogin_RateLimited(t *testing.T) {
	_, do := newApp(t, &fakeAuth{err: errs.ErrRateLimited}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ann@example.com","password":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := do(req)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "RATE_LIMITED", errCode(t, decode(t, resp)))
}

func TestLogin_BadCredentials(t *testing.T) {
	_, do := newApp(t, &fakeAuth{err: errs.ErrUnauthorized}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ann@example.com","password":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := do(req)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfile_FromClaims(t *testing.T) {
	mgr, do := newApp(t, &fakeAuth{}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user := decode(t, resp)["data"].(map[string]any)["user"].(map[string]any)
	require.Equal(t, "ann@example.com", user["email"])
	require.Equal(t, "user", user["role"])
}

func TestTasks_StatsRouteNotShadowedByID(t *testing.T) {
	ft := &fakeTasks{stats: model.Stats{Total: 3, Pending: 1, InProgress: 1, Completed: 1}}
	mgr, do := newApp(t, &fakeAuth{}, ft)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/stats", nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "stats", ft.called)

	stats := decode(t, resp)["data"].(map[string]any)["stats"].(map[string]any)
	require.Equal(t, float64(3), stats["total"])
}

func TestTasks_MalformedID(t *testing.T) {
	mgr, do := newApp(t, &fakeAuth{}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/not-a-uuid", nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "NOT_FOUND", errCode(t, decode(t, resp)))
}

func TestTasks_NotFound(t *testing.T) {
	mgr, do := newApp(t, &fakeAuth{}, &fakeTasks{err: errs.ErrNotFound})

	id, _ := uuid.NewV4()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String(), nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTasks_Forbidden(t *testing.T) {
	mgr, do := newApp(t, &fakeAuth{}, &fakeTasks{err: errs.ErrForbidden})

	id, _ := uuid.NewV4()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+id.String(), nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTasks_Create(t *testing.T) {
	id, _ := uuid.NewV4()
	ft := &fakeTasks{task: model.Task{ID: id, Title: "Ship it", Status: model.StatusPending, Priority: model.PriorityMedium}}
	mgr, do := newApp(t, &fakeAuth{}, ft)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/",
		strings.NewReader(`{"title":"Ship it"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	task := decode(t, resp)["data"].(map[string]any)["task"].(map[string]any)
	require.Equal(t, "Ship it", task["title"])
	require.Equal(t, "pending", task["status"])
}

func TestTasks_ListPagination(t *testing.T) {
	ft := &fakeTasks{list: []model.Task{}, total: 25}
	mgr, do := newApp(t, &fakeAuth{}, ft)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/?page=2&limit=10", nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pg := decode(t, resp)["data"].(map[string]any)["pagination"].(map[string]any)
	require.Equal(t, float64(2), pg["page"])
	require.Equal(t, float64(10), pg["limit"])
	require.Equal(t, float64(25), pg["total"])
	require.Equal(t, float64(3), pg["totalPages"])
}

func TestTasks_UpdateBothVerbs(t *testing.T) {
	id, _ := uuid.NewV4()
	ft := &fakeTasks{task: model.Task{ID: id, Title: "after", Status: model.StatusCompleted}}
	mgr, do := newApp(t, &fakeAuth{}, ft)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		req := httptest.NewRequest(method, "/api/v1/tasks/"+id.String(),
			strings.NewReader(`{"status":"completed"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
		resp := do(req)
		require.Equal(t, http.StatusOK, resp.StatusCode, method)
		require.Equal(t, "update", ft.called, method)
	}
}

func TestTasks_Delete(t *testing.T) {
	ft := &fakeTasks{}
	mgr, do := newApp(t, &fakeAuth{}, ft)

	id, _ := uuid.NewV4()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+id.String(), nil)
	req.Header.Set("Authorization", bearer(t, mgr, model.RoleUser))
	resp := do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "delete", ft.called)

	body := decode(t, resp)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Task deleted successfully", body["message"])
}
