package web

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/sessiontodo/todo/config"
	"github.com/sessiontodo/todo/database"
	"github.com/sessiontodo/todo/database/model"
	"github.com/sessiontodo/todo/web/entity"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type response struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T, throttle config.ThrottleStore) (*Server, *httptest.Server) {
	t.Helper()
	db, err := database.InitDB(config.DatabaseConfig{
		Type: config.DatabaseTypeSQLite,
		DSN:  filepath.Join(t.TempDir(), "todo.db"),
	})
	require.NoError(t, err)

	s := NewServer(&config.Config{
		Port:          8080,
		SessionSecret: "0123456789abcdef0123456789abcdef",
		BcryptCost:    bcrypt.MinCost,
		PageLimit:     2,
		ThrottleStore: throttle,
	}, db)
	engine, err := s.initRouter()
	require.NoError(t, err)

	ts := httptest.NewServer(engine)
	t.Cleanup(func() {
		ts.Close()
		s.Stop()
		database.CloseDB(db)
	})
	return s, ts
}

func newClient(t *testing.T, ts *httptest.Server) *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path string, body any) response {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var r response
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&r))
	assert.Equal(c.t, resp.StatusCode, r.Status, "%s %s", method, path)
	return r
}

func (c *testClient) get(path string) response {
	c.t.Helper()
	return c.do(http.MethodGet, path, nil)
}

func (c *testClient) post(path string, body any) response {
	c.t.Helper()
	return c.do(http.MethodPost, path, body)
}

func (c *testClient) registerAndLogin(username string) {
	c.t.Helper()
	r := c.post("/register", map[string]string{
		"name":     username,
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	})
	require.Equal(c.t, http.StatusCreated, r.Status, r.Message)
	r = c.post("/login", map[string]string{"loginId": username, "password": "secret1"})
	require.Equal(c.t, http.StatusOK, r.Status, r.Message)
}

func decodeTask(t *testing.T, r response) model.Task {
	t.Helper()
	var task model.Task
	require.NoError(t, json.Unmarshal(r.Data, &task))
	return task
}

func TestRegisterAndLogin(t *testing.T) {
	_, ts := newTestServer(t, config.ThrottleStoreDB)
	c := newClient(t, ts)

	r := c.get("/")
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "server up and running", r.Message)

	r = c.get("/is_authenticated")
	assert.Equal(t, http.StatusForbidden, r.Status)
	assert.Equal(t, "Please Login To Access", r.Message)

	alice := map[string]any{"name": "Alice", "username": "alice", "email": "alice@example.com", "password": "secret1"}
	r = c.post("/register", alice)
	assert.Equal(t, http.StatusCreated, r.Status)
	assert.Equal(t, "User Added Successfully", r.Message)

	r = c.post("/register", alice)
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Username Already Exists", r.Message)

	r = c.post("/register", map[string]any{"name": "Alice", "username": "alice2", "email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Email Already Exists", r.Message)

	r = c.post("/register", map[string]any{"name": "Bob", "username": "bob", "email": "bob@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Username must be between 4 and 99 characters", r.Message)

	r = c.post("/register", map[string]any{"name": "Bob", "username": 42, "email": "bob@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Invalid datatype for username", r.Message)

	r = c.post("/register", nil)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = c.post("/login", map[string]string{"loginId": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "This email id is not registered", r.Message)

	r = c.post("/login", map[string]string{"loginId": "nobody", "password": "secret1"})
	assert.Equal(t, "This username is not registered", r.Message)

	r = c.post("/login", map[string]string{"loginId": "alice", "password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Wrong Password", r.Message)

	r = c.get("/is_authenticated")
	assert.Equal(t, http.StatusForbidden, r.Status)

	r = c.post("/login", map[string]string{"loginId": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, r.Status)

	r = c.get("/is_authenticated")
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "Welcome to Todo App", r.Message)

	r = c.get("/logout")
	assert.Equal(t, http.StatusOK, r.Status)

	r = c.get("/is_authenticated")
	assert.Equal(t, http.StatusForbidden, r.Status)
}

func TestTodoLifecycle(t *testing.T) {
	_, ts := newTestServer(t, config.ThrottleStoreDB)
	alice := newClient(t, ts)
	alice.registerAndLogin("alice")

	r := alice.get("/todos")
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, "No Todos Found", r.Message)

	r = alice.post("/todos/create", map[string]string{"task_name": "buy milk"})
	require.Equal(t, http.StatusOK, r.Status, r.Message)
	created := decodeTask(t, r)
	assert.Equal(t, "alice", created.Username)
	assert.False(t, created.IsCompleted)

	r = alice.post("/todos/create", map[string]string{"task_name": "walk the dog"})
	assert.Equal(t, http.StatusForbidden, r.Status)
	assert.Equal(t, "Too many requests, Please try after some time", r.Message)

	r = alice.post("/todos/updateState", map[string]string{"id": created.Id})
	require.Equal(t, http.StatusOK, r.Status, r.Message)
	assert.True(t, decodeTask(t, r).IsCompleted)

	r = alice.post("/todos/update", map[string]string{"id": created.Id, "task_name": "buy oat milk"})
	require.Equal(t, http.StatusOK, r.Status, r.Message)
	assert.Equal(t, "buy oat milk", decodeTask(t, r).TaskName)

	r = alice.post("/todos/update", map[string]string{"id": created.Id, "task_name": ""})
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Task name can't be empty", r.Message)

	r = alice.get("/todos")
	require.Equal(t, http.StatusOK, r.Status)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(r.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy oat milk", tasks[0].TaskName)
	assert.True(t, tasks[0].IsCompleted)

	bob := newClient(t, ts)
	bob.registerAndLogin("bobby")

	for _, path := range []string{"/todos/updateState", "/todos/delete"} {
		r = bob.post(path, map[string]string{"id": created.Id})
		assert.Equal(t, http.StatusForbidden, r.Status, path)
		assert.Equal(t, "The user trying to modify the record isn't the owner", r.Message)
	}
	r = bob.post("/todos/update", map[string]string{"id": created.Id, "task_name": "mine now"})
	assert.Equal(t, http.StatusForbidden, r.Status)

	missing := bob.post("/todos/delete", map[string]string{})
	unknown := bob.post("/todos/delete", map[string]string{"id": "does-not-exist"})
	assert.Equal(t, http.StatusBadRequest, missing.Status)
	assert.Equal(t, missing, unknown)
	assert.Equal(t, "Sorry, Please Refresh & Try Again", missing.Message)

	r = alice.post("/todos/delete", map[string]string{"id": created.Id})
	assert.Equal(t, http.StatusOK, r.Status)

	r = alice.get("/todos")
	assert.Equal(t, "No Todos Found", r.Message)
}

func TestTodosRequireLogin(t *testing.T) {
	_, ts := newTestServer(t, config.ThrottleStoreDB)
	c := newClient(t, ts)

	for _, path := range []string{"/todos/create", "/todos/updateState", "/todos/update", "/todos/delete"} {
		r := c.post(path, map[string]string{"id": "x", "task_name": "some task"})
		assert.Equal(t, http.StatusForbidden, r.Status, path)
		assert.Equal(t, "Please Login To Access", r.Message)
	}
	r := c.get("/todos")
	assert.Equal(t, http.StatusForbidden, r.Status)
}

func TestPaginatedTodos(t *testing.T) {
	s, ts := newTestServer(t, config.ThrottleStoreRedis)
	alice := newClient(t, ts)
	alice.registerAndLogin("alice")

	ctx := context.Background()
	for _, name := range []string{"task one", "task two", "task three"} {
		_, err := s.taskService.Create(ctx, "alice", &entity.TaskForm{TaskName: name})
		require.NoError(t, err)
	}

	page := func(query string) []string {
		r := alice.get("/todos/paginated" + query)
		require.Equal(t, http.StatusOK, r.Status)
		if len(r.Data) == 0 {
			return nil
		}
		var tasks []model.Task
		require.NoError(t, json.Unmarshal(r.Data, &tasks))
		var names []string
		for _, task := range tasks {
			names = append(names, task.TaskName)
		}
		return names
	}

	assert.Equal(t, []string{"task one", "task two"}, page(""))
	assert.Equal(t, []string{"task one", "task two"}, page("?skip=abc"))
	assert.Equal(t, []string{"task one", "task two"}, page("?skip=-1"))
	assert.Equal(t, []string{"task three"}, page("?skip=2"))
	assert.Nil(t, page("?skip=3"))

	r := alice.post("/todos/create", map[string]string{"task_name": "task four"})
	assert.Equal(t, http.StatusOK, r.Status)
	r = alice.post("/todos/create", map[string]string{"task_name": "task five"})
	assert.Equal(t, http.StatusForbidden, r.Status)
}

func TestLogoutFromAllDevices(t *testing.T) {
	_, ts := newTestServer(t, config.ThrottleStoreDB)

	laptop := newClient(t, ts)
	laptop.registerAndLogin("alice")
	phone := newClient(t, ts)
	r := phone.post("/login", map[string]string{"loginId": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, r.Status)
	bob := newClient(t, ts)
	bob.registerAndLogin("bobby")

	r = laptop.get("/logout_from_all_devices")
	assert.Equal(t, http.StatusOK, r.Status)

	assert.Equal(t, http.StatusForbidden, laptop.get("/is_authenticated").Status)
	assert.Equal(t, http.StatusForbidden, phone.get("/is_authenticated").Status)
	assert.Equal(t, http.StatusOK, bob.get("/is_authenticated").Status)
}

func TestLoginIssuesNewSession(t *testing.T) {
	_, ts := newTestServer(t, config.ThrottleStoreDB)
	base, err := url.Parse(ts.URL)
	require.NoError(t, err)

	mallory := newClient(t, ts)
	mallory.registerAndLogin("mallory")

	victim := newClient(t, ts)
	victim.http.Jar.SetCookies(base, mallory.http.Jar.Cookies(base))
	r := victim.post("/register", map[string]string{
		"name": "Victim", "username": "victim", "email": "victim@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, r.Status)
	r = victim.post("/login", map[string]string{"loginId": "victim", "password": "secret1"})
	require.Equal(t, http.StatusOK, r.Status)
	assert.NotEqual(t, mallory.http.Jar.Cookies(base), victim.http.Jar.Cookies(base))

	r = victim.post("/todos/create", map[string]string{"task_name": "victim secret"})
	require.Equal(t, http.StatusOK, r.Status)

	r = mallory.get("/todos")
	assert.Equal(t, http.StatusForbidden, r.Status)
	assert.Equal(t, "Please Login To Access", r.Message)
	assert.Equal(t, http.StatusOK, victim.get("/is_authenticated").Status)
}
