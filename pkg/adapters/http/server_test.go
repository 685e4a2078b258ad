package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/uiengineer/pkg/adapters/memory"
	"github.com/aretw0/uiengineer/pkg/adapters/static"
	"github.com/aretw0/uiengineer/pkg/app"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/observability"
	"github.com/aretw0/uiengineer/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, orch ports.Orchestrator, opts ...app.Option) (*Server, http.Handler) {
	t.Helper()
	if orch == nil {
		orch = static.New()
	}
	svc := app.NewService(memory.NewStore(), orch, opts...)
	s := NewServer(svc, WithTitle("Test Engineer"))
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestGetHealth(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/info", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "uiengineer-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "Test Engineer", resp["title"])
}

func TestLanding(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/api/", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	page := decodeList(t, rr)
	require.Len(t, page, 1)
	assert.Equal(t, "Page", page[0]["type"])
	assert.Contains(t, rr.Body.String(), `"name":"app_name"`)
}

func TestShowApp_GeneratesThenUpdates(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/api/todo-list", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	first := decodeList(t, rr)
	require.Len(t, first, 1)
	assert.Equal(t, "Div", first[0]["type"])
	assert.Equal(t, "flex flex-col", first[0]["className"])

	rr = do(t, handler, http.MethodGet, "/api/todo-list?action=add%20item", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	second := decodeList(t, rr)
	require.Len(t, second, 2)
	assert.Equal(t, "Paragraph", second[1]["type"])
	assert.Equal(t, "Requested: add item", second[1]["text"])

	// Without an action the stored tree is served unchanged.
	rr = do(t, handler, http.MethodGet, "/api/todo-list", nil)
	assert.Len(t, decodeList(t, rr), 2)
}

func TestShowApp_EscapedIdentifier(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/api/my%20app", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, handler, http.MethodGet, "/apps", nil)
	assert.JSONEq(t, `{"apps": ["my app"]}`, rr.Body.String())
}

func TestShowApp_InvalidAction(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/api/todo-list?action=%FF", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type failingOrchestrator struct {
	err error
}

func (f failingOrchestrator) Generate(context.Context, string) (domain.Tree, error) {
	return nil, f.err
}

func (f failingOrchestrator) Update(context.Context, string, string, string) (domain.Tree, error) {
	return nil, f.err
}

type malformedOrchestrator struct{}

func (malformedOrchestrator) Generate(context.Context, string) (domain.Tree, error) {
	return domain.Tree{nil}, nil
}

func (malformedOrchestrator) Update(context.Context, string, string, string) (domain.Tree, error) {
	return domain.Tree{nil}, nil
}

func TestShowApp_ErrorMapping(t *testing.T) {
	t.Run("Orchestrator", func(t *testing.T) {
		_, handler := newTestServer(t, failingOrchestrator{err: errors.New("rate limited")})
		rr := do(t, handler, http.MethodGet, "/api/todo-list", nil)
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), "rate limited")
	})

	t.Run("Schema Violation", func(t *testing.T) {
		_, handler := newTestServer(t, malformedOrchestrator{})
		rr := do(t, handler, http.MethodGet, "/api/todo-list", nil)
		require.Equal(t, http.StatusBadGateway, rr.Code)

		var body errorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.NotEmpty(t, body.Issues)
		assert.Equal(t, "/0", body.Issues[0].Path)
	})

	t.Run("Timeout", func(t *testing.T) {
		_, handler := newTestServer(t, failingOrchestrator{err: context.DeadlineExceeded})
		rr := do(t, handler, http.MethodGet, "/api/todo-list", nil)
		assert.Equal(t, http.StatusBadGateway, rr.Code, "a provider timeout is an orchestrator failure")
	})

	t.Run("Invalid App", func(t *testing.T) {
		_, handler := newTestServer(t, nil)
		rr := do(t, handler, http.MethodGet, "/api/..", nil)
		assert.NotEqual(t, http.StatusOK, rr.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidAppID, http.StatusBadRequest},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrAppNotFound, http.StatusNotFound},
		{domain.ErrSchemaViolation, http.StatusBadGateway},
		{domain.ErrOrchestrator, http.StatusBadGateway},
		{domain.ErrUnknownVariant, http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("disk"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}

func TestSubmitApp(t *testing.T) {
	_, handler := newTestServer(t, nil)

	form := url.Values{"update_instructions": {"add_item"}, "New item": {"milk"}}

	rr := do(t, handler, http.MethodPost, "/api/todo-list", form)
	assert.Equal(t, http.StatusNotFound, rr.Code, "submitting to an unknown app")

	require.Equal(t, http.StatusOK, do(t, handler, http.MethodGet, "/api/todo-list", nil).Code)

	rr = do(t, handler, http.MethodPost, "/api/todo-list", form)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	events := decodeList(t, rr)
	require.Len(t, events, 1)
	assert.Equal(t, "FireEvent", events[0]["type"])
	event := events[0]["event"].(map[string]any)
	assert.Equal(t, "go-to", event["type"])
	assert.Equal(t, "/todo-list?action=update_instructions%3A%20add_item%0ANew%20item%3A%20milk", event["url"])
}

func TestSubmitApp_RedirectIsServable(t *testing.T) {
	_, handler := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(t, handler, http.MethodGet, "/api/todo-list", nil).Code)

	redirect := func(form url.Values) *httptest.ResponseRecorder {
		return do(t, handler, http.MethodPost, "/api/todo-list", form)
	}

	rr := redirect(url.Values{"update_instructions": {"add_item"}, "New item": {"milk"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	target := decodeList(t, rr)[0]["event"].(map[string]any)["url"].(string)

	rr = do(t, handler, http.MethodGet, "/api"+target, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decodeList(t, rr)
	assert.Equal(t, "Requested: update_instructions: add_item\nNew item: milk", page[len(page)-1]["text"])

	// Each field fits the input limit but the combined instruction does not,
	// so the redirect would be rejected when followed.
	rr = redirect(url.Values{
		"update_instructions": {strings.Repeat("a", 3000)},
		"New item":            {strings.Repeat("b", 1500)},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
}

func TestCreateApp(t *testing.T) {
	_, handler := newTestServer(t, nil)

	for _, target := range []string{"/api/", "/"} {
		rr := do(t, handler, http.MethodPost, target, url.Values{"app_name": {"My Todo List"}})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		events := decodeList(t, rr)
		require.Len(t, events, 1)
		assert.Equal(t, "/my-todo-list", events[0]["event"].(map[string]any)["url"])
	}

	rr := do(t, handler, http.MethodPost, "/api/", url.Values{"app_name": {"   "}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteAndList(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/apps", nil)
	assert.JSONEq(t, `{"apps": []}`, rr.Body.String())

	do(t, handler, http.MethodGet, "/api/notes", nil)
	do(t, handler, http.MethodGet, "/api/todo-list", nil)
	rr = do(t, handler, http.MethodGet, "/apps", nil)
	assert.JSONEq(t, `{"apps": ["notes", "todo-list"]}`, rr.Body.String())

	rr = do(t, handler, http.MethodDelete, "/api/notes", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, handler, http.MethodGet, "/apps", nil)
	assert.JSONEq(t, `{"apps": ["todo-list"]}`, rr.Body.String())
}

func TestShell(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rr := do(t, handler, http.MethodGet, "/todo-list", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `data-fastui-api-root-url="/api"`)
	assert.Contains(t, rr.Body.String(), "<title>Test Engineer</title>")
	assert.Contains(t, rr.Body.String(), "fastui-prebuilt@"+PrebuiltVersion)
}

func TestUnknownAPIPath(t *testing.T) {
	_, handler := newTestServer(t, nil)
	rr := do(t, handler, http.MethodGet, "/api/todo-list/extra", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS(t *testing.T) {
	svc := app.NewService(memory.NewStore(), static.New())

	open := NewHandler(svc)
	req := httptest.NewRequest(http.MethodOptions, "/api/", nil)
	req.Header.Set("Origin", "http://elsewhere")
	rr := httptest.NewRecorder()
	open.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	restricted := NewHandler(svc, WithCORSOrigins([]string{"http://localhost:3000"}))
	for origin, want := range map[string]string{
		"http://localhost:3000": "http://localhost:3000",
		"http://elsewhere":      "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		rr := httptest.NewRecorder()
		restricted.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := observability.NewMetrics()
	svc := app.NewService(memory.NewStore(), static.New(), app.WithHooks(metrics.Hooks()))
	handler := NewHandler(svc, WithMetrics(metrics.Handler()))

	do(t, handler, http.MethodGet, "/api/todo-list", nil)
	rr := do(t, handler, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `uiengineer_orchestrations_total{op="generate",outcome="ok"} 1`)
}

// readyWatcher reports when the server has subscribed.
type readyWatcher struct {
	ports.Watchable
	ready chan struct{}
}

func (w readyWatcher) Watch(ctx context.Context) (<-chan string, error) {
	ch, err := w.Watchable.Watch(ctx)
	close(w.ready)
	return ch, err
}

func TestSubscribeEvents_App(t *testing.T) {
	notifier := observability.NewNotifier()
	server, handler := newTestServer(t, nil, app.WithHooks(notifier.Hooks()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := readyWatcher{Watchable: notifier, ready: make(chan struct{})}
	go func() { _ = server.Follow(ctx, watcher) }()
	<-watcher.ready

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest(http.MethodGet, "/events/todo-list", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(wSub, reqSub)
		close(done)
	}()
	require.Eventually(t, func() bool { return server.Streams.Count("todo-list") == 1 }, time.Second, 5*time.Millisecond)

	// Changes to other apps are not delivered.
	do(t, handler, http.MethodGet, "/api/notes", nil)
	do(t, handler, http.MethodGet, "/api/todo-list", nil)

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Equal(t, "text/event-stream", wSub.Header().Get("Content-Type"))
	assert.Contains(t, output, "event: ping\ndata: connected\n\n")
	assert.Contains(t, output, `data: {"app_id":"todo-list","event":"changed"}`)
	assert.NotContains(t, output, "notes")
	assert.Equal(t, 0, server.Streams.Count("todo-list"))
}

func TestStreamManager_AllApps(t *testing.T) {
	sm := NewStreamManager(nil)
	all, cancelAll := sm.Subscribe(AllApps)
	one, cancelOne := sm.Subscribe("a")

	sm.Broadcast("a", "x")
	sm.Broadcast("b", "y")

	assert.Equal(t, "x", <-one)
	assert.Equal(t, "x", <-all)
	assert.Equal(t, "y", <-all)

	cancelOne()
	cancelOne()
	cancelAll()
	assert.Equal(t, 0, sm.Count("a"))
	assert.Equal(t, 0, sm.Count(AllApps))
}
