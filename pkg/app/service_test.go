package app_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/uiengineer/pkg/adapters/memory"
	"github.com/aretw0/uiengineer/pkg/app"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/fastui"
	"github.com/aretw0/uiengineer/pkg/ports"
	"github.com/aretw0/uiengineer/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrchestrator records calls and returns canned trees.
type fakeOrchestrator struct {
	delay     time.Duration
	generated atomic.Int32
	updated   atomic.Int32

	mu         sync.Mutex
	lastPrior  string
	lastAction string
	generateFn func(ctx context.Context, appID string) (domain.Tree, error)
	updateFn   func(ctx context.Context, appID, prior, instruction string) (domain.Tree, error)
}

func (f *fakeOrchestrator) Generate(ctx context.Context, appID string) (domain.Tree, error) {
	f.generated.Add(1)
	time.Sleep(f.delay)
	if f.generateFn != nil {
		return f.generateFn(ctx, appID)
	}
	return todoTree(), nil
}

func (f *fakeOrchestrator) Update(ctx context.Context, appID, prior, instruction string) (domain.Tree, error) {
	f.updated.Add(1)
	f.mu.Lock()
	f.lastPrior, f.lastAction = prior, instruction
	f.mu.Unlock()
	if f.updateFn != nil {
		return f.updateFn(ctx, appID, prior, instruction)
	}
	return domain.Tree{domain.Button{StyleClass: "text-danger", Content: "Add", ClickAction: "add item"}}, nil
}

func todoTree() domain.Tree {
	return domain.Tree{
		domain.Container{Children: []domain.Component{
			domain.Text{Content: "My Todos"},
			domain.InputField{Label: "New item", SubmitAction: "add_item", SubmitLabel: "Add"},
		}},
	}
}

func newService(orch ports.Orchestrator, opts ...app.Option) (*app.Service, *memory.Store) {
	store := memory.NewStore()
	return app.NewService(store, orch, opts...), store
}

func TestService_Show_GeneratesUnknownApp(t *testing.T) {
	orch := &fakeOrchestrator{}
	svc, store := newService(orch)
	ctx := context.Background()

	tree, err := svc.Show(ctx, "todo-list", "")
	require.NoError(t, err)
	assert.Equal(t, todoTree(), tree)

	stored, err := store.Load(ctx, "todo-list")
	require.NoError(t, err)
	assert.Equal(t, todoTree(), stored)

	// A second visit without action is served from the store.
	_, err = svc.Show(ctx, "todo-list", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, orch.generated.Load())
	assert.EqualValues(t, 0, orch.updated.Load())
}

func TestService_Show_ConcurrentFirstVisitGeneratesOnce(t *testing.T) {
	orch := &fakeOrchestrator{delay: 20 * time.Millisecond}
	svc, _ := newService(orch)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := svc.Show(ctx, "todo-list", "")
			assert.NoError(t, err)
			assert.Equal(t, todoTree(), tree)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, orch.generated.Load(), "generation must happen exactly once")
}

func TestService_Show_UpdateWithAction(t *testing.T) {
	orch := &fakeOrchestrator{}
	svc, store := newService(orch)
	ctx := context.Background()

	prior := domain.Tree{domain.Button{Content: "Add", ClickAction: "add item"}}
	require.NoError(t, store.Save(ctx, "todo-list", prior))

	tree, err := svc.Show(ctx, "todo-list", "make button red")
	require.NoError(t, err)

	assert.Equal(t, "text-danger", tree[0].Class())
	assert.Equal(t, domain.Repr(prior), orch.lastPrior)
	assert.Equal(t, "make button red", orch.lastAction)

	stored, _ := store.Load(ctx, "todo-list")
	assert.Equal(t, tree, stored)

	components, err := svc.Lower(ctx, "todo-list", tree)
	require.NoError(t, err)
	assert.Equal(t, fastui.GoToEvent{URL: "/todo-list?action=add%20item"}, components[0].(fastui.Button).OnClick)
}

func TestService_Show_MalformedOutputIsNotStored(t *testing.T) {
	orch := &fakeOrchestrator{
		generateFn: func(context.Context, string) (domain.Tree, error) {
			return schema.Parse([]any{map[string]any{"placeholder": "", "submit_action": "add_item", "submit_label": "Add"}})
		},
	}
	svc, store := newService(orch)
	ctx := context.Background()

	_, err := svc.Show(ctx, "todo-list", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)

	_, err = store.Load(ctx, "todo-list")
	assert.ErrorIs(t, err, domain.ErrAppNotFound, "a failed generation must not be stored")
}

func TestService_Show_FailedUpdateKeepsPrior(t *testing.T) {
	orch := &fakeOrchestrator{
		updateFn: func(context.Context, string, string, string) (domain.Tree, error) {
			return nil, errors.New("rate limited")
		},
	}
	svc, store := newService(orch)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "todo-list", todoTree()))

	_, err := svc.Show(ctx, "todo-list", "add dark mode")
	assert.ErrorIs(t, err, domain.ErrOrchestrator)

	stored, err := store.Load(ctx, "todo-list")
	require.NoError(t, err)
	assert.Equal(t, todoTree(), stored)
}

func TestService_Show_RejectsInvalidTree(t *testing.T) {
	orch := &fakeOrchestrator{
		generateFn: func(context.Context, string) (domain.Tree, error) {
			return domain.Tree{domain.Container{Children: []domain.Component{nil}}}, nil
		},
	}
	svc, store := newService(orch)

	_, err := svc.Show(context.Background(), "app", "")
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)

	apps, _ := store.List(context.Background())
	assert.Empty(t, apps)
}

func TestService_Show_CancelledResultIsNotCommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	orch := &fakeOrchestrator{
		generateFn: func(context.Context, string) (domain.Tree, error) {
			cancel()
			return todoTree(), nil
		},
	}
	svc, store := newService(orch)

	_, err := svc.Show(ctx, "todo-list", "")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Load(context.Background(), "todo-list")
	assert.ErrorIs(t, err, domain.ErrAppNotFound)
}

func TestService_Show_InvalidAppID(t *testing.T) {
	svc, _ := newService(&fakeOrchestrator{})
	_, err := svc.Show(context.Background(), "../etc", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAppID)
}

func TestService_Show_RegeneratesEmptyTree(t *testing.T) {
	orch := &fakeOrchestrator{}
	svc, store := newService(orch)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "todo-list", domain.Tree{}))

	tree, err := svc.Show(ctx, "todo-list", "make button red")
	require.NoError(t, err)
	assert.Equal(t, todoTree(), tree)
	assert.EqualValues(t, 1, orch.generated.Load())
	assert.EqualValues(t, 0, orch.updated.Load(), "an empty tree is generated, not updated")

	stored, err := store.Load(ctx, "todo-list")
	require.NoError(t, err)
	assert.Equal(t, todoTree(), stored)
}

func TestService_Render(t *testing.T) {
	svc, _ := newService(&fakeOrchestrator{})

	components, err := svc.Render(context.Background(), "todo-list", "")
	require.NoError(t, err)
	require.Len(t, components, 1)

	form := components[0].(fastui.Div).Components[1].(fastui.Form)
	assert.Equal(t, "/api/todo-list", form.SubmitURL)
	assert.Equal(t, fastui.GoToEvent{URL: "/todo-list?action=add_item"}, form.SubmitTrigger.(fastui.PageEvent).NextEvent)
}

func TestService_Update(t *testing.T) {
	orch := &fakeOrchestrator{}
	svc, store := newService(orch)
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", "anything")
	assert.ErrorIs(t, err, domain.ErrAppNotFound)
	assert.EqualValues(t, 0, orch.generated.Load(), "Update never generates")

	require.NoError(t, store.Save(ctx, "todo-list", todoTree()))
	tree, err := svc.Update(ctx, "todo-list", "make button red")
	require.NoError(t, err)
	assert.Equal(t, domain.KindButton, tree[0].Kind())

	_, err = svc.Update(ctx, "todo-list", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_Submit(t *testing.T) {
	svc, store := newService(&fakeOrchestrator{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "todo-list", url.Values{"New item": {"milk"}})
	assert.ErrorIs(t, err, domain.ErrAppNotFound)

	require.NoError(t, store.Save(ctx, "todo-list", todoTree()))
	got, err := svc.Submit(ctx, "todo-list", url.Values{
		"update_instructions": {"add_item"},
		"New item":            {"milk"},
	})
	require.NoError(t, err)
	assert.Equal(t, fastui.FireEvent{
		Event: fastui.GoToEvent{URL: "/todo-list?action=update_instructions%3A%20add_item%0ANew%20item%3A%20milk"},
	}, got)
	_, err = svc.Submit(ctx, "todo-list", url.Values{
		"update_instructions": {strings.Repeat("a", 3000)},
		"New item":            {strings.Repeat("b", 1500)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "the encoded form exceeds the input limit")
}

func TestService_CreateDeleteList(t *testing.T) {
	svc, store := newService(&fakeOrchestrator{})
	ctx := context.Background()

	appID, err := svc.Create(ctx, "  My Todo List ")
	require.NoError(t, err)
	assert.Equal(t, "my-todo-list", appID)

	_, err = svc.Create(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidAppID)

	_, err = svc.Show(ctx, appID, "")
	require.NoError(t, err)

	apps, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-todo-list"}, apps)

	require.NoError(t, svc.Delete(ctx, appID))
	_, err = store.Load(ctx, appID)
	assert.ErrorIs(t, err, domain.ErrAppNotFound)
}

func TestService_Rename(t *testing.T) {
	svc, store := newService(&fakeOrchestrator{})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "todo-list", todoTree()))
	require.NoError(t, store.Save(ctx, "taken", domain.Tree{}))

	err := svc.Rename(ctx, "todo-list", "taken")
	assert.ErrorIs(t, err, domain.ErrInvalidAppID)

	err = svc.Rename(ctx, "missing", "anything")
	assert.ErrorIs(t, err, domain.ErrAppNotFound)

	require.NoError(t, svc.Rename(ctx, "todo-list", "groceries"))
	_, err = store.Load(ctx, "todo-list")
	assert.ErrorIs(t, err, domain.ErrAppNotFound)

	components, err := svc.Render(ctx, "groceries", "")
	require.NoError(t, err)
	form := components[0].(fastui.Div).Components[1].(fastui.Form)
	assert.Equal(t, "/api/groceries", form.SubmitURL)
}

func TestService_Hooks(t *testing.T) {
	var mu sync.Mutex
	var events []domain.EventType
	record := func(_ context.Context, evt *domain.TreeEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, evt.Type)
		assert.Equal(t, "todo-list", evt.AppID)
	}

	svc, _ := newService(&fakeOrchestrator{}, app.WithHooks(domain.LifecycleHooks{
		OnGenerate: record,
		OnUpdate:   record,
		OnStore:    record,
		OnLower:    record,
		OnDelete:   record,
	}))
	ctx := context.Background()

	_, err := svc.Render(ctx, "todo-list", "")
	require.NoError(t, err)
	_, err = svc.Show(ctx, "todo-list", "make button red")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "todo-list"))

	assert.Equal(t, []domain.EventType{
		domain.EventGenerate, domain.EventStore, domain.EventLower,
		domain.EventUpdate, domain.EventStore,
		domain.EventDelete,
	}, events)
}

// countingLocker is an in-process DistributedLocker that records usage.
type countingLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired int
	released int
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, errors.New("double acquisition")
	}
	l.held[key] = true
	l.acquired++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, nil
}

func TestService_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	svc, _ := newService(&fakeOrchestrator{}, app.WithLocker(locker), app.WithLockTTL(time.Second))
	ctx := context.Background()

	_, err := svc.Show(ctx, "todo-list", "")
	require.NoError(t, err)
	require.NoError(t, svc.Rename(ctx, "todo-list", "groceries"))

	assert.Equal(t, 3, locker.acquired)
	assert.Equal(t, locker.acquired, locker.released)
}
