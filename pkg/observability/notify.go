package observability

import (
	"context"
	"sync"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// Notifier is an in-process ports.Watchable fed by lifecycle hooks.
// Slow subscribers miss events rather than block the service.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan string]struct{})}
}

// Watch implements ports.Watchable.
func (n *Notifier) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, ch)
		close(ch)
		n.mu.Unlock()
	}()
	return ch, nil
}

// Publish announces a change of appID to every subscriber.
func (n *Notifier) Publish(appID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- appID:
		default:
		}
	}
}

// Hooks publishes after every successful store or delete.
func (n *Notifier) Hooks() domain.LifecycleHooks {
	publish := func(_ context.Context, e *domain.TreeEvent) {
		if e.Err == nil {
			n.Publish(e.AppID)
		}
	}
	return domain.LifecycleHooks{
		OnStore:  publish,
		OnDelete: publish,
	}
}
