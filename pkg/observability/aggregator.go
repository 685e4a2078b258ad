package observability

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/uiengineer/pkg/ports"
)

// Aggregator combines multiple watchers into a single change stream.
type Aggregator struct {
	watchers []ports.Watchable
}

// NewAggregator creates a new aggregator.
func NewAggregator(watchers ...ports.Watchable) *Aggregator {
	return &Aggregator{watchers: watchers}
}

// AddWatcher registers a watcher.
func (a *Aggregator) AddWatcher(w ports.Watchable) {
	a.watchers = append(a.watchers, w)
}

// Watch subscribes to every watcher and merges their events. The returned
// channel closes once all sources have closed. If any subscription fails the
// ones already made are cancelled.
func (a *Aggregator) Watch(ctx context.Context) (<-chan string, error) {
	ctx, cancel := context.WithCancel(ctx)

	sources := make([]<-chan string, 0, len(a.watchers))
	for i, w := range a.watchers {
		ch, err := w.Watch(ctx)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("watcher %d: %w", i, err)
		}
		sources = append(sources, ch)
	}

	out := make(chan string)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src <-chan string) {
			defer wg.Done()
			for id := range src {
				select {
				case out <- id:
				case <-ctx.Done():
					// Drain so the source can close.
					for range src {
					}
					return
				}
			}
		}(src)
	}
	go func() {
		wg.Wait()
		cancel()
		close(out)
	}()
	return out, nil
}
