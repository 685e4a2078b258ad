package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/ports"
)

// StoreObserver receives the outcome of every store operation.
// *observability.Metrics implements it.
type StoreObserver interface {
	ObserveStore(op string, d time.Duration, err error)
}

type instrumentMiddleware struct {
	next     ports.StateStore
	observer StoreObserver
	logger   *slog.Logger
}

// NewInstrumentMiddleware reports every operation to observer and logs
// failures. Either argument may be nil. A Load of a missing app is not a
// failure.
func NewInstrumentMiddleware(observer StoreObserver, logger *slog.Logger) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &instrumentMiddleware{next: next, observer: observer, logger: logger}
	}
}

func (m *instrumentMiddleware) Save(ctx context.Context, appID string, tree domain.Tree) error {
	start := time.Now()
	err := m.next.Save(ctx, appID, tree)
	m.record(ctx, "save", appID, start, err)
	return err
}

func (m *instrumentMiddleware) Load(ctx context.Context, appID string) (domain.Tree, error) {
	start := time.Now()
	tree, err := m.next.Load(ctx, appID)
	m.record(ctx, "load", appID, start, err)
	return tree, err
}

func (m *instrumentMiddleware) Delete(ctx context.Context, appID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, appID)
	m.record(ctx, "delete", appID, start, err)
	return err
}

func (m *instrumentMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.record(ctx, "list", "", start, err)
	return ids, err
}

func (m *instrumentMiddleware) record(ctx context.Context, op, appID string, start time.Time, err error) {
	d := time.Since(start)
	if m.observer != nil {
		m.observer.ObserveStore(op, d, err)
	}
	if m.logger != nil && err != nil && !errors.Is(err, domain.ErrAppNotFound) {
		m.logger.ErrorContext(ctx, "store operation failed", "op", op, "app_id", appID, "duration", d, "err", err)
	}
}
