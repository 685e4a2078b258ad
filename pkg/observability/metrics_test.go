package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	gen := domain.NewTreeEvent(domain.EventGenerate, "todo-list")
	gen.Duration = 300 * time.Millisecond
	hooks.OnGenerate(ctx, gen)

	failed := domain.NewTreeEvent(domain.EventUpdate, "todo-list")
	failed.Err = fmt.Errorf("bad reply: %w", domain.ErrSchemaViolation)
	hooks.OnUpdate(ctx, failed)

	lowered := domain.NewTreeEvent(domain.EventLower, "todo-list")
	lowered.Nodes = 4
	hooks.OnLower(ctx, lowered)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("generate", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("update", OutcomeSchemaViolation)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.loweredNodes))
	assert.Equal(t, 2, testutil.CollectAndCount(m.latency))
	assert.Nil(t, hooks.OnStore)
}

func TestMetrics_ObserveStore(t *testing.T) {
	m := NewMetrics()
	m.ObserveStore("load", time.Millisecond, nil)
	m.ObserveStore("load", time.Millisecond, domain.ErrAppNotFound)
	m.ObserveStore("save", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("load", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("load", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("save", OutcomeOK)))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveStore("save", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `uiengineer_store_operations_total{op="save",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{fmt.Errorf("x: %w", domain.ErrOrchestrator), OutcomeOrchestrator},
		{domain.ErrAppNotFound, OutcomeNotFound},
		{context.DeadlineExceeded, OutcomeCanceled},
		{errors.New("disk"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "%v", tt.err)
	}
}
