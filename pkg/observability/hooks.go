package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// LoggingHooks returns hooks that write an audit line per service event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(ctx context.Context, e *domain.TreeEvent) {
		level := slog.LevelInfo
		attrs := []any{
			"app_id", e.AppID,
			"nodes", e.Nodes,
			"duration", e.Duration,
		}
		if e.Instruction != "" {
			attrs = append(attrs, "instruction", e.Instruction)
		}
		if e.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, "err", e.Err)
		}
		logger.Log(ctx, level, string(e.Type), attrs...)
	}
	return domain.LifecycleHooks{
		OnGenerate: log,
		OnUpdate:   log,
		OnDelete:   log,
	}
}

// CombineHooks returns hooks that call every non-nil hook of each set in order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	pick := func(get func(domain.LifecycleHooks) func(context.Context, *domain.TreeEvent)) func(context.Context, *domain.TreeEvent) {
		var fns []func(context.Context, *domain.TreeEvent)
		for _, s := range sets {
			if fn := get(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, e *domain.TreeEvent) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}

	return domain.LifecycleHooks{
		OnGenerate: pick(func(h domain.LifecycleHooks) func(context.Context, *domain.TreeEvent) { return h.OnGenerate }),
		OnUpdate:   pick(func(h domain.LifecycleHooks) func(context.Context, *domain.TreeEvent) { return h.OnUpdate }),
		OnStore:    pick(func(h domain.LifecycleHooks) func(context.Context, *domain.TreeEvent) { return h.OnStore }),
		OnLower:    pick(func(h domain.LifecycleHooks) func(context.Context, *domain.TreeEvent) { return h.OnLower }),
		OnDelete:   pick(func(h domain.LifecycleHooks) func(context.Context, *domain.TreeEvent) { return h.OnDelete }),
	}
}
