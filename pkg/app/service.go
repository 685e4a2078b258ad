package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/uiengineer/internal/logging"
	"github.com/aretw0/uiengineer/internal/runtime"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/fastui"
	"github.com/aretw0/uiengineer/pkg/ports"
	"github.com/aretw0/uiengineer/pkg/schema"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
// It must exceed the slowest expected orchestrator call.
const DefaultLockTTL = 2 * time.Minute

// Service runs the application flows over a store and an orchestrator.
type Service struct {
	store        ports.StateStore
	orchestrator ports.Orchestrator

	locks   *keyedMutex
	locker  ports.DistributedLocker
	lockTTL time.Duration

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Later calls replace earlier ones.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// NewService creates a Service.
func NewService(store ports.StateStore, orchestrator ports.Orchestrator, opts ...Option) *Service {
	s := &Service{
		store:        store,
		orchestrator: orchestrator,
		locks:        newKeyedMutex(),
		lockTTL:      DefaultLockTTL,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying state store.
func (s *Service) Store() ports.StateStore {
	return s.store
}

// Show returns the current tree of appID. An unknown app, or one whose stored
// tree is empty, is generated first; a known app with a non-empty action is
// updated with it. Failed generations
// and updates leave the stored tree untouched.
func (s *Service) Show(ctx context.Context, appID, action string) (domain.Tree, error) {
	if err := domain.ValidateAppID(appID); err != nil {
		return nil, err
	}

	var tree domain.Tree
	err := s.withLock(ctx, appID, func(ctx context.Context) error {
		prior, err := s.store.Load(ctx, appID)
		switch {
		case errors.Is(err, domain.ErrAppNotFound):
			tree, err = s.generate(ctx, appID)
		case err != nil:
			return fmt.Errorf("failed to load %s: %w", appID, err)
		case len(prior) == 0:
			tree, err = s.generate(ctx, appID)
		case action == "":
			tree = prior
			return nil
		default:
			tree, err = s.update(ctx, appID, prior, action)
		}
		if err != nil {
			return err
		}
		return s.save(ctx, appID, tree)
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Render is Show followed by lowering.
func (s *Service) Render(ctx context.Context, appID, action string) ([]fastui.Component, error) {
	tree, err := s.Show(ctx, appID, action)
	if err != nil {
		return nil, err
	}
	return s.Lower(ctx, appID, tree)
}

// Lower converts tree for appID, reporting through the OnLower hook.
func (s *Service) Lower(ctx context.Context, appID string, tree domain.Tree) ([]fastui.Component, error) {
	start := time.Now()
	components, err := runtime.Lower(tree, appID)

	evt := domain.NewTreeEvent(domain.EventLower, appID)
	evt.Nodes = domain.Count(tree)
	evt.Duration = time.Since(start)
	evt.Err = err
	s.emit(ctx, s.hooks.OnLower, evt)

	if err != nil {
		// A tree that passed validation but cannot be lowered is a bug.
		s.logger.Error("lowering failed", "app_id", appID, "err", err)
		return nil, fmt.Errorf("failed to lower %s: %w", appID, err)
	}
	return components, nil
}

// Update applies instruction to an existing app. Unlike Show it never
// generates: an unknown app yields domain.ErrAppNotFound.
func (s *Service) Update(ctx context.Context, appID, instruction string) (domain.Tree, error) {
	if err := domain.ValidateAppID(appID); err != nil {
		return nil, err
	}
	if instruction == "" {
		return nil, fmt.Errorf("%w: empty instruction for %s", domain.ErrInvalidInput, appID)
	}

	var tree domain.Tree
	err := s.withLock(ctx, appID, func(ctx context.Context) error {
		prior, err := s.store.Load(ctx, appID)
		if err != nil {
			return err
		}
		tree, err = s.update(ctx, appID, prior, instruction)
		if err != nil {
			return err
		}
		return s.save(ctx, appID, tree)
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Delete removes appID from the store.
func (s *Service) Delete(ctx context.Context, appID string) error {
	if err := domain.ValidateAppID(appID); err != nil {
		return err
	}
	return s.withLock(ctx, appID, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, appID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", appID, err)
		}
		s.emit(ctx, s.hooks.OnDelete, domain.NewTreeEvent(domain.EventDelete, appID))
		return nil
	})
}

// List delegates to the store.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Rename moves the tree of from to a new identifier. Lowering then binds its
// actions to the new identifier. The destination must not exist.
func (s *Service) Rename(ctx context.Context, from, to string) error {
	if err := domain.ValidateAppID(from); err != nil {
		return err
	}
	if err := domain.ValidateAppID(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	// Lock in a fixed order so two opposite renames cannot deadlock.
	first, second := from, to
	if second < first {
		first, second = second, first
	}

	return s.withLock(ctx, first, func(ctx context.Context) error {
		return s.withLock(ctx, second, func(ctx context.Context) error {
			tree, err := s.store.Load(ctx, from)
			if err != nil {
				return err
			}
			if _, err := s.store.Load(ctx, to); err == nil {
				return fmt.Errorf("%w: %s already exists", domain.ErrInvalidAppID, to)
			} else if !errors.Is(err, domain.ErrAppNotFound) {
				return fmt.Errorf("failed to check %s: %w", to, err)
			}

			if err := s.save(ctx, to, tree); err != nil {
				return err
			}
			if err := s.store.Delete(ctx, from); err != nil {
				return fmt.Errorf("failed to delete %s after rename: %w", from, err)
			}
			s.emit(ctx, s.hooks.OnDelete, domain.NewTreeEvent(domain.EventDelete, from))
			return nil
		})
	})
}

func (s *Service) generate(ctx context.Context, appID string) (domain.Tree, error) {
	s.logger.Info("generating app", "app_id", appID)

	evt := domain.NewTreeEvent(domain.EventGenerate, appID)
	tree, err := s.orchestrate(ctx, func(ctx context.Context) (domain.Tree, error) {
		return s.orchestrator.Generate(ctx, appID)
	})
	s.finish(ctx, s.hooks.OnGenerate, evt, tree, err)
	return tree, err
}

func (s *Service) update(ctx context.Context, appID string, prior domain.Tree, instruction string) (domain.Tree, error) {
	s.logger.Info("updating app", "app_id", appID, "instruction", instruction)

	evt := domain.NewTreeEvent(domain.EventUpdate, appID)
	evt.Instruction = instruction
	tree, err := s.orchestrate(ctx, func(ctx context.Context) (domain.Tree, error) {
		return s.orchestrator.Update(ctx, appID, domain.Repr(prior), instruction)
	})
	s.finish(ctx, s.hooks.OnUpdate, evt, tree, err)
	return tree, err
}

// orchestrate calls the model, then refuses anything that is not a valid
// tree or that arrived after ctx was cancelled.
func (s *Service) orchestrate(ctx context.Context, call func(context.Context) (domain.Tree, error)) (domain.Tree, error) {
	tree, err := call(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, domain.ErrOrchestrator) || errors.Is(err, domain.ErrSchemaViolation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrOrchestrator, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := schema.CheckTree(tree); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = domain.Tree{}
	}
	return tree, nil
}

func (s *Service) finish(ctx context.Context, hook func(context.Context, *domain.TreeEvent), evt *domain.TreeEvent, tree domain.Tree, err error) {
	evt.Duration = time.Since(evt.Timestamp)
	evt.Nodes = domain.Count(tree)
	evt.Err = err
	if err != nil {
		s.logger.Warn("orchestration failed", "app_id", evt.AppID, "op", evt.Type, "err", err)
	}
	s.emit(ctx, hook, evt)
}

func (s *Service) save(ctx context.Context, appID string, tree domain.Tree) error {
	evt := domain.NewTreeEvent(domain.EventStore, appID)
	err := s.store.Save(ctx, appID, tree)
	evt.Duration = time.Since(evt.Timestamp)
	evt.Nodes = domain.Count(tree)
	evt.Err = err
	s.emit(ctx, s.hooks.OnStore, evt)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", appID, err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, hook func(context.Context, *domain.TreeEvent), evt *domain.TreeEvent) {
	if hook != nil {
		hook(ctx, evt)
	}
}
