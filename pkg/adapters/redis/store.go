package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/schema"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "uiengineer:"

// Store implements ports.StateStore and ports.Watchable using Redis.
// Trees live under prefix+"app:"+appID; a sorted set at prefix+"index" tracks
// membership and expiry; changes are announced on prefix+"events". A Locker
// sharing the prefix uses prefix+"lock:", so no app identifier can collide
// with these keys.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored apps.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(appID string) string {
	return s.prefix + "app:" + appID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) eventsKey() string {
	return s.prefix + "events"
}

// Save persists the tree and announces the change.
func (s *Store) Save(ctx context.Context, appID string, tree domain.Tree) error {
	data, err := domain.MarshalTree(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	// Index score is the expiry time; without a TTL it is far in the future.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(appID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: appID})
	pipe.Publish(ctx, s.eventsKey(), appID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the tree from Redis.
func (s *Store) Load(ctx context.Context, appID string) (domain.Tree, error) {
	val, err := s.client.Get(ctx, s.key(appID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	tree, err := schema.ParseJSON(val)
	if err != nil {
		return nil, fmt.Errorf("corrupt value for %s: %w", appID, err)
	}
	return tree, nil
}

// Delete removes the app and announces the change.
func (s *Store) Delete(ctx context.Context, appID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(appID))
	pipe.ZRem(ctx, s.indexKey(), appID)
	pipe.Publish(ctx, s.eventsKey(), appID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns live apps, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired apps: %w", err)
	}

	apps, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

// Watch subscribes to change announcements from every replica.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.client.Subscribe(ctx, s.eventsKey())
	// Wait for the subscription to be confirmed so no event is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
