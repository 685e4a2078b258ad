package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/schema"
	backend "go.etcd.io/bbolt"
)

const defaultBucket = "apps"

// Store implements ports.StateStore on a single bbolt file.
// Each application is one key in a bucket; values are canonical tree JSON.
type Store struct {
	db     *backend.DB
	bucket []byte
}

type Option func(*Store)

// WithBucket overrides the bucket name.
func WithBucket(name string) Option {
	return func(s *Store) {
		s.bucket = []byte(name)
	}
}

// Open opens (creating if needed) the database at path.
// bbolt holds an exclusive file lock, so a second process blocks; Open gives
// up after one second instead of hanging.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := backend.Open(path, 0600, &backend.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	s := &Store{db: db, bucket: []byte(defaultBucket)}
	for _, opt := range opts {
		opt(s)
	}

	err = db.Update(func(tx *backend.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize bucket %q: %w", s.bucket, err)
	}
	return s, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists the tree under appID.
func (s *Store) Save(ctx context.Context, appID string, tree domain.Tree) error {
	data, err := domain.MarshalTree(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}
	return s.db.Update(func(tx *backend.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(appID), data)
	})
}

// Load retrieves the tree for appID.
func (s *Store) Load(ctx context.Context, appID string) (domain.Tree, error) {
	var tree domain.Tree
	err := s.db.View(func(tx *backend.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(appID))
		if v == nil {
			return domain.ErrAppNotFound
		}
		// v is only valid inside the transaction; parsing copies what it keeps.
		parsed, err := schema.ParseJSON(v)
		if err != nil {
			return fmt.Errorf("corrupt record for %s: %w", appID, err)
		}
		tree = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Delete removes appID. Missing keys are ignored by bbolt.
func (s *Store) Delete(ctx context.Context, appID string) error {
	return s.db.Update(func(tx *backend.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(appID))
	})
}

// List returns keys in byte order, which bbolt maintains.
func (s *Store) List(ctx context.Context) ([]string, error) {
	apps := []string{}
	err := s.db.View(func(tx *backend.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			apps = append(apps, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}
