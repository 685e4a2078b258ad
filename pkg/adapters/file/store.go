package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/schema"
	json "github.com/goccy/go-json"
)

const ext = ".json"

// Store implements ports.StateStore using the local filesystem.
// Each application is one JSON document in BasePath.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".uiengineer/apps".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".uiengineer", "apps")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(appID string) (string, error) {
	if err := domain.ValidateAppID(appID); err != nil {
		return "", err
	}
	return filepath.Join(s.BasePath, appID+ext), nil
}

// Save writes the tree atomically: it writes to a temporary file in the same
// directory, fsyncs it and renames it over the destination.
func (s *Store) Save(ctx context.Context, appID string, tree domain.Tree) error {
	destPath, err := s.path(appID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure app directory: %w", err)
	}

	raw, err := domain.MarshalTree(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}
	var data bytes.Buffer
	if err := json.Indent(&data, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to indent tree: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing app file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load reads and re-validates the stored tree.
func (s *Store) Load(ctx context.Context, appID string) (domain.Tree, error) {
	filePath, err := s.path(appID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to read app file: %w", err)
	}

	tree, err := schema.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("corrupt app file %s: %w", filePath, err)
	}
	return tree, nil
}

// Delete removes the app file.
func (s *Store) Delete(ctx context.Context, appID string) error {
	filePath, err := s.path(appID)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete app file: %w", err)
	}
	return nil
}

// List returns all stored application identifiers.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}

	apps := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		apps = append(apps, strings.TrimSuffix(name, ext))
	}
	sort.Strings(apps)
	return apps, nil
}
