package ports

import (
	"context"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// StateStore persists the latest component tree of each application.
// Saving replaces the previous tree wholesale.
type StateStore interface {
	// Save persists tree under appID.
	Save(ctx context.Context, appID string, tree domain.Tree) error

	// Load retrieves the tree for appID.
	// Returns domain.ErrAppNotFound if nothing was ever saved.
	Load(ctx context.Context, appID string) (domain.Tree, error)

	// Delete removes the tree for appID. Deleting a missing app is not an error.
	Delete(ctx context.Context, appID string) error

	// List returns the identifiers of all stored applications.
	List(ctx context.Context) ([]string, error)
}
