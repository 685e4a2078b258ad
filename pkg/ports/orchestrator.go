package ports

import (
	"context"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// Orchestrator is the model-backed producer of component trees.
// Returned trees are untrusted until validated; failures wrap
// domain.ErrOrchestrator.
type Orchestrator interface {
	// Generate builds the initial tree for an application identifier.
	Generate(ctx context.Context, appID string) (domain.Tree, error)

	// Update returns a new tree derived from the prior one (given as its
	// textual representation) and a natural-language instruction.
	Update(ctx context.Context, appID, prior, instruction string) (domain.Tree, error)
}
