// Package static implements a deterministic, offline ports.Orchestrator.
//
// It never invents content: a generated app is a titled, empty column, and
// every update appends a note recording the instruction. It backs the
// "offline" provider and tests that need a real orchestrator without a model.
package static

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// Orchestrator implements ports.Orchestrator without a model. It keeps no
// state: Update rebuilds the current tree from the prior representation.
type Orchestrator struct{}

// New creates a static orchestrator.
func New() *Orchestrator {
	return &Orchestrator{}
}

// Generate returns a column holding only the humanized app title.
func (o *Orchestrator) Generate(ctx context.Context, appID string) (domain.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return domain.Tree{
		domain.Container{StyleClass: "flex flex-col", Children: []domain.Component{
			domain.Text{StyleClass: "h2", Content: Title(appID)},
		}},
	}, nil
}

// Update appends a note with the instruction to the tree described by prior.
// An empty prior starts from a freshly generated tree.
func (o *Orchestrator) Update(ctx context.Context, appID, prior, instruction string) (domain.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tree domain.Tree
	var err error
	if strings.TrimSpace(prior) == "" {
		tree, err = o.Generate(ctx, appID)
	} else {
		tree, err = domain.ParseRepr(prior)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOrchestrator, err)
	}

	return append(tree, domain.Text{StyleClass: "text-muted", Content: "Requested: " + instruction}), nil
}

// Title turns an identifier like "todo-list" into "Todo list".
func Title(appID string) string {
	words := strings.FieldsFunc(appID, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return appID
	}
	s := strings.Join(words, " ")
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
