package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/ports"
)

// Mask replaces redacted text.
const Mask = "***"

type redactMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks every match of the
// patterns in the visible text of a tree before it is stored. Actions are
// left alone since lowering needs them verbatim.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, appID string, tree domain.Tree) error {
	return m.next.Save(ctx, appID, m.redactList(tree))
}

func (m *redactMiddleware) Load(ctx context.Context, appID string) (domain.Tree, error) {
	return m.next.Load(ctx, appID)
}

func (m *redactMiddleware) Delete(ctx context.Context, appID string) error {
	return m.next.Delete(ctx, appID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// redactList builds a new tree; the caller's tree is never modified.
func (m *redactMiddleware) redactList(nodes []domain.Component) []domain.Component {
	if nodes == nil {
		return nil
	}
	out := make([]domain.Component, len(nodes))
	for i, c := range nodes {
		switch v := c.(type) {
		case domain.Text:
			v.Content = m.mask(v.Content)
			out[i] = v
		case domain.Button:
			v.Content = m.mask(v.Content)
			out[i] = v
		case domain.Link:
			v.Content = m.mask(v.Content)
			out[i] = v
		case domain.InputField:
			v.Label = m.mask(v.Label)
			v.Placeholder = m.mask(v.Placeholder)
			out[i] = v
		case domain.Container:
			v.Children = m.redactList(v.Children)
			out[i] = v
		default:
			out[i] = c
		}
	}
	return out
}

func (m *redactMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
