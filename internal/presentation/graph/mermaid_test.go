package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/uiengineer/internal/presentation/graph"
	"github.com/aretw0/uiengineer/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		tree     domain.Tree
		contains []string
	}{
		{
			name: "Shapes",
			tree: domain.Tree{
				domain.Text{Content: "Hello"},
				domain.Button{Content: "Add", ClickAction: "add item"},
				domain.Link{Content: "Home", ClickAction: "go home"},
				domain.InputField{Label: "New item", SubmitLabel: "Add", SubmitAction: "add_item"},
			},
			contains: []string{
				"n0[\"Hello\"]",
				"n1([\"Add\"])",
				"n2>\"Home\"]",
				"n3[/\"New item: Add\"/]",
			},
		},
		{
			name: "Nesting",
			tree: domain.Tree{
				domain.Container{StyleClass: "flex flex-col", Children: []domain.Component{
					domain.Text{Content: "inside"},
				}},
			},
			contains: []string{
				"root --> n0",
				"n0[\"container .flex flex-col\"]",
				"n0 --> n0_0",
				"n0_0[\"inside\"]",
			},
		},
		{
			name: "Shared Actions",
			tree: domain.Tree{
				domain.Button{Content: "A", ClickAction: "refresh"},
				domain.Link{Content: "B", ClickAction: "refresh"},
			},
			contains: []string{
				"a0((\"refresh\"))",
				"n0 -.-> a0",
				"n1 -.-> a0",
			},
		},
		{
			name: "Label Escaping",
			tree: domain.Tree{
				domain.Text{Content: `say "hi"` + "\nnow"},
			},
			contains: []string{
				"n0[\"say #quot;hi#quot; now\"]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid("todo-list", tt.tree, nil)
			if !strings.HasPrefix(got, "graph TD\n    root{{\"todo-list\"}}\n") {
				t.Errorf("unexpected header:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, got)
				}
			}
		})
	}
}

func TestGenerateMermaid_DistinctActionsOnce(t *testing.T) {
	got := graph.GenerateMermaid("app", domain.Tree{
		domain.Button{Content: "A", ClickAction: "x"},
		domain.Button{Content: "B", ClickAction: "x"},
		domain.Button{Content: "C", ClickAction: "y"},
	}, nil)

	if n := strings.Count(got, "((\"x\"))"); n != 1 {
		t.Errorf("expected one node for action x, got %d", n)
	}
	if !strings.Contains(got, "a1((\"y\"))") {
		t.Errorf("expected second action node a1:\n%s", got)
	}
}

func TestGenerateMermaid_LongLabel(t *testing.T) {
	got := graph.GenerateMermaid("app", domain.Tree{domain.Text{Content: strings.Repeat("x", 100)}}, nil)
	if !strings.Contains(got, strings.Repeat("x", 39)+"…") {
		t.Errorf("expected truncated label:\n%s", got)
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	tree := domain.Tree{
		domain.Button{Content: "Add", ClickAction: "add item"},
		domain.Button{Content: "Clear", ClickAction: "clear"},
	}

	got := graph.GenerateMermaid("app", tree, &graph.GraphOverlay{CurrentAction: "add item"})

	for _, want := range []string{"classDef current", "class n0 current;", "class a0 current;"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "class n1 current;") {
		t.Error("unrelated component highlighted")
	}
}
