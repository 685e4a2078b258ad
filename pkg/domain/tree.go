package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Walk visits every component depth-first, parents before children.
// The tree must be acyclic; use schema.CheckTree on untrusted trees first.
func Walk(tree Tree, fn func(c Component, depth int) error) error {
	return walk(tree, 0, fn)
}

func walk(nodes []Component, depth int, fn func(Component, int) error) error {
	for _, c := range nodes {
		if err := fn(c, depth); err != nil {
			return err
		}
		if box, ok := c.(Container); ok {
			if err := walk(box.Children, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Count returns the number of components in the tree, containers included.
func Count(tree Tree) int {
	n := 0
	_ = Walk(tree, func(Component, int) error {
		n++
		return nil
	})
	return n
}

// Repr renders a stable structural dump of the tree: one component per line,
// strings quoted, nesting shown by indentation. It is what the orchestrator
// receives as the prior state on update.
func Repr(tree Tree) string {
	var sb strings.Builder
	sb.WriteString("[\n")
	reprList(&sb, tree, 1)
	sb.WriteString("]")
	return sb.String()
}

func reprList(sb *strings.Builder, nodes []Component, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range nodes {
		sb.WriteString(indent)
		switch v := c.(type) {
		case Text:
			fmt.Fprintf(sb, "Text(style_class=%s, content=%s)", strconv.Quote(v.StyleClass), strconv.Quote(v.Content))
		case Button:
			fmt.Fprintf(sb, "Button(style_class=%s, content=%s, click_action=%s)",
				strconv.Quote(v.StyleClass), strconv.Quote(v.Content), strconv.Quote(v.ClickAction))
		case Link:
			fmt.Fprintf(sb, "Link(style_class=%s, content=%s, click_action=%s)",
				strconv.Quote(v.StyleClass), strconv.Quote(v.Content), strconv.Quote(v.ClickAction))
		case InputField:
			fmt.Fprintf(sb, "InputField(style_class=%s, label=%s, placeholder=%s, submit_action=%s, submit_label=%s)",
				strconv.Quote(v.StyleClass), strconv.Quote(v.Label), strconv.Quote(v.Placeholder),
				strconv.Quote(v.SubmitAction), strconv.Quote(v.SubmitLabel))
		case Container:
			if len(v.Children) == 0 {
				fmt.Fprintf(sb, "Container(style_class=%s, children=[])", strconv.Quote(v.StyleClass))
				break
			}
			fmt.Fprintf(sb, "Container(style_class=%s, children=[\n", strconv.Quote(v.StyleClass))
			reprList(sb, v.Children, depth+1)
			sb.WriteString(indent + "])")
		default:
			fmt.Fprintf(sb, "Unknown(%T)", c)
		}
		sb.WriteString(",\n")
	}
}

// MarshalTree encodes the tree in its canonical JSON form, with an explicit
// "type" discriminator on every component.
func MarshalTree(tree Tree) ([]byte, error) {
	wire, err := toWireList(tree)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

func toWireList(nodes []Component) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(nodes))
	for i, c := range nodes {
		w, err := toWire(c)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func toWire(c Component) (map[string]any, error) {
	switch v := c.(type) {
	case Text:
		return map[string]any{"type": KindText, "style_class": v.StyleClass, "content": v.Content}, nil
	case Button:
		return map[string]any{"type": KindButton, "style_class": v.StyleClass, "content": v.Content, "click_action": v.ClickAction}, nil
	case Link:
		return map[string]any{"type": KindLink, "style_class": v.StyleClass, "content": v.Content, "click_action": v.ClickAction}, nil
	case InputField:
		return map[string]any{
			"type":          KindInputField,
			"style_class":   v.StyleClass,
			"label":         v.Label,
			"placeholder":   v.Placeholder,
			"submit_action": v.SubmitAction,
			"submit_label":  v.SubmitLabel,
		}, nil
	case Container:
		children, err := toWireList(v.Children)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": KindContainer, "style_class": v.StyleClass, "children": children}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownVariant, c)
	}
}

// Clone returns a deep copy of the tree. Containers get fresh children
// slices, so the copy shares no mutable state with the original.
func Clone(tree Tree) Tree {
	if tree == nil {
		return nil
	}
	return Tree(cloneList(tree))
}

func cloneList(nodes []Component) []Component {
	out := make([]Component, len(nodes))
	for i, c := range nodes {
		if box, ok := c.(Container); ok && box.Children != nil {
			box.Children = cloneList(box.Children)
			c = box
		}
		out[i] = c
	}
	return out
}
