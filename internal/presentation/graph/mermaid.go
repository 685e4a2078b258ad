package graph

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// maxLabel bounds the visible text of a node label, in runes.
const maxLabel = 40

// GraphOverlay contains dynamic data to visualize on the graph.
type GraphOverlay struct {
	// CurrentAction highlights the components that trigger this action.
	CurrentAction string
}

// GenerateMermaid produces a Mermaid flowchart of a component tree.
// It applies semantic styling:
// - Container: [Rectangle] with its style class
// - Text: ["Quoted"]
// - Button: ([Stadium])
// - Link: >Flag]
// - InputField: [/Parallelogram/]
// Actions are drawn as dotted edges to one circle per distinct action.
func GenerateMermaid(appID string, tree domain.Tree, overlay *GraphOverlay) string {
	g := &generator{actions: make(map[string]string)}
	g.sb.WriteString("graph TD\n")
	g.sb.WriteString(fmt.Sprintf("    root{{\"%s\"}}\n", escape(appID)))

	for i, c := range tree {
		id := "n" + strconv.Itoa(i)
		g.node(id, c)
		g.sb.WriteString(fmt.Sprintf("    root --> %s\n", id))
	}

	// Apply Overlay Styles
	if overlay != nil && overlay.CurrentAction != "" {
		g.sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		g.sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range g.triggers[overlay.CurrentAction] {
			g.sb.WriteString(fmt.Sprintf("    class %s current;\n", id))
		}
		if actionID, ok := g.actions[overlay.CurrentAction]; ok {
			g.sb.WriteString(fmt.Sprintf("    class %s current;\n", actionID))
		}
	}

	return g.sb.String()
}

type generator struct {
	sb       strings.Builder
	actions  map[string]string   // action -> node id
	order    []string            // actions in first-seen order
	triggers map[string][]string // action -> component ids
}

func (g *generator) node(id string, c domain.Component) {
	switch v := c.(type) {
	case domain.Container:
		label := "container"
		if v.StyleClass != "" {
			label += " ." + v.StyleClass
		}
		g.sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, escape(label)))
		for i, child := range v.Children {
			childID := id + "_" + strconv.Itoa(i)
			g.node(childID, child)
			g.sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, childID))
		}
	case domain.Text:
		g.sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, escape(v.Content)))
	case domain.Button:
		g.sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", id, escape(v.Content)))
		g.action(id, v.ClickAction)
	case domain.Link:
		g.sb.WriteString(fmt.Sprintf("    %s>\"%s\"]\n", id, escape(v.Content)))
		g.action(id, v.ClickAction)
	case domain.InputField:
		g.sb.WriteString(fmt.Sprintf("    %s[/\"%s: %s\"/]\n", id, escape(v.Label), escape(v.SubmitLabel)))
		g.action(id, v.SubmitAction)
	default:
		g.sb.WriteString(fmt.Sprintf("    %s[\"?\"]\n", id))
	}
}

func (g *generator) action(from, action string) {
	actionID, ok := g.actions[action]
	if !ok {
		actionID = "a" + strconv.Itoa(len(g.order))
		g.actions[action] = actionID
		g.order = append(g.order, action)
		g.sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", actionID, escape(action)))
	}
	if g.triggers == nil {
		g.triggers = make(map[string][]string)
	}
	g.triggers[action] = append(g.triggers[action], from)
	g.sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", from, actionID))
}

// escape makes s safe inside a quoted Mermaid label.
func escape(s string) string {
	if utf8.RuneCountInString(s) > maxLabel {
		s = string([]rune(s)[:maxLabel-1]) + "…"
	}
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
