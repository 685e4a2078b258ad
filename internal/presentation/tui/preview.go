package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/uiengineer/internal/runtime"
	"github.com/aretw0/uiengineer/pkg/domain"
)

// Markdown renders tree as a nested bullet list for terminal preview.
// Actions appear as the URL a browser would follow.
func Markdown(tree domain.Tree, appID string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", appID)
	if len(tree) == 0 {
		sb.WriteString("_empty_\n")
		return sb.String()
	}
	for _, c := range tree {
		writeItem(&sb, c, appID, 0)
	}
	return sb.String()
}

func writeItem(sb *strings.Builder, c domain.Component, appID string, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := c.(type) {
	case domain.Text:
		fmt.Fprintf(sb, "%s- %s%s\n", indent, inline(v.Content), class(v.StyleClass))
	case domain.Button:
		fmt.Fprintf(sb, "%s- **[%s]** → `%s`%s\n", indent, inline(v.Content), runtime.ActionURL(appID, v.ClickAction), class(v.StyleClass))
	case domain.Link:
		fmt.Fprintf(sb, "%s- [%s](%s)%s\n", indent, inline(v.Content), runtime.ActionURL(appID, v.ClickAction), class(v.StyleClass))
	case domain.InputField:
		label := inline(v.Label)
		if v.Placeholder != "" {
			label += " _(" + inline(v.Placeholder) + ")_"
		}
		fmt.Fprintf(sb, "%s- %s: `____` **[%s]** → `%s`%s\n", indent, label, inline(v.SubmitLabel), runtime.ActionURL(appID, v.SubmitAction), class(v.StyleClass))
	case domain.Container:
		fmt.Fprintf(sb, "%s- _container_%s\n", indent, class(v.StyleClass))
		for _, child := range v.Children {
			writeItem(sb, child, appID, depth+1)
		}
	default:
		fmt.Fprintf(sb, "%s- _unknown %T_\n", indent, c)
	}
}

func class(s string) string {
	if s == "" {
		return ""
	}
	return " `." + s + "`"
}

// inline keeps multi-line content on its bullet.
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
