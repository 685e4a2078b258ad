package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/uiengineer/pkg/domain"
	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"github.com/ohler55/ojg/jp"
)

// DefaultMaxDepth bounds container nesting.
const DefaultMaxDepth = 64

// Option configures a parse.
type Option func(*parser)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(p *parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// ParseJSON decodes data and parses it into a tree.
func ParseJSON(data []byte, opts ...Option) (domain.Tree, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ViolationError{Issues: []*ValidationError{{
			Code:   CodeParseError,
			Reason: err.Error(),
		}}}
	}
	return Parse(raw, opts...)
}

// ParseJSONPath decodes data, selects the tree with a JSONPath expression and
// parses it. It is meant for model responses that wrap the component list in
// an envelope object, e.g. {"components": [...]} with path "$.components".
// An empty path or "$" parses the whole document.
func ParseJSONPath(data []byte, path string, opts ...Option) (domain.Tree, error) {
	if path == "" || path == "$" {
		return ParseJSON(data, opts...)
	}
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", path, err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ViolationError{Issues: []*ValidationError{{
			Code:   CodeParseError,
			Reason: err.Error(),
		}}}
	}
	results := x.Get(raw)
	if len(results) == 0 {
		// Models occasionally drop the envelope and answer with the bare list.
		if _, ok := raw.([]any); ok {
			return Parse(raw, opts...)
		}
		return nil, &ViolationError{Issues: []*ValidationError{{
			Code:   CodeRequired,
			Reason: fmt.Sprintf("jsonpath %s matched nothing", path),
		}}}
	}
	return Parse(results[0], opts...)
}

// Parse converts decoded JSON (lists, maps, strings) into a tree. raw is
// either a list of component mappings or a single mapping, which is treated
// as a one-element tree.
func Parse(raw any, opts ...Option) (domain.Tree, error) {
	p := &parser{
		maxDepth: DefaultMaxDepth,
		active:   make(map[uintptr]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	var tree domain.Tree
	switch v := raw.(type) {
	case []any:
		tree = p.parseList(v, "", 0)
	case []map[string]any:
		tree = p.parseList(toAnySlice(v), "", 0)
	case map[string]any:
		if c := p.parseNode(v, "/0", 0); c != nil {
			tree = domain.Tree{c}
		}
	default:
		p.fail("", CodeInvalidType, "expected a list of components or a component object", raw)
	}

	if len(p.issues) > 0 {
		return nil, &ViolationError{Issues: p.issues}
	}
	if tree == nil {
		tree = domain.Tree{}
	}
	return tree, nil
}

type parser struct {
	maxDepth int
	issues   []*ValidationError
	// active holds the identities of the maps and lists on the current path.
	active map[uintptr]struct{}
}

func (p *parser) fail(path, code, reason string, value any) {
	p.issues = append(p.issues, &ValidationError{Path: path, Code: code, Reason: reason, Value: value})
}

// enter marks a map or slice as being on the current path. It returns false
// when the value is already an ancestor, i.e. the structure is cyclic.
func (p *parser) enter(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	if rv.Len() == 0 {
		return 0, true
	}
	id := rv.Pointer()
	if _, seen := p.active[id]; seen {
		return 0, false
	}
	p.active[id] = struct{}{}
	return id, true
}

func (p *parser) leave(id uintptr) {
	if id != 0 {
		delete(p.active, id)
	}
}

func (p *parser) parseList(raw []any, path string, depth int) []domain.Component {
	id, ok := p.enter(raw)
	if !ok {
		p.fail(path, CodeCycle, "list contains itself", nil)
		return nil
	}
	defer p.leave(id)

	out := make([]domain.Component, 0, len(raw))
	for i, item := range raw {
		if c := p.parseNode(item, path+"/"+strconv.Itoa(i), depth); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (p *parser) parseNode(raw any, path string, depth int) domain.Component {
	if depth >= p.maxDepth {
		p.fail(path, CodeTooDeep, fmt.Sprintf("nesting exceeds %d levels", p.maxDepth), nil)
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		p.fail(path, CodeInvalidType, "expected component object", raw)
		return nil
	}
	id, ok := p.enter(m)
	if !ok {
		p.fail(path, CodeCycle, "component contains itself", nil)
		return nil
	}
	defer p.leave(id)

	fields := normalize(m)
	kind, ok := p.kind(fields, path)
	if !ok {
		return nil
	}

	if issues := Validate(variantSchemas[kind], fields, path); len(issues) > 0 {
		p.issues = append(p.issues, issues...)
		return nil
	}
	style, _ := fields["style_class"].(string)

	switch kind {
	case domain.KindContainer:
		var children []any
		switch v := fields["children"].(type) {
		case []any:
			children = v
		case []map[string]any:
			children = toAnySlice(v)
		}
		return domain.Container{
			StyleClass: style,
			Children:   p.parseList(children, path+"/children", depth+1),
		}
	case domain.KindText:
		var c domain.Text
		p.decode(fields, &c, path)
		return c
	case domain.KindButton:
		var c domain.Button
		p.decode(fields, &c, path)
		return c
	case domain.KindLink:
		var c domain.Link
		p.decode(fields, &c, path)
		return c
	case domain.KindInputField:
		var c domain.InputField
		p.decode(fields, &c, path)
		return c
	}
	p.fail(path, CodeDiscriminatorUnknown, "unsupported component type "+string(kind), nil)
	return nil
}

func (p *parser) decode(fields map[string]any, out any, path string) {
	if err := mapstructure.Decode(fields, out); err != nil {
		p.fail(path, CodeInvalidType, err.Error(), nil)
	}
}

// kind resolves the variant from the "type" discriminator, or infers it from
// the fields present. Button and Link share a shape, so a bare click_action
// resolves to Button.
func (p *parser) kind(fields map[string]any, path string) (domain.Kind, bool) {
	if tag, present := fields["type"]; present && tag != nil {
		s, ok := tag.(string)
		if !ok {
			p.fail(path+"/type", CodeInvalidType, "expected string discriminator", tag)
			return "", false
		}
		key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
		kind, ok := discriminators[key]
		if !ok {
			p.fail(path+"/type", CodeDiscriminatorUnknown, "unknown component type "+strconv.Quote(s), tag)
			return "", false
		}
		return kind, true
	}

	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				return true
			}
		}
		return false
	}
	switch {
	case has("children"):
		return domain.KindContainer, true
	case has("label", "placeholder", "submit_action", "submit_label"):
		return domain.KindInputField, true
	case has("click_action"):
		return domain.KindButton, true
	case has("content"):
		return domain.KindText, true
	}
	p.fail(path, CodeDiscriminatorMissing, "cannot infer component type from fields", nil)
	return "", false
}

// normalize rewrites aliased field names to canonical ones. Canonical names
// win over aliases, and aliases resolve in the order of the aliases table.
// A null style_class is treated as absent.
func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if !isAlias(k) {
			out[k] = v
		}
	}
	for _, a := range aliases {
		v, ok := m[a.alias]
		if !ok || (v == nil && a.canonical == "style_class") {
			continue
		}
		if _, taken := out[a.canonical]; taken {
			continue
		}
		out[a.canonical] = v
	}
	if v, ok := out["style_class"]; ok && v == nil {
		delete(out, "style_class")
	}
	return out
}

func toAnySlice(in []map[string]any) []any {
	out := make([]any, len(in))
	for i, m := range in {
		out[i] = m
	}
	return out
}
