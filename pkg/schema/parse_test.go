package schema_test

import (
	"testing"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func todoTree() domain.Tree {
	return domain.Tree{
		domain.Container{
			StyleClass: "flex flex-col",
			Children: []domain.Component{
				domain.Text{Content: "My Todos"},
				domain.InputField{Label: "New item", Placeholder: "", SubmitAction: "add_item", SubmitLabel: "Add"},
			},
		},
	}
}

func TestParseJSON_InferredVariants(t *testing.T) {
	data := []byte(`[
		{"style_class": "flex flex-col", "children": [
			{"content": "My Todos"},
			{"label": "New item", "placeholder": "", "submit_action": "add_item", "submit_label": "Add"}
		]}
	]`)

	tree, err := schema.ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, todoTree(), tree)
}

func TestParseJSON_Discriminator(t *testing.T) {
	data := []byte(`[
		{"type": "link", "content": "Home", "click_action": "go home"},
		{"type": "Button", "content": "Add", "click_action": "add item", "style_class": "btn"},
		{"type": "InputField", "label": "Name", "placeholder": "you", "submit_action": "greet", "submit_label": "Go"},
		{"type": "div", "children": []},
		{"type": "text", "content": "hi", "style_class": null}
	]`)

	tree, err := schema.ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, tree, 5)

	assert.Equal(t, domain.Link{Content: "Home", ClickAction: "go home"}, tree[0])
	assert.Equal(t, domain.Button{StyleClass: "btn", Content: "Add", ClickAction: "add item"}, tree[1])
	assert.Equal(t, domain.KindInputField, tree[2].Kind())
	assert.Equal(t, domain.Container{Children: []domain.Component{}}, tree[3])
	assert.Equal(t, domain.Text{Content: "hi"}, tree[4])
}

func TestParseJSON_Aliases(t *testing.T) {
	legacy := []byte(`[
		{"class_name": "flex flex-col", "components": [
			{"class_name": "", "text_content": "My Todos"},
			{"class_name": "", "label": "New item", "placeholder": "", "on_submit_action": "add_item", "submit_button_label": "Add"}
		]}
	]`)

	tree, err := schema.ParseJSON(legacy)
	require.NoError(t, err)
	assert.Equal(t, todoTree(), tree)
}

func TestParseJSON_AliasPrecedence(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Component
	}{
		{in: `{"text": "short", "text_content": "long"}`, want: domain.Text{Content: "long"}},
		{in: `{"content": "canonical", "text": "short", "text_content": "long"}`, want: domain.Text{Content: "canonical"}},
		{in: `{"className": "b", "class_name": "a", "content": "x"}`, want: domain.Text{StyleClass: "a", Content: "x"}},
		{in: `{"class_name": null, "className": "b", "content": "x"}`, want: domain.Text{StyleClass: "b", Content: "x"}},
	}
	for _, tt := range cases {
		// Map iteration order varies between runs; the result must not.
		for i := 0; i < 20; i++ {
			tree, err := schema.ParseJSON([]byte(tt.in))
			require.NoError(t, err, tt.in)
			require.Equal(t, domain.Tree{tt.want}, tree, tt.in)
		}
	}
}

func TestParse_SingleObject(t *testing.T) {
	tree, err := schema.Parse(map[string]any{"content": "alone"})
	require.NoError(t, err)
	assert.Equal(t, domain.Tree{domain.Text{Content: "alone"}}, tree)
}

func TestParse_EmptyList(t *testing.T) {
	tree, err := schema.Parse([]any{})
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestParseJSON_MissingLabel(t *testing.T) {
	data := []byte(`[{"placeholder": "", "submit_action": "add_item", "submit_label": "Add"}]`)

	tree, err := schema.ParseJSON(data)
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)

	issues := schema.Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, "/0/label", issues[0].Path)
	assert.Equal(t, schema.CodeRequired, issues[0].Code)
}

func TestParse_Violations(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		wantPath string
		wantCode string
	}{
		{
			name:     "Wrong primitive type",
			raw:      []any{map[string]any{"content": 42.0}},
			wantPath: "/0/content",
			wantCode: schema.CodeInvalidType,
		},
		{
			name:     "Unknown discriminator",
			raw:      []any{map[string]any{"type": "carousel", "content": "x"}},
			wantPath: "/0/type",
			wantCode: schema.CodeDiscriminatorUnknown,
		},
		{
			name:     "Nothing to infer from",
			raw:      []any{map[string]any{"style_class": "x"}},
			wantPath: "/0",
			wantCode: schema.CodeDiscriminatorMissing,
		},
		{
			name:     "Children not a list",
			raw:      []any{map[string]any{"children": "nope"}},
			wantPath: "/0/children",
			wantCode: schema.CodeInvalidType,
		},
		{
			name: "Bad grandchild fails the whole tree",
			raw: []any{map[string]any{"children": []any{
				map[string]any{"content": "ok"},
				map[string]any{"children": []any{map[string]any{"content": "ok", "click_action": 1.0}}},
			}}},
			wantPath: "/0/children/1/children/0/click_action",
			wantCode: schema.CodeInvalidType,
		},
		{
			name:     "Scalar root",
			raw:      "hello",
			wantPath: "",
			wantCode: schema.CodeInvalidType,
		},
		{
			name:     "Non-object element",
			raw:      []any{"hello"},
			wantPath: "/0",
			wantCode: schema.CodeInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := schema.Parse(tt.raw)
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.ErrorIs(t, err, domain.ErrSchemaViolation)

			issues := schema.Issues(err)
			require.NotEmpty(t, issues)
			assert.Equal(t, tt.wantPath, issues[0].Path)
			assert.Equal(t, tt.wantCode, issues[0].Code)
		})
	}
}

func TestParse_RejectsCycles(t *testing.T) {
	box := map[string]any{"style_class": "loop"}
	children := []any{map[string]any{"content": "first"}, box}
	box["children"] = children

	tree, err := schema.Parse([]any{box})
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)

	issues := schema.Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.CodeCycle, issues[0].Code)
	assert.Equal(t, "/0/children/1", issues[0].Path)
}

func TestParse_SharedSubtreeIsNotACycle(t *testing.T) {
	shared := map[string]any{"content": "same"}
	raw := []any{
		map[string]any{"children": []any{shared}},
		map[string]any{"children": []any{shared}},
	}

	tree, err := schema.Parse(raw)
	require.NoError(t, err)
	assert.Len(t, tree, 2)
}

func TestParse_MaxDepth(t *testing.T) {
	var node any = map[string]any{"content": "leaf"}
	for i := 0; i < 5; i++ {
		node = map[string]any{"children": []any{node}}
	}

	_, err := schema.Parse([]any{node}, schema.WithMaxDepth(3))
	require.Error(t, err)
	assert.Equal(t, schema.CodeTooDeep, schema.Issues(err)[0].Code)

	_, err = schema.Parse([]any{node}, schema.WithMaxDepth(10))
	assert.NoError(t, err)
}

func TestParseJSON_Malformed(t *testing.T) {
	_, err := schema.ParseJSON([]byte(`[{"content": "unterminated`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	assert.Equal(t, schema.CodeParseError, schema.Issues(err)[0].Code)
}

func TestParseJSONPath(t *testing.T) {
	t.Run("Envelope", func(t *testing.T) {
		tree, err := schema.ParseJSONPath([]byte(`{"components": [{"content": "hi"}]}`), "$.components")
		require.NoError(t, err)
		assert.Equal(t, domain.Tree{domain.Text{Content: "hi"}}, tree)
	})

	t.Run("Bare list fallback", func(t *testing.T) {
		tree, err := schema.ParseJSONPath([]byte(`[{"content": "hi"}]`), "$.components")
		require.NoError(t, err)
		assert.Equal(t, domain.Tree{domain.Text{Content: "hi"}}, tree)
	})

	t.Run("No match", func(t *testing.T) {
		_, err := schema.ParseJSONPath([]byte(`{"other": []}`), "$.components")
		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})

	t.Run("Invalid path", func(t *testing.T) {
		_, err := schema.ParseJSONPath([]byte(`{}`), "$[")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSchemaViolation)
	})
}

func TestMarshalTree_RoundTrip(t *testing.T) {
	original := domain.Tree{
		domain.Link{StyleClass: "nav", Content: "Home", ClickAction: "go home"},
		todoTree()[0],
		domain.Button{Content: "Add", ClickAction: "add item"},
	}

	data, err := domain.MarshalTree(original)
	require.NoError(t, err)

	decoded, err := schema.ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
