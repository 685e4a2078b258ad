// Package schema validates raw language-model output and turns it into a
// typed component tree.
//
// Model output arrives as loosely typed JSON. Each mapping is matched to one of
// the five component variants, either through an explicit "type"
// discriminator or by inferring the variant from the fields present, and its
// fields are checked against a small field schema:
//
//	tree, err := schema.ParseJSON([]byte(`[
//	    {"type": "container", "style_class": "flex flex-col", "children": [
//	        {"content": "My Todos"},
//	        {"label": "New item", "placeholder": "", "submit_action": "add_item", "submit_label": "Add"}
//	    ]}
//	]`))
//	if errors.Is(err, domain.ErrSchemaViolation) {
//	    // report every issue in schema.Issues(err)
//	}
//
// Validation is all-or-nothing: a single bad field anywhere rejects the whole
// tree. Field names used by older prompts (text_content, on_click_action,
// class_name, components, ...) are accepted as aliases.
//
// CheckTree performs the structural checks (nil components, cycles, depth) on
// trees built in Go rather than decoded from JSON.
package schema
