package schema

import (
	"sort"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Fields returns the field names in sorted order, so issues are reported deterministically.
func (s Schema) Fields() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks if data conforms to the schema. path is the JSON Pointer of
// data and prefixes every reported issue.
func Validate(schema Schema, data map[string]any, path string) []*ValidationError {
	var issues []*ValidationError
	for _, field := range schema.Fields() {
		typ := schema[field]
		value, exists := data[field]
		if !exists {
			if typ.Required() {
				issues = append(issues, &ValidationError{
					Path:   path + "/" + field,
					Code:   CodeRequired,
					Reason: "required " + typ.Name() + " field is missing",
				})
			}
			continue
		}
		if err := typ.Validate(value); err != nil {
			issues = append(issues, &ValidationError{
				Path:   path + "/" + field,
				Code:   CodeInvalidType,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}
	return issues
}

var styled = Optional(String())

// variantSchemas holds the field schema of each component variant.
var variantSchemas = map[domain.Kind]Schema{
	domain.KindText: {
		"style_class": styled,
		"content":     String(),
	},
	domain.KindButton: {
		"style_class":  styled,
		"content":      String(),
		"click_action": String(),
	},
	domain.KindLink: {
		"style_class":  styled,
		"content":      String(),
		"click_action": String(),
	},
	domain.KindInputField: {
		"style_class":   styled,
		"label":         String(),
		"placeholder":   String(),
		"submit_action": String(),
		"submit_label":  String(),
	},
	domain.KindContainer: {
		"style_class": styled,
		"children":    List(),
	},
}

// VariantSchema returns the field schema of a component variant.
func VariantSchema(kind domain.Kind) (Schema, bool) {
	s, ok := variantSchemas[kind]
	return s, ok
}

// aliases maps field names used by earlier prompt generations to canonical
// names. When several aliases of one field appear, the earliest entry wins.
var aliases = []struct{ alias, canonical string }{
	{"text_content", "content"},
	{"text", "content"},
	{"on_click_action", "click_action"},
	{"on_submit_action", "submit_action"},
	{"submit_button_label", "submit_label"},
	{"components", "children"},
	{"class_name", "style_class"},
	{"className", "style_class"},
}

// isAlias reports whether k is one of the alias names.
func isAlias(k string) bool {
	for _, a := range aliases {
		if a.alias == k {
			return true
		}
	}
	return false
}

// discriminators maps normalized "type" values to variants.
var discriminators = map[string]domain.Kind{
	"text":       domain.KindText,
	"paragraph":  domain.KindText,
	"button":     domain.KindButton,
	"inputfield": domain.KindInputField,
	"input":      domain.KindInputField,
	"form":       domain.KindInputField,
	"link":       domain.KindLink,
	"container":  domain.KindContainer,
	"div":        domain.KindContainer,
}
