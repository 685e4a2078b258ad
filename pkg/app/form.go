package app

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/uiengineer/internal/runtime"
	"github.com/aretw0/uiengineer/internal/sanitize"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/fastui"
)

// CreateField is the landing form field holding the app description.
const CreateField = "app_name"

// Submit turns a posted form into a client-side redirect whose action is
// the encoded form. The redirect then drives the update through Show, so the
// encoded form must itself fit the input limit that Show's callers enforce.
func (s *Service) Submit(ctx context.Context, appID string, form url.Values) (fastui.Component, error) {
	if err := domain.ValidateAppID(appID); err != nil {
		return nil, err
	}
	if _, err := s.store.Load(ctx, appID); err != nil {
		return nil, err
	}

	instruction, err := sanitize.Input(EncodeForm(form))
	if err != nil {
		return nil, fmt.Errorf("encoded form: %w", err)
	}
	return fastui.FireEvent{
		Event: fastui.GoToEvent{URL: runtime.ActionURL(appID, instruction)},
	}, nil
}

// EncodeForm flattens form values into one instruction: one "key: value"
// line per value, the submit action first and the other keys sorted.
func EncodeForm(form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		if k != runtime.InstructionField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := form[runtime.InstructionField]; ok {
		keys = append([]string{runtime.InstructionField}, keys...)
	}

	var lines []string
	for _, k := range keys {
		for _, v := range form[k] {
			lines = append(lines, k+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

// Create derives an identifier from a free-text app description. Nothing is
// generated until the identifier is first shown.
func (s *Service) Create(ctx context.Context, description string) (string, error) {
	appID := Slugify(description)
	if err := domain.ValidateAppID(appID); err != nil {
		return "", fmt.Errorf("cannot derive an app from %q: %w", description, err)
	}
	s.logger.Debug("app created", "app_id", appID, "description", description)
	return appID, nil
}

// Slugify lower-cases s and joins its words with '-'. Path separators and
// control characters count as word breaks.
func Slugify(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == '-' || r == '/' || r == '\\'
	})
	slug := strings.Join(words, "-")
	if len(slug) > domain.MaxAppIDLength {
		slug = strings.TrimRight(truncate(slug, domain.MaxAppIDLength), "-")
	}
	return slug
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// CreateRedirect answers the landing form.
func CreateRedirect(appID string) fastui.Component {
	return fastui.FireEvent{Event: fastui.GoToEvent{URL: "/" + url.PathEscape(appID)}}
}

// Landing is the start page: a short blurb and the create form.
func Landing(title string) []fastui.Component {
	return []fastui.Component{
		fastui.Page{
			ClassName: "container",
			Components: []fastui.Component{
				fastui.PageTitle{Text: title},
				fastui.Heading{Text: title, Level: 2},
				fastui.Paragraph{Text: "This is a playground for AI rendered user interfaces. Describe an app to create it."},
				fastui.Form{
					SubmitURL: runtime.APIPrefix + "/",
					Method:    "POST",
					FormFields: []fastui.FormFieldInput{
						{Name: CreateField, Title: "App Description", Required: true, HTMLType: "text"},
					},
				},
			},
		},
	}
}
