package runtime

import (
	"fmt"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/fastui"
)

const (
	// InstructionField is the hidden form field carrying the submit action.
	InstructionField = "update_instructions"

	hiddenClass = "d-none"
)

// Lower converts tree into FastUI components bound to appID.
// Output order matches input order. Any component that is not one of the
// known variants aborts lowering with domain.ErrUnknownVariant.
func Lower(tree domain.Tree, appID string) ([]fastui.Component, error) {
	return lowerList(tree, appID)
}

func lowerList(components []domain.Component, appID string) ([]fastui.Component, error) {
	out := make([]fastui.Component, 0, len(components))
	for i, c := range components {
		lowered, err := lowerComponent(c, appID)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out = append(out, lowered)
	}
	return out, nil
}

func lowerComponent(c domain.Component, appID string) (fastui.Component, error) {
	switch v := c.(type) {
	case domain.Text:
		return fastui.Paragraph{Text: v.Content, ClassName: v.StyleClass}, nil

	case domain.Button:
		return fastui.Button{
			Text:      v.Content,
			ClassName: v.StyleClass,
			OnClick:   fastui.GoToEvent{URL: ActionURL(appID, v.ClickAction)},
		}, nil

	case domain.Link:
		return fastui.Link{
			Components: []fastui.Component{fastui.Text{Text: v.Content}},
			ClassName:  v.StyleClass,
			OnClick:    fastui.GoToEvent{URL: ActionURL(appID, v.ClickAction)},
		}, nil

	case domain.InputField:
		return lowerInputField(v, appID), nil

	case domain.Container:
		children, err := lowerList(v.Children, appID)
		if err != nil {
			return nil, err
		}
		return fastui.Div{Components: children, ClassName: v.StyleClass}, nil

	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownVariant, c)
	}
}

// lowerInputField turns an input into a one-field form. The submit action
// travels twice: in a hidden field, so the POST body carries it, and in the
// submit trigger, so the client navigates once the POST completes.
func lowerInputField(v domain.InputField, appID string) fastui.Form {
	return fastui.Form{
		SubmitURL: SubmitURL(appID),
		Method:    "POST",
		Loading:   []fastui.Component{fastui.Spinner{}},
		SubmitTrigger: fastui.PageEvent{
			Name:      v.SubmitAction,
			NextEvent: fastui.GoToEvent{URL: ActionURL(appID, v.SubmitAction)},
		},
		FormFields: []fastui.FormFieldInput{
			{
				Name:      InstructionField,
				Title:     "Update instructions",
				Initial:   v.SubmitAction,
				HTMLType:  "text",
				ClassName: hiddenClass,
			},
			{
				Name:        v.Label,
				Title:       v.Label,
				Placeholder: v.Placeholder,
				HTMLType:    "text",
				ClassName:   v.StyleClass,
			},
		},
		Footer: []fastui.Component{
			fastui.Button{Text: v.SubmitLabel, HTMLType: "submit"},
		},
	}
}
