package domain

// Kind names a component variant. It is also the value of the "type"
// discriminator in the canonical JSON form.
type Kind string

const (
	KindText       Kind = "text"
	KindButton     Kind = "button"
	KindInputField Kind = "input_field"
	KindLink       Kind = "link"
	KindContainer  Kind = "container"
)

// Kinds lists every variant in declaration order.
var Kinds = []Kind{KindText, KindButton, KindInputField, KindLink, KindContainer}

// Component is a node of the intermediate UI tree.
//
// The set of implementations is closed: the unexported marker method keeps
// other packages from adding variants, so a type switch over the five
// concrete types is exhaustive.
type Component interface {
	Kind() Kind
	// Class returns the styling token. It is opaque and forwarded verbatim.
	Class() string
	component()
}

// Text is a plain, non-interactive piece of content.
type Text struct {
	StyleClass string `json:"style_class" mapstructure:"style_class"`
	Content    string `json:"content" mapstructure:"content"`
}

// Button triggers ClickAction when activated. ClickAction is a free-text
// description of the intended effect, not executable code.
type Button struct {
	StyleClass  string `json:"style_class" mapstructure:"style_class"`
	Content     string `json:"content" mapstructure:"content"`
	ClickAction string `json:"click_action" mapstructure:"click_action"`
}

// InputField is a labeled input bundled with its own submit button.
// SubmitAction both describes the effect and names the submit event.
type InputField struct {
	StyleClass   string `json:"style_class" mapstructure:"style_class"`
	Label        string `json:"label" mapstructure:"label"`
	Placeholder  string `json:"placeholder" mapstructure:"placeholder"`
	SubmitAction string `json:"submit_action" mapstructure:"submit_action"`
	SubmitLabel  string `json:"submit_label" mapstructure:"submit_label"`
}

// Link navigates like a Button but renders as a hyperlink.
type Link struct {
	StyleClass  string `json:"style_class" mapstructure:"style_class"`
	Content     string `json:"content" mapstructure:"content"`
	ClickAction string `json:"click_action" mapstructure:"click_action"`
}

// Container groups children. Children order is rendering order.
type Container struct {
	StyleClass string      `json:"style_class" mapstructure:"style_class"`
	Children   []Component `json:"children" mapstructure:"-"`
}

func (Text) Kind() Kind       { return KindText }
func (Button) Kind() Kind     { return KindButton }
func (InputField) Kind() Kind { return KindInputField }
func (Link) Kind() Kind       { return KindLink }
func (Container) Kind() Kind  { return KindContainer }

func (c Text) Class() string       { return c.StyleClass }
func (c Button) Class() string     { return c.StyleClass }
func (c InputField) Class() string { return c.StyleClass }
func (c Link) Class() string       { return c.StyleClass }
func (c Container) Class() string  { return c.StyleClass }

func (Text) component()       {}
func (Button) component()     {}
func (InputField) component() {}
func (Link) component()       {}
func (Container) component()  {}

// Tree is an ordered list of root components.
type Tree []Component
