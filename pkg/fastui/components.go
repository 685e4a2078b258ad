package fastui

import (
	json "github.com/goccy/go-json"
)

// Component is any node of the target schema.
type Component interface {
	ComponentType() string
}

// Text is an inline run of text.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Paragraph is a block of text.
type Paragraph struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	ClassName string `json:"className,omitempty"`
}

// PageTitle sets the browser title.
type PageTitle struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Heading renders an h1-h6.
type Heading struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Level     int    `json:"level,omitempty"`
	ClassName string `json:"className,omitempty"`
}

// Div groups components.
type Div struct {
	Type       string      `json:"type"`
	Components []Component `json:"components"`
	ClassName  string      `json:"className,omitempty"`
}

// Page is the top-level layout wrapper.
type Page struct {
	Type       string      `json:"type"`
	Components []Component `json:"components"`
	ClassName  string      `json:"className,omitempty"`
}

// Button fires OnClick when pressed.
type Button struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	OnClick   Event  `json:"onClick,omitempty"`
	HTMLType  string `json:"htmlType,omitempty"`
	ClassName string `json:"className,omitempty"`
}

// Link renders its components inside an anchor that fires OnClick.
type Link struct {
	Type       string      `json:"type"`
	Components []Component `json:"components"`
	OnClick    Event       `json:"onClick,omitempty"`
	ClassName  string      `json:"className,omitempty"`
}

// Spinner is shown while a form submission is in flight.
type Spinner struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// FormFieldInput is a single <input> inside a Form.
type FormFieldInput struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Initial     string `json:"initial,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required,omitempty"`
	HTMLType    string `json:"htmlType"`
	ClassName   string `json:"className,omitempty"`
}

// Form posts its fields to SubmitURL and, when SubmitTrigger is set, fires
// it once the submission completes.
type Form struct {
	Type          string           `json:"type"`
	SubmitURL     string           `json:"submitUrl"`
	Method        string           `json:"method,omitempty"`
	FormFields    []FormFieldInput `json:"formFields"`
	Loading       []Component      `json:"loading,omitempty"`
	Footer        []Component      `json:"footer,omitempty"`
	SubmitTrigger Event            `json:"submitTrigger,omitempty"`
	ClassName     string           `json:"className,omitempty"`
}

// FireEvent fires Event as soon as it is rendered. It is how a POST answers
// with a client-side redirect.
type FireEvent struct {
	Type    string `json:"type"`
	Event   Event  `json:"event"`
	Message string `json:"message,omitempty"`
}

func (Text) ComponentType() string           { return "Text" }
func (Paragraph) ComponentType() string      { return "Paragraph" }
func (PageTitle) ComponentType() string      { return "PageTitle" }
func (Heading) ComponentType() string        { return "Heading" }
func (Div) ComponentType() string            { return "Div" }
func (Page) ComponentType() string           { return "Page" }
func (Button) ComponentType() string         { return "Button" }
func (Link) ComponentType() string           { return "Link" }
func (Spinner) ComponentType() string        { return "Spinner" }
func (FormFieldInput) ComponentType() string { return "FormFieldInput" }
func (Form) ComponentType() string           { return "Form" }
func (FireEvent) ComponentType() string      { return "FireEvent" }

func (c Text) MarshalJSON() ([]byte, error) {
	type plain Text
	c.Type = c.ComponentType()
	return json.Marshal(plain(c))
}

func (c Paragraph) MarshalJSON() ([]byte, error) {
	type plain Paragraph
	c.Type = c.ComponentType()
	return json.Marshal(plain(c))
}

func (c PageTitle) MarshalJSON() ([]byte, error) {
	type plain PageTitle
	c.Type = c.ComponentType()
	return json.Marshal(plain(c))
}

func (c Heading) MarshalJSON() ([]byte, error) {
	type plain Heading
	c.Type = c.ComponentType()
	return json.Marshal(plain(c))
}

func (c Div) MarshalJSON() ([]byte, error) {
	type plain Div
	c.Type = c.ComponentType()
	if c.Components == nil {
		c.Components = []Component{}
	}
	return json.Marshal(plain(c))
}

func (c Page) MarshalJSON() ([]byte, error) {
	type plain Page
	c.Type = c.ComponentType()
	if c.Components == nil {
		c.Components = []Component{}
	}
	return json.Marshal(plain(c))
}

func (c Button) MarshalJSON() ([]byte, error) {
	type plain Button
	c.Type = c.ComponentType()
	return json.Marshal(plain(c))
}

func (c Link) MarshalJSON() ([]byte, error) {
	type plain Link
	c.Type = c.ComponentType()
	if c.Components == nil {
		c.Components = []Component{}
	}
	return json.Marshal(plain(c))
}

func (c Spinner) MarshalJSON() ([]byte, error) {
	type plain Spinner
	c.Type = c.ComponentType()
	return json.Marshal(plain(c))
}

func (c FormFieldInput) MarshalJSON() ([]byte, error) {
	type plain FormFieldInput
	c.Type = c.ComponentType()
	if c.HTMLType == "" {
		c.HTMLType = "text"
	}
	return json.Marshal(plain(c))
}

func (c Form) MarshalJSON() ([]byte, error) {
	type plain Form
	c.Type = c.ComponentType()
	if c.FormFields == nil {
		c.FormFields = []FormFieldInput{}
	}
	return json.Marshal(plain(c))
}

func (c FireEvent) MarshalJSON() ([]byte, error) {
	type plain FireEvent
	c.Type = c.ComponentType()
	return json.Marshal(plain(c))
}

// Encode serializes a component list as the FastUI response body.
func Encode(components []Component) ([]byte, error) {
	if components == nil {
		components = []Component{}
	}
	return json.Marshal(components)
}
