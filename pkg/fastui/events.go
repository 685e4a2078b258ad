package fastui

import (
	json "github.com/goccy/go-json"
)

// Event is a client-side action attached to a component.
type Event interface {
	EventType() string
}

// GoToEvent navigates the frontend to URL.
type GoToEvent struct {
	Type   string            `json:"type"`
	URL    string            `json:"url"`
	Query  map[string]string `json:"query,omitempty"`
	Target string            `json:"target,omitempty"`
}

// PageEvent raises a named in-page event and optionally chains NextEvent.
type PageEvent struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	NextEvent Event  `json:"nextEvent,omitempty"`
}

func (GoToEvent) EventType() string { return "go-to" }
func (PageEvent) EventType() string { return "page" }

func (e GoToEvent) MarshalJSON() ([]byte, error) {
	type plain GoToEvent
	e.Type = e.EventType()
	return json.Marshal(plain(e))
}

func (e PageEvent) MarshalJSON() ([]byte, error) {
	type plain PageEvent
	e.Type = e.EventType()
	return json.Marshal(plain(e))
}
