package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGenerate EventType = "generate"
	EventUpdate   EventType = "update"
	EventStore    EventType = "store"
	EventLower    EventType = "lower"
	EventDelete   EventType = "delete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	AppID     string    `json:"app_id"`
}

// TreeEvent reports the outcome of an operation that produced or consumed a tree.
type TreeEvent struct {
	EventBase
	Instruction string        `json:"instruction,omitempty"`
	Nodes       int           `json:"nodes"`
	Duration    time.Duration `json:"duration"`
	Err         error         `json:"-"`
}

// LifecycleHooks defines callbacks for app service observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnGenerate func(context.Context, *TreeEvent)
	OnUpdate   func(context.Context, *TreeEvent)
	OnStore    func(context.Context, *TreeEvent)
	OnLower    func(context.Context, *TreeEvent)
	OnDelete   func(context.Context, *TreeEvent)
}

// NewTreeEvent stamps a TreeEvent with the current time.
func NewTreeEvent(typ EventType, appID string) *TreeEvent {
	return &TreeEvent{EventBase: EventBase{Timestamp: time.Now(), Type: typ, AppID: appID}}
}
