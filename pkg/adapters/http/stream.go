package http

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/uiengineer/internal/logging"
	json "github.com/goccy/go-json"
)

// AllApps subscribes to the changes of every app.
const AllApps = "*"

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // AppID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for appID (or AllApps). The returned
// function unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(appID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[appID]; !ok {
		sm.subscribers[appID] = make(map[chan string]struct{})
	}
	sm.subscribers[appID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[appID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, appID)
				}
			}
		})
	}
}

// Broadcast sends msg to the subscribers of appID and of AllApps.
func (sm *StreamManager) Broadcast(appID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, key := range []string{appID, AllApps} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "app_id", appID)
			}
		}
	}
}

// Count returns the number of subscribers of appID.
func (sm *StreamManager) Count(appID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[appID])
}

func changeMessage(appID string) string {
	b, _ := json.Marshal(map[string]string{"event": "changed", "app_id": appID})
	return string(b)
}

func writeEvent(w io.Writer, event, data string) {
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
