package ports

import "context"

// Watchable is implemented by stores that can report changes, including
// those made by other processes sharing the backend.
type Watchable interface {
	// Watch returns a channel that receives the identifier of every
	// application saved or deleted after the call. The channel is closed
	// when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
