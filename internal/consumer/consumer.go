package consumer

import (
	"context"
)

// MessageConsumer delivers original events to the thumbnails service
// until stopped.
type MessageConsumer interface {

	// Start connects and begins consuming in the background. It returns
	// once consumption is running.
	Start(ctx context.Context) error

	Stop()
}
