package ports

import (
	"context"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/overlay"
)

// Surface presents composed scenes.
type Surface interface {
	// Present shows scene under title, replacing what was shown before.
	// It is called from the navigation loop only.
	Present(scene overlay.Scene, title string) error
}

// Display is a surface with its own input pump.
type Display interface {
	Surface

	// Serve runs the display until ctx is done, forwarding user keys to
	// sink. It returns nil on cancellation.
	Serve(ctx context.Context, sink KeySink) error
}

// KeySource delivers keys to the navigation loop.
type KeySource interface {
	// NextKey blocks until a key is available or ctx is done.
	NextKey(ctx context.Context) (domain.Key, error)
}

// KeySink accepts keys from displays and watchers. Send never blocks.
type KeySink interface {
	Send(key domain.Key) bool
}
