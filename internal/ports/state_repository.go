package ports

import (
	"context"

	"github.com/bft-labs/vpxview/internal/domain"
)

// ViewRepository persists the last view state of each container so a later
// session can resume where the previous one quit.
type ViewRepository interface {
	// Load returns the saved view of the container at path.
	// Returns false and a nil error if nothing was saved.
	// Returns an error only for actual read failures.
	Load(ctx context.Context, path string) (domain.ViewState, bool, error)

	// Save persists view for the container at path atomically.
	Save(ctx context.Context, path string, view domain.ViewState) error
}
