package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/state"
)

// ViewFileRepository implements ports.ViewRepository on top of a
// state.Repository, keying views by absolute container path.
type ViewFileRepository struct {
	mu   sync.Mutex
	repo state.Repository
	now  func() time.Time
}

// NewViewFileRepository creates a repository storing views under dir.
func NewViewFileRepository(dir string) *ViewFileRepository {
	return NewViewRepository(state.NewFileRepository(dir))
}

// NewViewRepository wraps an existing state repository.
func NewViewRepository(repo state.Repository) *ViewFileRepository {
	return &ViewFileRepository{repo: repo, now: time.Now}
}

// Load returns the saved view of the container at path.
func (r *ViewFileRepository) Load(ctx context.Context, path string) (domain.ViewState, bool, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return domain.ViewState{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.repo.Load(ctx)
	if err != nil {
		return domain.ViewState{}, false, err
	}
	v, ok := s.Lookup(key)
	if !ok {
		return domain.ViewState{}, false, nil
	}
	return domain.ViewState{
		Index: v.Index,
		Total: v.Total,
		Overlay: domain.OverlayFlags{
			Fills:   v.Fills,
			Vectors: v.Vectors,
			Labels:  v.Labels,
		},
	}, true, nil
}

// Save persists view for the container at path. Views of other containers
// are preserved.
func (r *ViewFileRepository) Save(ctx context.Context, path string, view domain.ViewState) error {
	key, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.repo.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, state.ErrCorrupt), errors.Is(err, iofs.ErrNotExist):
		// A corrupt file is replaced rather than blocking every save.
		s = state.State{}
	default:
		return err
	}
	s.Put(key, state.View{
		Index:   view.Index,
		Total:   view.Total,
		Fills:   view.Overlay.Fills,
		Vectors: view.Overlay.Vectors,
		Labels:  view.Overlay.Labels,
	}, r.now())
	return r.repo.Save(ctx, s)
}
