package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/state"
)

func TestViewFileRepository_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := NewViewFileRepository(dir)
	ctx := context.Background()

	if _, ok, err := repo.Load(ctx, "a.ivf"); err != nil || ok {
		t.Fatalf("Load() on empty repo = %v, %v", ok, err)
	}

	a := domain.ViewState{Index: 4, Total: 10, Overlay: domain.OverlayFlags{Fills: true, Vectors: true}}
	b := domain.ViewState{Index: 1, Total: 2, Overlay: domain.OverlayFlags{Labels: true}}
	if err := repo.Save(ctx, "a.ivf", a); err != nil {
		t.Fatalf("Save(a) error = %v", err)
	}
	if err := repo.Save(ctx, "b.ivf", b); err != nil {
		t.Fatalf("Save(b) error = %v", err)
	}

	// A fresh repository sees both views.
	repo = NewViewFileRepository(dir)
	for path, want := range map[string]domain.ViewState{"a.ivf": a, "b.ivf": b} {
		got, ok, err := repo.Load(ctx, path)
		if err != nil || !ok {
			t.Fatalf("Load(%s) = %v, %v", path, ok, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Load(%s) mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestViewFileRepository_KeysByAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	repo := NewViewFileRepository(filepath.Join(dir, "state"))
	ctx := context.Background()

	abs, err := filepath.Abs("clip.ivf")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, "clip.ivf", domain.ViewState{Index: 3, Total: 5}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, ok, err := repo.Load(ctx, abs)
	if err != nil || !ok || got.Index != 3 {
		t.Errorf("Load(abs) = %+v, %v, %v", got, ok, err)
	}
}

func TestViewFileRepository_CorruptFileIsReplaced(t *testing.T) {
	dir := t.TempDir()
	files := state.NewFileRepository(dir)
	if err := os.WriteFile(files.Path(), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := NewViewRepository(files)
	ctx := context.Background()

	if _, _, err := repo.Load(ctx, "a.ivf"); !errors.Is(err, state.ErrCorrupt) {
		t.Errorf("Load() error = %v, want ErrCorrupt", err)
	}
	if err := repo.Save(ctx, "a.ivf", domain.ViewState{Index: 1, Total: 2}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok, err := repo.Load(ctx, "a.ivf"); err != nil || !ok {
		t.Errorf("Load() after save = %v, %v", ok, err)
	}
}

// unreadableRepo fails every Load the way an unreadable state file does.
type unreadableRepo struct {
	err   error
	saved int
}

func (r *unreadableRepo) Load(context.Context) (state.State, error) { return state.State{}, r.err }

func (r *unreadableRepo) Save(context.Context, state.State) error {
	r.saved++
	return nil
}

func TestViewFileRepository_SaveKeepsUnreadableFile(t *testing.T) {
	tests := []struct {
		name      string
		loadErr   error
		wantErr   bool
		wantSaved int
	}{
		{name: "permission denied", loadErr: iofs.ErrPermission, wantErr: true, wantSaved: 0},
		{name: "missing", loadErr: iofs.ErrNotExist, wantErr: false, wantSaved: 1},
		{name: "corrupt", loadErr: state.ErrCorrupt, wantErr: false, wantSaved: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := &unreadableRepo{err: tt.loadErr}
			repo := NewViewRepository(files)

			err := repo.Save(context.Background(), "a.ivf", domain.ViewState{Index: 1, Total: 2})
			if (err != nil) != tt.wantErr {
				t.Errorf("Save() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.loadErr) {
				t.Errorf("Save() error = %v, want %v", err, tt.loadErr)
			}
			if files.saved != tt.wantSaved {
				t.Errorf("saves = %d, want %d", files.saved, tt.wantSaved)
			}
		})
	}
}
