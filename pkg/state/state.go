package state

import (
	"slices"
	"time"
)

// MaxViews bounds the number of containers remembered.
const MaxViews = 64

// View is the saved navigation position of one container.
type View struct {
	// Index is the zero-based frame shown when the view was saved.
	Index int `json:"index"`

	// Total is the frame count at save time. A container that changed
	// since is clamped on resume.
	Total int `json:"total"`

	Fills   bool `json:"fills"`
	Vectors bool `json:"vectors"`
	Labels  bool `json:"labels"`

	// SavedAt orders views for eviction.
	SavedAt time.Time `json:"saved_at"`
}

// State is the persisted set of views.
type State struct {
	Views map[string]View `json:"views"`
}

// IsEmpty returns true if no view has been saved.
func (s State) IsEmpty() bool {
	return len(s.Views) == 0
}

// Lookup returns the view saved for path.
func (s State) Lookup(path string) (View, bool) {
	v, ok := s.Views[path]
	return v, ok
}

// Put records v for path at time now and evicts the oldest views beyond
// MaxViews.
func (s *State) Put(path string, v View, now time.Time) {
	if s.Views == nil {
		s.Views = make(map[string]View)
	}
	v.SavedAt = now
	s.Views[path] = v

	if len(s.Views) <= MaxViews {
		return
	}
	paths := make([]string, 0, len(s.Views))
	for p := range s.Views {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, func(a, b string) int {
		return s.Views[a].SavedAt.Compare(s.Views[b].SavedAt)
	})
	for _, p := range paths[:len(paths)-MaxViews] {
		delete(s.Views, p)
	}
}
