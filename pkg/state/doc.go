// Package state persists the last view of each inspected container so a
// later session can resume where the previous one quit.
//
// Views are keyed by the absolute container path and kept in a single JSON
// file. Only the most recently saved MaxViews entries are retained.
//
// # Usage
//
// Create a file-based repository:
//
//	repo := state.NewFileRepository("/path/to/state/dir")
//
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	if v, ok := s.Lookup("/clips/a.ivf"); ok {
//	    // resume at v.Index
//	}
//
//	s.Put("/clips/a.ivf", state.View{Index: 12, Total: 300}, time.Now())
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
package state
