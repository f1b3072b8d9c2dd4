// Package overlay turns a decoded picture and its partition model into an
// ordered list of draw primitives.
//
// A [Scene] is painted back to front: the picture, one outline per leaf
// block, then the optional layers (prediction-mode fills, motion-vector
// arrows, text labels) selected by [domain.OverlayFlags]. Rendering is pure:
// the picture is referenced, never modified, and compositing is left to the
// display backend.
//
// Mode colors and labels come from fixed tables indexed by
// [domain.PredictionMode].
package overlay
