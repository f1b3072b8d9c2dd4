// Package domain contains the core entities and value objects for vpxview.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (file system, decoder bindings, graphics, logging)
// and holds only the vocabulary shared by the demuxer, the decoder session,
// the model builder, the overlay renderer and the navigation controller.
//
// # Entities
//
//   - [StreamInfo]: Parsed container header (codec, dimensions, timebase)
//   - [ContainerFrame]: Location of one encoded payload inside the container
//   - [DecodedFrame]: Picture plus flattened block internals for one frame
//   - [SuperblockRecord]: Pre-order partition codes and leaf attributes of one 64x64 superblock
//   - [LeafAttributes]: Prediction mode, motion vectors, transform size, skip and segment of a leaf block
//   - [ViewState]: Current frame index and overlay toggles
//
// # Enumerations
//
// Partition kinds, prediction modes and transform sizes are small integer
// enumerations with fixed lookup tables. Values outside the tables are
// representable so that malformed decoder output can be detected and
// reported as [ErrInternals] instead of being silently coerced.
package domain
