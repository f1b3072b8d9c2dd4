// Package partition builds the renderable partition model of a frame from
// the decoder's flattened per-superblock records.
//
// Each 64x64 superblock becomes a tree: NONE makes a leaf, HORZ and VERT
// make two halves, SPLIT makes four quadrants in raster order. Recursion
// never goes below 4x4. Blocks on the right and bottom picture edges keep
// their nominal rectangle and get a clipped one for drawing; their coding
// attributes are unchanged.
//
// Nodes are stored in a flat arena owned by the [Builder] and referenced by
// index. The arena is reused frame after frame.
package partition
