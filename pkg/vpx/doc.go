// Package vpx wraps a VP8/VP9 decoder behind a session that hands out
// pointerless per-frame results.
//
// The entropy decoding and reconstruction live in an external [Codec]. After
// each successful Decode the codec exposes the reconstructed picture and a
// nested per-superblock description of its coding decisions. [Session]
// copies both into memory it owns and flattens the nesting into
// [domain.SuperblockRecord]s, so nothing downstream keeps references into
// decoder memory.
//
// # Single active frame
//
// A session keeps exactly one decoded frame. Decode invalidates the result
// of the previous successful Decode; a failed Decode leaves it intact.
//
// # Codecs
//
// [DumpCodec] reads block internals from a JSON-lines dump produced by an
// instrumented decoder build, keyed by the CRC-32 of each frame payload.
// It probes every payload header ([Probe]) and rejects payloads whose frame
// marker, sync code or start code is wrong. The picture comes from the
// reconstruction the decoder recorded next to the dump when the line names
// one. Otherwise VP8 key frames are reconstructed with golang.org/x/image/vp8
// and other frames get a neutral picture.
//
// Each dump line carries a format version; lines newer than
// [DumpFormatVersion] are rejected when the dump is loaded.
package vpx
