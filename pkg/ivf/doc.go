// Package ivf reads and writes IVF frame containers.
//
// An IVF file is a 32-byte header (signature "DKIF", codec FourCC, picture
// size, timebase, frame count) followed by records of a 12-byte header
// (payload length, timestamp) and the encoded payload. Container order is
// decode order.
//
// The package is independent of any decoder: it only locates payloads.
//
// # Usage
//
// Open a container and walk its frame directory:
//
//	d, err := ivf.Open("clip.ivf", logger)
//	if err != nil {
//	    return err // errors.Is(err, domain.ErrFormat) for malformed input
//	}
//	defer d.Close()
//
//	for i, f := range d.Frames() {
//	    payload, err := d.Payload(f)
//	    // decode payload...
//	}
//
// Random access uses FrameAt and ReadFrame. Only the header and the frame
// directory are held in memory; payloads are served from a read-only memory
// mapping when the platform supports it and from positioned reads otherwise.
//
// The header's frame count is advisory. The directory is built by scanning
// record headers, and a truncated trailing record ends the stream.
package ivf
