package vpx

import "errors"

var errShortHeader = errors.New("frame header truncated")

// bitReader reads MSB-first bit fields from an uncompressed frame header.
type bitReader struct {
	data []byte
	pos  int
}

// f reads an n-bit unsigned field, n <= 32.
func (r *bitReader) f(n int) (uint32, error) {
	if r.pos+n > len(r.data)*8 {
		return 0, errShortHeader
	}
	var v uint32
	for range n {
		b := r.data[r.pos>>3] >> (7 - uint(r.pos&7)) & 1
		v = v<<1 | uint32(b)
		r.pos++
	}
	return v, nil
}

// skip advances n bits.
func (r *bitReader) skip(n int) error {
	if r.pos+n > len(r.data)*8 {
		return errShortHeader
	}
	r.pos += n
	return nil
}
