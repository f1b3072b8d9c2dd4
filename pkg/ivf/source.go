package ivf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// errMappingFault reports a read from a mapping whose file shrank after Open.
var errMappingFault = errors.New("container file shrank while mapped")

// source serves byte ranges of the container file.
type source interface {
	io.ReaderAt
	// Slice returns a copy of n bytes at off.
	Slice(off, n int64) ([]byte, error)
	Close() error
}

// openSource prefers a read-only mapping and falls back to positioned reads
// on an open file handle.
func openSource(f *os.File, size int64) (source, bool) {
	if size > 0 && size <= int64(int(^uint(0)>>1)) {
		data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			_ = f.Close()
			return &mappedSource{data: data}, true
		}
	}
	return &fileSource{f: f, size: size}, false
}

type mappedSource struct {
	data []byte
}

func (m *mappedSource) ReadAt(p []byte, off int64) (int, error) {
	if m.data == nil {
		return 0, os.ErrClosed
	}
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n, err := copyOut(p, m.data[off:])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mappedSource) Slice(off, n int64) ([]byte, error) {
	if m.data == nil {
		return nil, os.ErrClosed
	}
	end := off + n
	if off < 0 || n < 0 || end > int64(len(m.data)) {
		return nil, fmt.Errorf("range [%d,%d) outside mapping of %d bytes", off, end, len(m.data))
	}
	buf := make([]byte, n)
	if _, err := copyOut(buf, m.data[off:end]); err != nil {
		return nil, err
	}
	return buf, nil
}

func (m *mappedSource) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// copyOut copies src out of the mapping. A file truncated underneath the
// mapping faults on access; the fault is returned as errMappingFault.
func copyOut(dst, src []byte) (n int, err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(interface{ Addr() uintptr }); !ok {
				panic(r)
			}
			err = errMappingFault
		}
	}()
	return copy(dst, src), nil
}

type fileSource struct {
	f    *os.File
	size int64
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *fileSource) Slice(off, n int64) ([]byte, error) {
	return preadSection(s.f, off, n)
}

func (s *fileSource) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// preadSection reads [off, off+length) bytes from file.
func preadSection(f *os.File, off int64, length int64) ([]byte, error) {
	if f == nil {
		return nil, errors.New("nil file")
	}
	sr := io.NewSectionReader(f, off, length)
	buf := make([]byte, length)
	_, err := io.ReadFull(sr, buf)
	return buf, err
}
