package term

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/overlay"
)

// Display implements ports.Display with a terminal for input and status
// and another surface (usually a PNG file) for the picture.
type Display struct {
	surface ports.Surface
	in      *os.File
	logger  ports.Logger

	// mu serializes writes to out between Present and Serve.
	mu  sync.Mutex
	out io.Writer

	title  *color.Color
	banner *color.Color
}

// NewDisplay creates a terminal display reading keys from in and writing
// the status line to out.
func NewDisplay(surface ports.Surface, in *os.File, out io.Writer, logger ports.Logger) *Display {
	return &Display{
		surface: surface,
		in:      in,
		out:     out,
		logger:  logger,
		title:   color.New(color.FgHiWhite, color.Bold),
		banner:  color.New(color.FgRed),
	}
}

// Present forwards scene to the surface and rewrites the status line.
func (d *Display) Present(scene overlay.Scene, title string) error {
	if err := d.surface.Present(scene, title); err != nil {
		return err
	}
	line := d.title.Sprint(title)
	if scene.Banner != "" {
		line += "  " + d.banner.Sprint(scene.Banner)
	}
	return d.write("\r\x1b[K" + line)
}

func (d *Display) write(s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := io.WriteString(d.out, s)
	return err
}

// Serve puts the terminal in raw mode and forwards keys to sink until ctx
// is done or input ends. The terminal is restored and the input reader has
// stopped when Serve returns.
func (d *Display) Serve(ctx context.Context, sink ports.KeySink) error {
	fd, err := descriptor(d.in)
	if err != nil {
		return fmt.Errorf("terminal input: %w", err)
	}
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() {
			_ = term.Restore(fd, old)
			_ = d.write("\r\n")
		}()
	}

	in, release, err := interruptible(d.in)
	if err != nil {
		return fmt.Errorf("terminal input: %w", err)
	}

	reads := make(chan []byte)
	go func() {
		defer close(reads)
		buf := make([]byte, 64)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				select {
				case reads <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	defer func() {
		release()
		for range reads {
		}
	}()

	_ = d.write("\r\nLEFT/RIGHT step, F fills, M vectors, L labels, Q quit\r\n")
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-reads:
			if !ok {
				d.logger.Debug("terminal input closed")
				<-ctx.Done()
				return nil
			}
			for _, k := range ParseKeys(chunk) {
				if !sink.Send(k) {
					d.logger.Warn("key dropped, queue full", ports.String("key", k.String()))
				}
			}
		}
	}
}

// descriptor returns the descriptor of f without switching it to blocking
// mode the way File.Fd does.
func descriptor(f *os.File) (int, error) {
	rc, err := f.SyscallConn()
	if err != nil {
		return -1, err
	}
	fd := -1
	if err := rc.Control(func(s uintptr) { fd = int(s) }); err != nil {
		return -1, err
	}
	return fd, nil
}

// interruptible returns a non-blocking duplicate of f whose pending Read
// returns when release closes it. release restores the blocking mode f's
// descriptor had before.
func interruptible(f *os.File) (*os.File, func(), error) {
	fd, err := descriptor(f)
	if err != nil {
		return nil, nil, err
	}
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, nil, err
	}
	dup, err := unix.Dup(fd)
	if err != nil {
		return nil, nil, err
	}
	if err := unix.SetNonblock(dup, true); err != nil {
		_ = unix.Close(dup)
		return nil, nil, err
	}

	in := os.NewFile(uintptr(dup), f.Name())
	release := func() {
		_ = in.Close()
		if flags&unix.O_NONBLOCK == 0 {
			_ = unix.SetNonblock(fd, false)
		}
	}
	return in, release, nil
}
