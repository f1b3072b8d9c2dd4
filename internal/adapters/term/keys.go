// Package term drives the inspector from a terminal: raw-mode key input and
// a one-line status display next to a file surface.
package term

import "github.com/bft-labs/vpxview/internal/domain"

const esc = 0x1b

// ParseKeys decodes the keys in one read from the terminal. Arrow keys
// arrive as CSI sequences; a lone ESC is the escape key. Unrecognized bytes
// are skipped.
func ParseKeys(b []byte) []domain.Key {
	var keys []domain.Key
	for i := 0; i < len(b); i++ {
		switch c := b[i]; c {
		case esc:
			if i+2 < len(b) && (b[i+1] == '[' || b[i+1] == 'O') {
				switch b[i+2] {
				case 'C':
					keys = append(keys, domain.KeyRight)
				case 'D':
					keys = append(keys, domain.KeyLeft)
				}
				i += 2
				continue
			}
			keys = append(keys, domain.KeyEscape)
		case 'q', 'Q', 0x03:
			keys = append(keys, domain.KeyQuit)
		case 'n', ' ':
			keys = append(keys, domain.KeyRight)
		case 'p', 0x7f:
			keys = append(keys, domain.KeyLeft)
		case 'f', 'F':
			keys = append(keys, domain.KeyToggleFills)
		case 'm', 'M':
			keys = append(keys, domain.KeyToggleVectors)
		case 'l', 'L':
			keys = append(keys, domain.KeyToggleLabels)
		}
	}
	return keys
}
