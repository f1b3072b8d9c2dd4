package log

import "time"

// Logger is the structured logger threaded through the demuxer, the decoder
// session, the navigation loop and the display backends. The zerolog
// adapter is the production implementation; NoopLogger serves tests and
// embedders that do not log.
type Logger interface {
	// Debug reports per-frame detail: keys handled, frames decoded.
	Debug(msg string, fields ...Field)

	// Info reports session milestones: container opened, view resumed,
	// container reloaded.
	Info(msg string, fields ...Field)

	// Warn reports a frame or file the viewer skipped over and kept going.
	Warn(msg string, fields ...Field)

	// Error reports a failure the user has to act on.
	Error(msg string, fields ...Field)
}

// Field is one key/value pair attached to a log message.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 is used for byte offsets into the container.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Uint64 is used for decode sequence numbers.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err attaches err under the key "error".
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Any attaches a value that has no dedicated constructor, such as a
// rectangle or a whole configuration.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }
