package log

// NoopLogger drops every message. Open, NewSession and the viewer fall back
// to it when no logger is given.
type NoopLogger struct{}

func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}

var _ Logger = NoopLogger{}
