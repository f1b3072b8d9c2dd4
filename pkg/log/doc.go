// Package log provides a logging abstraction for vpxview components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Default implementations are provided for zerolog
// and a no-op logger for testing.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger, err := log.NewZerologAdapterLevel(os.Stderr, "debug")
//
// Or use the no-op logger for testing:
//
//	logger := log.NewNoopLogger()
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing
// logging infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
