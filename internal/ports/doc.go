// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [FrameSource]: Locates and reads encoded frame payloads
//   - [Decoder]: Turns a payload into the single active decoded frame
//   - [Opener]: Opens (or reopens) a container together with its decoder
//   - [Surface]: Presents a composed scene
//   - [Display]: A surface that also pumps user input
//   - [KeySource] and [KeySink]: The key queue feeding the navigation loop
//   - [ViewRepository]: Persists the view state per container
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// backends (memory-mapped files, gg rasterizer, echo server, terminal, etc.).
package ports
