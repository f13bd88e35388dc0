// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the cycle orchestration and the outside
// world. They define what a cycle needs from the device without specifying
// how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Fetcher]: Retrieves the solar-event document as validated text
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//   - [Network]: Acquires and releases the network link
//   - [Clock]: Wall-clock reads and synchronization
//   - [Actuator]: Drives the shade motor for a pulse
//   - [Suspender]: Low-power sleep between cycles
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// hardware, NTP and HTTP implementations, and tests substitute fakes.
package ports
