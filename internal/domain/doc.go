// Package domain contains the core value types and error taxonomy for sunshade.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (HTTP, GPIO, clocks, logging) and holds only the
// types that every other layer agrees on.
//
// # Types
//
//   - [Direction]: which way the actuator is driven (raise or lower)
//   - [Events]: today's sunrise and sunset as resolved local instants
//   - [ParseError], [StatusError]: typed errors carrying diagnostic detail
//
// # Error classes
//
// Every error produced by a duty cycle matches exactly one class sentinel
// with errors.Is: [ErrTransport], [ErrProtocol], [ErrMalformedStream],
// [ErrParse] or [ErrTimeResolution]. The orchestrator treats all of them the
// same way (skip actuation, idle-sleep), but logs the class.
package domain
