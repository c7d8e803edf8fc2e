// Package deviceparams holds the STM32 device model: the fixed table
// mapping a GET_ID product id to a Flash layout and host-side pacing
// hints, plus the mutable DeviceParameters a protocol session
// accumulates as it discovers a target.
//
// Values are held on a session struct, never as package-level state;
// there is exactly one device model per programming run.
package deviceparams
