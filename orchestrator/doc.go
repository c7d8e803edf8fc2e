// Package orchestrator wires the transport, protocol session and
// sparse image together into the end-to-end sequences a programming
// run needs: erase-only, erase+write[+verify], erase+write[+verify]+go,
// or go-only.
package orchestrator
