// Package transport defines the serial link contract the protocol
// driver consumes. The driver is written against this interface only;
// concrete backends live in subpackages such as transport/serial.
package transport
