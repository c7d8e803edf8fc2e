package programmer

import (
	"fmt"

	"github.com/stm32sprog/stm32sprog/protocol"
)

// NotDetectedError indicates the autobaud handshake exhausted its retry
// budget without receiving ACK.
type NotDetectedError struct {
	Attempts int
}

func (e *NotDetectedError) Error() string {
	return fmt.Sprintf("device not detected after %d handshake attempts", e.Attempts)
}

// UnsupportedDeviceError indicates GET_ID returned a product id absent
// from the device model table.
type UnsupportedDeviceError struct {
	ProductID protocol.ProductID
}

func (e *UnsupportedDeviceError) Error() string {
	return fmt.Sprintf("unsupported device: unrecognized product id 0x%04X", uint16(e.ProductID))
}

// CommandUnsupportedError indicates the target's GET_VERSION reply did
// not advertise a command an operation requires.
type CommandUnsupportedError struct {
	Command string
}

func (e *CommandUnsupportedError) Error() string {
	return fmt.Sprintf("device does not advertise support for %s", e.Command)
}

// InvalidArgumentError indicates a caller-supplied value is out of the
// range the protocol allows, e.g. an erase count or an unaligned
// address.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

// WriteFailedError indicates a WRITE_MEM block was NACK'd or otherwise
// failed.
type WriteFailedError struct {
	Addr   uint64
	Reason string
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("write failed at %#x: %s", e.Addr, e.Reason)
}

// EraseFailedError indicates an ERASE or EXTENDED_ERASE command was
// NACK'd or otherwise failed.
type EraseFailedError struct {
	Reason string
}

func (e *EraseFailedError) Error() string {
	return fmt.Sprintf("erase failed: %s", e.Reason)
}

// VerifyFailedError indicates read-back data diverged from the image at
// Addr, or the READ_MEM round-trip itself failed.
type VerifyFailedError struct {
	Addr   uint64
	Reason string
}

func (e *VerifyFailedError) Error() string {
	return fmt.Sprintf("verify failed at %#x: %s", e.Addr, e.Reason)
}
