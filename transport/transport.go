package transport

import "fmt"

// Transport is a full-duplex byte channel with blocking, exact-length
// I/O and a DTR control line. Framing and timing are entirely the
// caller's responsibility; a Transport only ever moves bytes.
type Transport interface {
	// ReadExact blocks until len(buf) bytes have been read, or returns
	// an error. A short read is always an error, never a partial
	// result.
	ReadExact(buf []byte) error

	// WriteAll blocks until every byte of data has been written, or
	// returns an error.
	WriteAll(data []byte) error

	// SetDTR asserts or deasserts the DTR control line. Implementations
	// that don't wire DTR to anything may treat this as a no-op.
	SetDTR(assert bool) error

	// Close releases the underlying handle.
	Close() error
}

// TransportError wraps a failure from an underlying Transport
// implementation with the operation that failed: open, read, write, or
// set DTR.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AllowedBauds is the set of baud rates the transport contract permits.
// A serial backend must reject any other rate before attempting to
// open the port.
var AllowedBauds = []int{1200, 1800, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400}

// ValidateBaud reports an error if baud is not one of AllowedBauds.
func ValidateBaud(baud int) error {
	for _, b := range AllowedBauds {
		if b == baud {
			return nil
		}
	}
	return fmt.Errorf("baud %d is not one of the supported rates %v", baud, AllowedBauds)
}
