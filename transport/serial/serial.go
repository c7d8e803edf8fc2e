package serial

import (
	"fmt"
	"io"

	cesantaserial "github.com/cesanta/go-serial/serial"
	"github.com/juju/errors"

	"github.com/stm32sprog/stm32sprog/transport"
)

// Port is a transport.Transport backed by a real serial device.
type Port struct {
	name string
	conn cesantaserial.Serial
}

// Open opens device at the given baud, configured 8 data bits, even
// parity, 1 stop bit, raw mode, per the transport contract. It rejects
// any baud not in transport.AllowedBauds before touching the port.
func Open(device string, baud int) (*Port, error) {
	if err := transport.ValidateBaud(baud); err != nil {
		return nil, errors.Trace(err)
	}

	conn, err := cesantaserial.Open(cesantaserial.OpenOptions{
		PortName:              device,
		BaudRate:              uint(baud),
		DataBits:              8,
		ParityMode:            cesantaserial.PARITY_EVEN,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: 500,
	})
	if err != nil {
		return nil, errors.Trace(&transport.TransportError{Op: "open " + device, Err: err})
	}
	return &Port{name: device, conn: conn}, nil
}

// ReadExact implements transport.Transport.
func (p *Port) ReadExact(buf []byte) error {
	_, err := io.ReadFull(p.conn, buf)
	if err != nil {
		return errors.Trace(&transport.TransportError{Op: fmt.Sprintf("read %d bytes from %s", len(buf), p.name), Err: err})
	}
	return nil
}

// WriteAll implements transport.Transport.
func (p *Port) WriteAll(data []byte) error {
	for len(data) > 0 {
		n, err := p.conn.Write(data)
		if err != nil {
			return errors.Trace(&transport.TransportError{Op: "write to " + p.name, Err: err})
		}
		data = data[n:]
	}
	return nil
}

// SetDTR implements transport.Transport.
func (p *Port) SetDTR(assert bool) error {
	if err := p.conn.SetDTR(assert); err != nil {
		return errors.Trace(&transport.TransportError{Op: "set DTR on " + p.name, Err: err})
	}
	return nil
}

// Close implements transport.Transport.
func (p *Port) Close() error {
	return errors.Trace(p.conn.Close())
}

var _ transport.Transport = (*Port)(nil)
