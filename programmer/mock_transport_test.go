package programmer

import (
	"bytes"
	"io"

	"github.com/stm32sprog/stm32sprog/transport"
)

// mockTransport simulates a bootloader target for testing: reads are
// served from a fixed byte queue, writes are logged verbatim so tests
// can assert on exactly what frames the driver emitted.
type mockTransport struct {
	toRead  *bytes.Buffer
	written [][]byte
	dtrLog  []bool
}

func newMockTransport(reply ...byte) *mockTransport {
	return &mockTransport{toRead: bytes.NewBuffer(reply)}
}

func (m *mockTransport) ReadExact(buf []byte) error {
	n, err := m.toRead.Read(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (m *mockTransport) WriteAll(data []byte) error {
	m.written = append(m.written, append([]byte(nil), data...))
	return nil
}

func (m *mockTransport) SetDTR(assert bool) error {
	m.dtrLog = append(m.dtrLog, assert)
	return nil
}

func (m *mockTransport) Close() error { return nil }

var _ transport.Transport = (*mockTransport)(nil)
