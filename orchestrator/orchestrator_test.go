package orchestrator

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stm32sprog/stm32sprog/protocol"
)

type mockTransport struct {
	toRead  *bytes.Buffer
	written [][]byte
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

func (m *mockTransport) SetDTR(bool) error { return nil }
func (m *mockTransport) Close() error      { return nil }

func TestOptionsValidate(t *testing.T) {
	require.Error(t, (Options{}).Validate())
	require.NoError(t, (Options{Erase: true}).Validate())
	require.NoError(t, (Options{Reset: true}).Validate())
	require.NoError(t, (Options{WriteFile: "fw.bin"}).Validate())
	require.Error(t, (Options{Verify: true}).Validate())
	require.NoError(t, (Options{WriteFile: "fw.bin", Verify: true}).Validate())
}

// TestRunSessionWriteAndVerify exercises the full erase-without-e,
// write, verify sequence against a mock target impersonating a
// low-density device (product id 0x0412).
func TestRunSessionWriteAndVerify(t *testing.T) {
	firmware := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	dir := t.TempDir()
	path := filepath.Join(dir, "fw.bin")
	require.NoError(t, os.WriteFile(path, firmware, 0o644))

	var reply []byte
	reply = append(reply, protocol.Ack) // handshake

	// GET_VERSION: advertises READ_MEM, WRITE_MEM, ERASE.
	reply = append(reply, protocol.Ack, 0x03, 0x10, 0x11, 0x31, 0x43, protocol.Ack)
	// GET_ID: product id 0x0412 (low-density).
	reply = append(reply, protocol.Ack, 0x01, 0x04, 0x12, protocol.Ack)

	// ErasePages(0, 1): legacy erase of a single page.
	reply = append(reply, protocol.Ack, protocol.Ack)

	// WriteImage: one WRITE_MEM block.
	reply = append(reply, protocol.Ack, protocol.Ack, protocol.Ack)

	// VerifyImage: one READ_MEM round trip, echoing the written data back.
	reply = append(reply, protocol.Ack, protocol.Ack, protocol.Ack)
	reply = append(reply, firmware...)

	tr := &mockTransport{toRead: bytes.NewBuffer(reply)}

	err := runSession(context.Background(), tr, Options{
		Device:    "/dev/ttyUSB0",
		Baud:      115200,
		WriteFile: path,
		Verify:    true,
	})
	require.NoError(t, err)

	// Command frame for WRITE_MEM must appear among the writes.
	found := false
	for _, w := range tr.written {
		if bytes.Equal(w, []byte{0x31, 0xCE}) {
			found = true
		}
	}
	require.True(t, found, "expected a WRITE_MEM command frame")
}
