package programmer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stm32sprog/stm32sprog/deviceparams"
	"github.com/stm32sprog/stm32sprog/protocol"
	"github.com/stm32sprog/stm32sprog/sparseimage"
)

// paramsSupporting builds a DeviceParameters whose SupportedCommands
// advertises exactly the given opcodes, as if GET_VERSION had returned
// them.
func paramsSupporting(opcodes ...byte) deviceparams.DeviceParameters {
	data := append([]byte{byte(len(opcodes)), 0x00}, opcodes...)
	v, err := protocol.ParseGetVersion(data)
	if err != nil {
		panic(err)
	}
	p := deviceparams.Defaults()
	p.SupportedCommands = v.Commands
	return p
}

// TestHandshakeHappyPath covers a target that replies ACK to the first
// 0x7F sent.
func TestHandshakeHappyPath(t *testing.T) {
	tr := newMockTransport(protocol.Ack)
	sess := New(tr)

	require.NoError(t, sess.Handshake(context.Background()))
	require.Len(t, tr.written, 1)
	require.Equal(t, []byte{protocol.InitByte}, tr.written[0])
}

// TestHandshakeRetriesThenSucceeds covers a target that NACKs three
// times then ACKs.
func TestHandshakeRetriesThenSucceeds(t *testing.T) {
	tr := newMockTransport(protocol.Nack, protocol.Nack, protocol.Nack, protocol.Ack)
	sess := New(tr)

	require.NoError(t, sess.Handshake(context.Background()))
	require.Len(t, tr.written, 4)
}

func TestHandshakeExhaustsRetries(t *testing.T) {
	replies := make([]byte, protocol.HandshakeRetries+1)
	for i := range replies {
		replies[i] = protocol.Nack
	}
	tr := newMockTransport(replies...)
	sess := New(tr)

	err := sess.Handshake(context.Background())
	require.Error(t, err)
	var notDetected *NotDetectedError
	require.ErrorAs(t, err, &notDetected)
	require.Equal(t, protocol.HandshakeRetries+1, notDetected.Attempts)
}

// TestDiscoverMedDensity covers GET_VERSION/GET_ID on a med-density
// device.
func TestDiscoverMedDensity(t *testing.T) {
	reply := []byte{protocol.Ack}
	reply = append(reply, 0x0B, 0x22, 0x00, 0x01, 0x02, 0x11, 0x21, 0x31, 0x43, 0x63, 0x73, 0x82, 0x92)
	reply = append(reply, protocol.Ack)
	reply = append(reply, protocol.Ack, 0x01, 0x04, 0x10, protocol.Ack)

	tr := newMockTransport(reply...)
	sess := New(tr)

	params, err := sess.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(0x08020000), params.FlashEnd)
	require.Equal(t, uint32(1024), params.PageSize)
	require.True(t, params.SupportedCommands.Supports(protocol.CmdErase))
}

// TestErasePagesLegacy covers a legacy erase of pages 0, 1, 2.
func TestErasePagesLegacy(t *testing.T) {
	tr := newMockTransport(protocol.Ack, protocol.Ack)
	sess := New(tr)
	sess.params = paramsSupporting(protocol.CmdErase)

	require.NoError(t, sess.ErasePages(context.Background(), 0, 3))
	require.Equal(t, []byte{0x43, 0xBC}, tr.written[0])
	require.Equal(t, []byte{0x02, 0x00, 0x01, 0x02, 0x01}, tr.written[1])
}

// TestEraseAllExtendedFallback covers a global extended-erase that is
// NACK'd, forcing a fall back to page-by-page extended erase.
func TestEraseAllExtendedFallback(t *testing.T) {
	tr := newMockTransport(protocol.Ack, protocol.Nack, protocol.Ack, protocol.Ack)
	sess := New(tr)
	sess.params = paramsSupporting(protocol.CmdExtendedErase)

	require.NoError(t, sess.EraseAll(context.Background()))
	require.Equal(t, []byte{0x44, 0xBB}, tr.written[0])
	require.Equal(t, []byte{0xFF, 0xFF, 0x00}, tr.written[1])
	require.Equal(t, []byte{0x44, 0xBB}, tr.written[2])

	pageCount := sess.params.PageCount()
	wantFrame, err := protocol.BuildExtendedEraseFrame(sequentialUint16(pageCount))
	require.NoError(t, err)
	require.Equal(t, wantFrame, tr.written[3])
}

// TestVerifyMismatch covers a mismatch at byte 17 of a 256-byte block.
func TestVerifyMismatch(t *testing.T) {
	data := bytes.Repeat([]byte{0xAA}, 256)
	data[17] = 0xAB

	reply := []byte{protocol.Ack, protocol.Ack, protocol.Ack}
	reply = append(reply, data...)

	tr := newMockTransport(reply...)
	sess := New(tr)
	sess.params = paramsSupporting(protocol.CmdReadMem)

	img := sparseimage.New()
	require.NoError(t, img.Insert(0, bytes.Repeat([]byte{0xAA}, 256)))

	err := sess.VerifyImage(context.Background(), img)
	require.Error(t, err)
	var verifyFailed *VerifyFailedError
	require.ErrorAs(t, err, &verifyFailed)
	require.EqualValues(t, 17, verifyFailed.Addr)

	// Exactly one READ_MEM round trip: command, address, size sub-frame.
	require.Len(t, tr.written, 3)
}

func TestWriteImageRejectsCommandUnsupported(t *testing.T) {
	tr := newMockTransport()
	sess := New(tr)
	sess.params = paramsSupporting(protocol.CmdGetVersion)

	img := sparseimage.New()
	require.NoError(t, img.Insert(0x08000000, []byte{1, 2, 3, 4}))

	err := sess.WriteImage(context.Background(), img)
	require.Error(t, err)
	var unsupported *CommandUnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func sequentialUint16(n uint32) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = uint16(i)
	}
	return out
}
