package programmer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/stm32sprog/stm32sprog/deviceparams"
	"github.com/stm32sprog/stm32sprog/protocol"
	"github.com/stm32sprog/stm32sprog/sparseimage"
	"github.com/stm32sprog/stm32sprog/transport"
)

// handshakeRetriesDefault mirrors protocol.HandshakeRetries; kept as a
// separate constant so options.go doesn't need to import protocol just
// for a default value.
const handshakeRetriesDefault = protocol.HandshakeRetries

// Session drives one AN3155 bootloader conversation over a transport.
// It has no state machine beyond "before handshake" / "after handshake"
// / "device known": callers are expected to call Handshake, then
// Discover, before any erase/write/verify/go operation.
//
// A Session is not safe for concurrent use: the protocol is strictly
// request/response with no pipelining.
type Session struct {
	transport transport.Transport
	config    Config
	params    deviceparams.DeviceParameters
}

// New creates a Session bound to the given transport, with default
// DeviceParameters in effect until Discover succeeds.
func New(t transport.Transport, opts ...Option) *Session {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		transport: t,
		config:    cfg,
		params:    deviceparams.Defaults(),
	}
}

// Params returns the DeviceParameters currently in effect: the
// pre-discovery defaults before Discover succeeds, or the looked-up
// model after.
func (s *Session) Params() deviceparams.DeviceParameters {
	return s.params
}

// Handshake performs the autobaud sequence: a DTR pulse followed by up
// to HandshakeRetries+1 sends of InitByte, stopping at the first ACK.
func (s *Session) Handshake(ctx context.Context) error {
	s.reportProgress(Progress{Phase: PhaseHandshake})
	if err := s.transport.SetDTR(true); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := s.transport.SetDTR(false); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)

	attempts := s.config.HandshakeRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.transport.WriteAll([]byte{protocol.InitByte}); err != nil {
			return err
		}
		if b, err := s.readByte(); err == nil && b == protocol.Ack {
			s.logInfo("handshake complete", "attempts", attempt)
			return nil
		}
	}
	return &NotDetectedError{Attempts: attempts}
}

// Discover queries GET_VERSION and GET_ID and resolves the device
// model. On success, Params reflects the discovered device for the
// remainder of the session.
func (s *Session) Discover(ctx context.Context) (deviceparams.DeviceParameters, error) {
	s.reportProgress(Progress{Phase: PhaseDiscovery})
	version, err := s.getVersion()
	if err != nil {
		return deviceparams.DeviceParameters{}, err
	}

	id, err := s.getID()
	if err != nil {
		return deviceparams.DeviceParameters{}, err
	}

	params, ok := deviceparams.Lookup(id)
	if !ok {
		return deviceparams.DeviceParameters{}, &UnsupportedDeviceError{ProductID: id}
	}
	params.BootloaderVersion = version
	params.SupportedCommands = version.Commands

	s.params = params
	s.logInfo("device discovered",
		"product_id", fmt.Sprintf("0x%04X", uint16(id)),
		"bootloader_version", version.String(),
		"flash_end", fmt.Sprintf("0x%08X", params.FlashEnd),
	)
	return params, nil
}

func (s *Session) getVersion() (protocol.VersionInfo, error) {
	if err := s.sendCommand(protocol.CmdGetVersion); err != nil {
		return protocol.VersionInfo{}, err
	}
	count, err := s.readByte()
	if err != nil {
		return protocol.VersionInfo{}, err
	}
	rest := make([]byte, 1+int(count))
	if err := s.transport.ReadExact(rest); err != nil {
		return protocol.VersionInfo{}, err
	}
	if err := s.expectAck("GET_VERSION"); err != nil {
		return protocol.VersionInfo{}, err
	}
	return protocol.ParseGetVersion(append([]byte{count}, rest...))
}

func (s *Session) getID() (protocol.ProductID, error) {
	if err := s.sendCommand(protocol.CmdGetID); err != nil {
		return 0, err
	}
	idLen, err := s.readByte()
	if err != nil {
		return 0, err
	}
	rest := make([]byte, 2)
	if err := s.transport.ReadExact(rest); err != nil {
		return 0, err
	}
	if err := s.expectAck("GET_ID"); err != nil {
		return 0, err
	}
	return protocol.ParseGetID(append([]byte{idLen}, rest...))
}

// EraseAll erases the whole device. It first attempts the global-erase
// form of whichever erase command the target advertises; if the target
// NACKs the global form, it falls back to erasing every page
// individually.
func (s *Session) EraseAll(ctx context.Context) error {
	switch {
	case s.params.SupportedCommands.Supports(protocol.CmdErase):
		return s.eraseAllWith(ctx, protocol.CmdErase, protocol.BuildLegacyGlobalEraseFrame())
	case s.params.SupportedCommands.Supports(protocol.CmdExtendedErase):
		return s.eraseAllWith(ctx, protocol.CmdExtendedErase, protocol.BuildExtendedGlobalEraseFrame())
	default:
		return &CommandUnsupportedError{Command: "ERASE/EXTENDED_ERASE"}
	}
}

func (s *Session) eraseAllWith(ctx context.Context, opcode byte, globalFrame []byte) error {
	s.reportProgress(Progress{Phase: PhaseErasing})

	if err := s.sendCommand(opcode); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	if err := s.transport.WriteAll(globalFrame); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	err := s.expectAck("global erase")
	if err == nil {
		time.Sleep(s.params.EraseDelay)
		return nil
	}
	if !protocol.IsNack(err) {
		return &EraseFailedError{Reason: err.Error()}
	}

	s.logInfo("global erase refused, falling back to page erase")
	return s.ErasePages(ctx, 0, s.params.PageCount())
}

// ErasePages erases count pages starting at first. count = 0 is a
// successful no-op. Selects the legacy ERASE command if advertised,
// otherwise EXTENDED_ERASE.
func (s *Session) ErasePages(ctx context.Context, first, count uint32) error {
	if count == 0 {
		return nil
	}
	s.reportProgress(Progress{Phase: PhaseErasing})

	switch {
	case s.params.SupportedCommands.Supports(protocol.CmdErase):
		if count > protocol.MaxLegacyErasePages {
			return &InvalidArgumentError{Reason: fmt.Sprintf("legacy erase page count %d exceeds %d", count, protocol.MaxLegacyErasePages)}
		}
		pages := make([]byte, count)
		for i := range pages {
			pages[i] = byte(first) + byte(i)
		}
		return s.erasePagesLegacy(pages)
	case s.params.SupportedCommands.Supports(protocol.CmdExtendedErase):
		if count > protocol.MaxExtendedErasePages {
			return &InvalidArgumentError{Reason: fmt.Sprintf("extended erase page count %d exceeds %d", count, protocol.MaxExtendedErasePages)}
		}
		pages := make([]uint16, count)
		for i := range pages {
			pages[i] = uint16(first) + uint16(i)
		}
		return s.erasePagesExtended(pages)
	default:
		return &CommandUnsupportedError{Command: "ERASE/EXTENDED_ERASE"}
	}
}

func (s *Session) erasePagesLegacy(pages []byte) error {
	if err := s.sendCommand(protocol.CmdErase); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	frame, err := protocol.BuildLegacyEraseFrame(pages)
	if err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	if err := s.transport.WriteAll(frame); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	if err := s.expectAck("ERASE"); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	time.Sleep(s.params.EraseDelay)
	return nil
}

func (s *Session) erasePagesExtended(pages []uint16) error {
	if err := s.sendCommand(protocol.CmdExtendedErase); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	frame, err := protocol.BuildExtendedEraseFrame(pages)
	if err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	if err := s.transport.WriteAll(frame); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	if err := s.expectAck("EXTENDED_ERASE"); err != nil {
		return &EraseFailedError{Reason: err.Error()}
	}
	time.Sleep(s.params.EraseDelay)
	return nil
}

// WriteImage streams img in bounded WRITE_MEM blocks. Every chunk
// address must be 4-byte aligned; the orchestrator is responsible for
// shifting a RAW image onto an aligned base before calling this.
func (s *Session) WriteImage(ctx context.Context, img *sparseimage.SparseImage) error {
	if !s.params.SupportedCommands.Supports(protocol.CmdWriteMem) {
		return &CommandUnsupportedError{Command: "WRITE_MEM"}
	}

	start := time.Now()
	total := img.TotalSize()
	var done uint64

	img.Rewind()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, ok := img.Read(protocol.MaxWriteBlockSize)
		if !ok {
			break
		}
		if chunk.Addr%4 != 0 {
			return &InvalidArgumentError{Reason: fmt.Sprintf("write address %#x is not 4-byte aligned", chunk.Addr)}
		}

		if err := s.sendCommand(protocol.CmdWriteMem); err != nil {
			return &WriteFailedError{Addr: chunk.Addr, Reason: err.Error()}
		}
		if err := s.sendAddress(uint32(chunk.Addr)); err != nil {
			return &WriteFailedError{Addr: chunk.Addr, Reason: err.Error()}
		}
		frame, err := protocol.BuildWriteDataFrame(chunk.Data)
		if err != nil {
			return &WriteFailedError{Addr: chunk.Addr, Reason: err.Error()}
		}
		if err := s.transport.WriteAll(frame); err != nil {
			return &WriteFailedError{Addr: chunk.Addr, Reason: err.Error()}
		}
		if err := s.expectAck("WRITE_MEM"); err != nil {
			return &WriteFailedError{Addr: chunk.Addr, Reason: err.Error()}
		}
		time.Sleep(s.params.WriteDelay)

		done += uint64(len(chunk.Data))
		s.reportProgress(Progress{Phase: PhaseWriting, BytesDone: done, TotalBytes: total, ElapsedTime: time.Since(start)})
	}
	return nil
}

// VerifyImage reads back every block of img via READ_MEM and compares
// it byte-for-byte. It reports VerifyFailed at the first mismatching
// address; it does not continue past the first failure.
func (s *Session) VerifyImage(ctx context.Context, img *sparseimage.SparseImage) error {
	if !s.params.SupportedCommands.Supports(protocol.CmdReadMem) {
		return &CommandUnsupportedError{Command: "READ_MEM"}
	}

	start := time.Now()
	total := img.TotalSize()
	var done uint64

	img.Rewind()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, ok := img.Read(protocol.MaxReadBlockSize)
		if !ok {
			break
		}

		got, err := s.readMem(uint32(chunk.Addr), len(chunk.Data))
		if err != nil {
			return &VerifyFailedError{Addr: chunk.Addr, Reason: err.Error()}
		}
		if !bytes.Equal(got, chunk.Data) {
			return &VerifyFailedError{
				Addr:   chunk.Addr + uint64(firstMismatch(got, chunk.Data)),
				Reason: "read-back data does not match image",
			}
		}

		done += uint64(len(chunk.Data))
		s.reportProgress(Progress{Phase: PhaseVerifying, BytesDone: done, TotalBytes: total, ElapsedTime: time.Since(start)})
	}
	return nil
}

func (s *Session) readMem(addr uint32, size int) ([]byte, error) {
	if err := s.sendCommand(protocol.CmdReadMem); err != nil {
		return nil, err
	}
	if err := s.sendAddress(addr); err != nil {
		return nil, err
	}
	frame, err := protocol.BuildReadSizeFrame(size)
	if err != nil {
		return nil, err
	}
	if err := s.transport.WriteAll(frame); err != nil {
		return nil, err
	}
	if err := s.expectAck("READ_MEM size"); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if err := s.transport.ReadExact(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Go issues the GO command at addr, transferring control to user code.
// The bootloader session is unusable afterward.
func (s *Session) Go(ctx context.Context, addr uint32) error {
	if !s.params.SupportedCommands.Supports(protocol.CmdGo) {
		return &CommandUnsupportedError{Command: "GO"}
	}
	s.reportProgress(Progress{Phase: PhaseGo})
	if err := s.sendCommand(protocol.CmdGo); err != nil {
		return err
	}
	return s.sendAddress(addr)
}

func (s *Session) sendCommand(opcode byte) error {
	if err := s.transport.WriteAll(protocol.BuildCommandFrame(opcode)); err != nil {
		return err
	}
	return s.expectAck(fmt.Sprintf("command 0x%02X", opcode))
}

func (s *Session) sendAddress(addr uint32) error {
	if addr%4 != 0 {
		return fmt.Errorf("address %#x is not 4-byte aligned", addr)
	}
	if err := s.transport.WriteAll(protocol.BuildAddressFrame(addr)); err != nil {
		return err
	}
	return s.expectAck("address")
}

func (s *Session) readByte() (byte, error) {
	buf := make([]byte, 1)
	if err := s.transport.ReadExact(buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (s *Session) expectAck(operation string) error {
	b, err := s.readByte()
	if err != nil {
		return err
	}
	switch b {
	case protocol.Ack:
		return nil
	case protocol.Nack:
		return &protocol.NackError{Operation: operation}
	default:
		return &protocol.ProtocolError{Operation: operation, Reason: fmt.Sprintf("unexpected response byte 0x%02X", b)}
	}
}

func firstMismatch(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return len(a)
}

func (s *Session) reportProgress(p Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(p)
	}
}

func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}
