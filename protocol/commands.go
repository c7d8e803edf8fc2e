package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildCommandFrame constructs the two-byte command frame: the opcode
// followed by its bitwise complement. The caller must still wait for
// ACK after writing this frame.
func BuildCommandFrame(opcode byte) []byte {
	return []byte{opcode, ^opcode}
}

// BuildAddressFrame constructs the five-byte address frame: a
// big-endian 32-bit address followed by an XOR checksum over those four
// bytes. addr must be 4-byte aligned; callers enforce this before
// calling.
func BuildAddressFrame(addr uint32) []byte {
	frame := make([]byte, 5)
	binary.BigEndian.PutUint32(frame[:4], addr)
	frame[4] = xorChecksum(frame[:4])
	return frame
}

// BuildWriteDataFrame constructs a WRITE_MEM data-block frame: a length
// byte N = size+pad-1, the payload, pad filler bytes of 0xFF, and an
// XOR checksum over {N, payload, fillers}. size must be in
// [1, MaxWriteBlockSize].
func BuildWriteDataFrame(payload []byte) ([]byte, error) {
	size := len(payload)
	if size < 1 || size > MaxWriteBlockSize {
		return nil, fmt.Errorf("write block size %d out of range [1, %d]", size, MaxWriteBlockSize)
	}

	pad := (4 - size%4) % 4
	n := byte(size + pad - 1)

	frame := make([]byte, 0, 1+size+pad+1)
	frame = append(frame, n)
	frame = append(frame, payload...)
	for i := 0; i < pad; i++ {
		frame = append(frame, 0xFF)
	}
	frame = append(frame, xorChecksum(frame))

	return frame, nil
}

// BuildReadSizeFrame constructs the length sub-frame READ_MEM sends
// after the address frame: a command-shaped {N, ~N} pair where
// N = size-1. size must be in [1, MaxReadBlockSize].
func BuildReadSizeFrame(size int) ([]byte, error) {
	if size < 1 || size > MaxReadBlockSize {
		return nil, fmt.Errorf("read block size %d out of range [1, %d]", size, MaxReadBlockSize)
	}
	return BuildCommandFrame(byte(size - 1)), nil
}

// BuildLegacyEraseFrame constructs an ERASE (0x43) frame for erasing the
// given page indices, each of which must fit in a single byte (legacy
// ERASE addresses pages by byte index). Frame: count byte (pages-1),
// the page indices, then an XOR checksum over both.
func BuildLegacyEraseFrame(pages []byte) ([]byte, error) {
	if len(pages) == 0 || len(pages) > MaxLegacyErasePages {
		return nil, fmt.Errorf("legacy erase page count %d out of range [1, %d]", len(pages), MaxLegacyErasePages)
	}

	frame := make([]byte, 0, 2+len(pages))
	frame = append(frame, byte(len(pages)-1))
	frame = append(frame, pages...)
	frame = append(frame, xorChecksum(frame))
	return frame, nil
}

// BuildLegacyGlobalEraseFrame constructs the ERASE global-erase sentinel
// frame: count byte 0xFF followed by checksum byte 0x00. This is a
// fixed two-byte frame, not the arithmetic XOR of 0xFF.
func BuildLegacyGlobalEraseFrame() []byte {
	return []byte{0xFF, 0x00}
}

// BuildExtendedEraseFrame constructs an EXTENDED_ERASE (0x44) frame for
// the given page indices. Frame: u16 big-endian count (pages-1), each
// page index as u16 big-endian, then an XOR checksum over every emitted
// byte.
func BuildExtendedEraseFrame(pages []uint16) ([]byte, error) {
	if len(pages) == 0 || len(pages) > MaxExtendedErasePages {
		return nil, fmt.Errorf("extended erase page count %d out of range [1, %d]", len(pages), MaxExtendedErasePages)
	}

	frame := make([]byte, 0, 2+2*len(pages)+1)
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(pages)-1))
	for _, p := range pages {
		frame = binary.BigEndian.AppendUint16(frame, p)
	}
	frame = append(frame, xorChecksum(frame))
	return frame, nil
}

// BuildExtendedGlobalEraseFrame constructs the EXTENDED_ERASE
// global-erase sentinel frame: 0xFF 0xFF followed by checksum 0x00.
func BuildExtendedGlobalEraseFrame() []byte {
	return []byte{0xFF, 0xFF, 0x00}
}
