package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseGetVersion decodes the payload of a GET_VERSION reply, i.e. the
// bytes read between the two ACKs: count N, bootloader version, then N
// opcode bytes.
func ParseGetVersion(data []byte) (VersionInfo, error) {
	if len(data) < 2 {
		return VersionInfo{}, fmt.Errorf("GET_VERSION reply too short: %d bytes", len(data))
	}

	n := int(data[0])
	version := data[1]

	if len(data) != 2+n {
		return VersionInfo{}, fmt.Errorf("GET_VERSION reply length mismatch: got %d bytes, expected %d for count=%d", len(data), 2+n, n)
	}

	info := VersionInfo{
		Major: version >> 4,
		Minor: version & 0x0F,
	}
	for _, opcode := range data[2:] {
		info.Commands.mark(opcode)
	}

	return info, nil
}

// ParseGetID decodes the payload of a GET_ID reply: an id-length byte
// (which must equal 1, i.e. 2 bytes follow) and a big-endian 16-bit
// product ID.
func ParseGetID(data []byte) (ProductID, error) {
	if len(data) != 3 {
		return 0, fmt.Errorf("GET_ID reply length mismatch: got %d bytes, expected 3", len(data))
	}
	if data[0] != 1 {
		return 0, fmt.Errorf("GET_ID id-length byte is %d, expected 1", data[0])
	}
	return ProductID(binary.BigEndian.Uint16(data[1:3])), nil
}
