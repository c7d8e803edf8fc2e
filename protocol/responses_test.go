package protocol

import "testing"

func TestParseGetVersion(t *testing.T) {
	// count=0x0B, version=0x22, 11 opcode bytes.
	data := []byte{0x0B, 0x22, 0x00, 0x01, 0x02, 0x11, 0x21, 0x31, 0x43, 0x63, 0x73, 0x82, 0x92}

	info, err := ParseGetVersion(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Major != 2 || info.Minor != 2 {
		t.Errorf("version = %d.%d, want 2.2 (packed nibbles of 0x22)", info.Major, info.Minor)
	}
	if !info.Commands.Supports(CmdErase) {
		t.Error("expected ERASE (0x43) to be in the supported set")
	}
	if !info.Commands.Supports(CmdWriteMem) {
		t.Error("expected WRITE_MEM (0x31) to be in the supported set")
	}
	if info.Commands.Supports(CmdExtendedErase) {
		t.Error("did not expect EXTENDED_ERASE (0x44) to be advertised in this fixture")
	}
}

func TestParseGetVersionRejectsLengthMismatch(t *testing.T) {
	if _, err := ParseGetVersion([]byte{0x02, 0x22, 0x00}); err == nil {
		t.Error("expected error when count does not match payload length")
	}
}

func TestParseGetVersionIgnoresUnknownOpcodes(t *testing.T) {
	data := []byte{0x01, 0x10, 0xEE}
	info, err := ParseGetVersion(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, supported := range info.Commands {
		if supported {
			t.Errorf("index %d unexpectedly marked supported for unknown opcode 0xEE", i)
		}
	}
}

func TestParseGetID(t *testing.T) {
	// id-length byte 0x01, product id 0x0410 (med-density).
	id, err := ParseGetID([]byte{0x01, 0x04, 0x10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0x0410 {
		t.Errorf("product id = 0x%04X, want 0x0410", id)
	}
}

func TestParseGetIDRejectsBadLengthByte(t *testing.T) {
	if _, err := ParseGetID([]byte{0x02, 0x04, 0x10}); err == nil {
		t.Error("expected error when id-length byte is not 1")
	}
}

func TestParseGetIDRejectsShortPayload(t *testing.T) {
	if _, err := ParseGetID([]byte{0x01, 0x04}); err == nil {
		t.Error("expected error for truncated GET_ID payload")
	}
}
