package protocol

import "testing"

func TestXorChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{"empty", []byte{}, 0x00},
		{"single byte", []byte{0x42}, 0x42},
		{"two bytes cancel", []byte{0xAA, 0xAA}, 0x00},
		{"address example", []byte{0x08, 0x00, 0x00, 0x00}, 0x08},
		{"legacy erase three pages", []byte{0x02, 0x00, 0x01, 0x02}, 0x01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xorChecksum(tt.data)
			if got != tt.expected {
				t.Errorf("xorChecksum(%v) = 0x%02X, want 0x%02X", tt.data, got, tt.expected)
			}
		})
	}
}

func TestXorChecksumMultipleSlices(t *testing.T) {
	got := xorChecksum([]byte{0x01, 0x02}, []byte{0x03})
	want := byte(0x01 ^ 0x02 ^ 0x03)
	if got != want {
		t.Errorf("xorChecksum(multi) = 0x%02X, want 0x%02X", got, want)
	}
}
