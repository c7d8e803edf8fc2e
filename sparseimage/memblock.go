package sparseimage

import "fmt"

// MemBlock is a contiguous run of bytes at a fixed address. It is a
// read-only view: callers must not mutate Data after constructing a
// MemBlock, since SparseImage may retain references to it briefly while
// copying.
type MemBlock struct {
	Offset uint64
	Data   []byte
}

// End returns the address one past the last byte of the block.
func (b MemBlock) End() uint64 {
	return b.Offset + uint64(len(b.Data))
}

// NewMemBlock validates and constructs a MemBlock, enforcing that
// offset+length does not overflow the address space.
func NewMemBlock(offset uint64, data []byte) (MemBlock, error) {
	end := offset + uint64(len(data))
	if end < offset {
		return MemBlock{}, fmt.Errorf("block at offset %#x with length %d overflows the address space", offset, len(data))
	}
	return MemBlock{Offset: offset, Data: data}, nil
}

// touches reports whether two half-open intervals [a, a+la) and
// [b, b+lb) overlap or merely touch at an endpoint: a <= b+lb && b <= a+la.
func touches(aOffset uint64, aLen int, bOffset uint64, bLen int) bool {
	aEnd := aOffset + uint64(aLen)
	bEnd := bOffset + uint64(bLen)
	return aOffset <= bEnd && bOffset <= aEnd
}
