package sparseimage

// Chunk is one bounded, contiguous piece of image data returned by
// Read. It never straddles a block boundary.
type Chunk struct {
	Addr uint64
	Data []byte
}

// SparseImage is a gap-tolerant, address-ordered buffer of firmware
// bytes. The zero value is not usable; construct one with New.
type SparseImage struct {
	list *skipList
	size uint64

	cursor    *node
	cursorPos int
}

// New returns an empty SparseImage.
func New() *SparseImage {
	return &SparseImage{list: newSkipList()}
}

// TotalSize returns the number of distinct addressed bytes held by the
// image: the cardinality of the union of all inserted ranges, not the
// sum of every Insert call's length.
func (s *SparseImage) TotalSize() uint64 {
	return s.size
}

// Blocks returns a snapshot of the image's blocks in address order.
// Intended for tests and diagnostics.
func (s *SparseImage) Blocks() []MemBlock {
	var out []MemBlock
	for n := s.list.first(); n != nil; n = n.forward[0] {
		out = append(out, MemBlock{Offset: n.offset, Data: n.data})
	}
	return out
}

// Insert adds a block at the given offset, merging it with any block it
// overlaps or touches. Where the new block and an existing block cover
// the same address, the new block's bytes win.
func (s *SparseImage) Insert(offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	block, err := NewMemBlock(offset, data)
	if err != nil {
		return err
	}

	pred := s.list.pred(block.Offset)
	var start *node
	switch {
	case pred != s.list.head && touches(pred.offset, len(pred.data), block.Offset, len(block.Data)):
		start = pred
	case pred.forward[0] != nil && touches(pred.forward[0].offset, len(pred.forward[0].data), block.Offset, len(block.Data)):
		start = pred.forward[0]
	}

	if start == nil {
		buf := make([]byte, len(block.Data))
		copy(buf, block.Data)
		s.list.insert(block.Offset, buf)
		s.size += uint64(len(buf))
		return nil
	}

	// Walk the touching chain starting at start, growing the merged
	// range as we go. Because the list is sorted and every existing
	// block is already non-touching with its neighbors, one forward
	// pass from the leftmost touching node finds every block that
	// needs to be folded in.
	mergedOffset := block.Offset
	mergedEnd := block.End()

	var touched []*node
	for cur := start; cur != nil && touches(cur.offset, len(cur.data), mergedOffset, int(mergedEnd-mergedOffset)); cur = cur.forward[0] {
		touched = append(touched, cur)
		if cur.offset < mergedOffset {
			mergedOffset = cur.offset
		}
		if cur.end() > mergedEnd {
			mergedEnd = cur.end()
		}
	}

	buf := make([]byte, mergedEnd-mergedOffset)

	var oldLen uint64
	var cursorTouched *node
	cursorAbs := uint64(0)
	for _, n := range touched {
		copy(buf[n.offset-mergedOffset:], n.data)
		oldLen += uint64(len(n.data))
		if n == s.cursor {
			cursorTouched = n
			cursorAbs = n.offset + uint64(s.cursorPos)
		}
	}
	// The newly inserted bytes are copied last, so they win over any
	// address the touched blocks already covered.
	copy(buf[block.Offset-mergedOffset:], block.Data)

	for _, n := range touched {
		s.list.remove(n)
	}
	merged := s.list.insert(mergedOffset, buf)

	if cursorTouched != nil {
		s.cursor = merged
		s.cursorPos = int(cursorAbs - mergedOffset)
	}

	s.size = s.size - oldLen + uint64(len(buf))
	return nil
}

// Shift adds delta to every stored address. Used to relocate a RAW
// image, whose addresses start at 0, onto a device's flash base
// address. Order is unaffected since delta is applied uniformly.
func (s *SparseImage) Shift(delta int64) {
	for n := s.list.first(); n != nil; n = n.forward[0] {
		n.offset = uint64(int64(n.offset) + delta)
	}
}

// Rewind positions the read cursor at the first block. Read returns no
// data until Rewind has been called.
func (s *SparseImage) Rewind() {
	s.cursor = s.list.first()
	s.cursorPos = 0
}

// Read returns up to maxLen bytes starting at the cursor, never
// crossing a block boundary, and advances the cursor past what it
// returned. The second return value is false once the image is
// exhausted.
func (s *SparseImage) Read(maxLen int) (Chunk, bool) {
	for s.cursor != nil && len(s.cursor.data) == 0 {
		s.cursor = s.cursor.forward[0]
		s.cursorPos = 0
	}
	if s.cursor == nil {
		return Chunk{}, false
	}

	n := s.cursor
	avail := len(n.data) - s.cursorPos
	if maxLen <= 0 || maxLen > avail {
		maxLen = avail
	}

	chunk := Chunk{
		Addr: n.offset + uint64(s.cursorPos),
		Data: n.data[s.cursorPos : s.cursorPos+maxLen],
	}

	s.cursorPos += maxLen
	if s.cursorPos >= len(n.data) {
		s.cursor = n.forward[0]
		s.cursorPos = 0
	}
	return chunk, true
}
