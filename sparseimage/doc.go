// Package sparseimage implements an address-keyed, gap-tolerant firmware
// image buffer.
//
// A SparseImage holds a set of non-overlapping, non-touching byte blocks
// ordered by address. Inserting a block that overlaps or touches an
// existing one merges them, with the newly inserted bytes winning over
// any address the two share. The image can be shifted by a constant
// delta (used to relocate a RAW image onto a device's flash base
// address) and streamed back out in bounded chunks via a cursor that
// never crosses a block boundary.
//
// # Usage
//
//	img := sparseimage.New()
//	img.Insert(0, firmwareBytes)
//	img.Shift(0x08000000)
//
//	img.Rewind()
//	for {
//	    chunk, ok := img.Read(256)
//	    if !ok {
//	        break
//	    }
//	    // chunk.Addr, chunk.Data
//	}
//
// # Implementation
//
// Blocks are kept in a skip list keyed by starting offset, giving
// O(log n) expected insertion and lookup, with node height drawn
// geometrically up to a ceiling of 16 levels.
package sparseimage
