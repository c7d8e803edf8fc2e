package deviceparams

import (
	"time"

	"github.com/stm32sprog/stm32sprog/protocol"
)

// FlashBase is the fixed start address of on-chip Flash on every
// supported STM32 family.
const FlashBase = 0x08000000

// DeviceParameters is the Flash layout and pacing model for the device
// currently attached to a session, immutable once discovery completes.
type DeviceParameters struct {
	BootloaderVersion protocol.VersionInfo
	SupportedCommands protocol.CommandSet

	FlashBegin, FlashEnd uint64
	PageSize             uint32
	PagesPerSector       uint32

	EraseDelay time.Duration
	WriteDelay time.Duration
}

// PageCount returns the number of erasable pages covered by [FlashBegin,
// FlashEnd).
func (p DeviceParameters) PageCount() uint32 {
	return uint32((p.FlashEnd - p.FlashBegin) / uint64(p.PageSize))
}

// Defaults returns the DeviceParameters in effect before GET_ID
// succeeds. A successful session always overwrites these with a
// looked-up entry before erasing or writing.
func Defaults() DeviceParameters {
	return DeviceParameters{
		FlashBegin:     FlashBase,
		FlashEnd:       FlashBase + 0x8000,
		PageSize:       1024,
		PagesPerSector: 4,
		EraseDelay:     40 * time.Millisecond,
		WriteDelay:     80 * time.Millisecond,
	}
}

type layout struct {
	flashSize      uint64
	pageSize       uint32
	pagesPerSector uint32
}

// byProductID is the Flash-layout table keyed by the raw GET_ID product
// id.
var byProductID = map[protocol.ProductID]layout{
	0x0412: {flashSize: 0x8000, pageSize: 1024, pagesPerSector: 4},   // low-density
	0x0410: {flashSize: 0x20000, pageSize: 1024, pagesPerSector: 4},  // med-density
	0x0414: {flashSize: 0x80000, pageSize: 2048, pagesPerSector: 2},  // hi-density
	0x0418: {flashSize: 0x40000, pageSize: 2048, pagesPerSector: 2},  // connectivity
	0x0420: {flashSize: 0x20000, pageSize: 1024, pagesPerSector: 4},  // med-value
	0x0428: {flashSize: 0x80000, pageSize: 2048, pagesPerSector: 2},  // hi-value
	0x0430: {flashSize: 0x100000, pageSize: 2048, pagesPerSector: 2}, // xl-density
	0x0436: {flashSize: 0x60000, pageSize: 256, pagesPerSector: 16},  // med-ulp
	0x0416: {flashSize: 0x20000, pageSize: 256, pagesPerSector: 16},  // hi-ulp
}

// Lookup resolves a GET_ID product id to its Flash layout. The second
// return value is false for an unrecognized id, which the caller must
// treat as UnsupportedDevice.
func Lookup(id protocol.ProductID) (DeviceParameters, bool) {
	l, ok := byProductID[id]
	if !ok {
		return DeviceParameters{}, false
	}
	p := Defaults()
	p.FlashEnd = FlashBase + l.flashSize
	p.PageSize = l.pageSize
	p.PagesPerSector = l.pagesPerSector
	return p, true
}
