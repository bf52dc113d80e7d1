package vmm

import (
	"unsafe"

	"rvos/kernel/mm"
)

const (
	// pageLevels is the number of translation levels in the Sv39 radix
	// tree: a root table, one intermediate level and the leaf level.
	pageLevels = 3

	// pageLevelBits is the number of virtual address bits consumed by the
	// index at each level.
	pageLevelBits = 9

	// tableEntries is the number of entries in one page-table node.
	tableEntries = 1 << pageLevelBits
)

var (
	// tableForFn overlays a page-table node on a frame's contents. It is
	// a variable so tests can instrument node access.
	tableForFn = func(frame mm.Frame) *[tableEntries]pageTableEntry {
		return (*[tableEntries]pageTableEntry)(unsafe.Pointer(&mm.FrameBytes(frame)[0]))
	}
)

// pageIndex extracts the bits of a virtual page number that index the
// page-table node at the given level, with level 0 being the root.
func pageIndex(page mm.Page, level int) uintptr {
	shift := uintptr(pageLevels-1-level) * pageLevelBits
	return (uintptr(page) >> shift) & (tableEntries - 1)
}
