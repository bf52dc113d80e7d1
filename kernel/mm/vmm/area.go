package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

// MapType selects how a map area backs its virtual pages.
type MapType uint8

const (
	// MapFramed backs each virtual page with a distinct frame owned by
	// the area.
	MapFramed MapType = iota

	// MapIdentical maps each virtual page to the physical frame with the
	// same number. The frames are not owned by the area; this mode is
	// used for the kernel image and MMIO regions.
	MapIdentical
)

// Perm describes the uniform access permissions of a map area.
type Perm uint8

const (
	// PermRead allows loads from the area.
	PermRead = Perm(1 << 1)

	// PermWrite allows stores to the area.
	PermWrite = Perm(1 << 2)

	// PermExec allows instruction fetches from the area.
	PermExec = Perm(1 << 3)

	// PermUser allows user-mode accesses to the area.
	PermUser = Perm(1 << 4)
)

// pteFlags converts area permissions to the matching entry flag bits.
func (p Perm) pteFlags() PageTableEntryFlag {
	return PageTableEntryFlag(p)
}

// MapArea is a contiguous virtual page range [start, end) with uniform
// permissions and one backing policy, owned by exactly one address space.
type MapArea struct {
	start, end mm.Page
	mapType    MapType
	perm       Perm

	// frames holds the owned backing frame for every mapped page of a
	// framed area.
	frames map[mm.Page]mm.Frame
}

// newMapArea builds an area covering [startAddr, endAddr): the start is
// rounded down to its page, the end rounded up.
func newMapArea(startAddr, endAddr uintptr, mapType MapType, perm Perm) *MapArea {
	return &MapArea{
		start:   mm.PageFromAddress(startAddr),
		end:     mm.PageFromAddress(endAddr + mm.PageSize - 1),
		mapType: mapType,
		perm:    perm,
		frames:  make(map[mm.Page]mm.Frame),
	}
}

// Start returns the first page of the area.
func (area *MapArea) Start() mm.Page { return area.start }

// End returns the exclusive last page of the area.
func (area *MapArea) End() mm.Page { return area.end }

// Perm returns the area's permissions.
func (area *MapArea) Perm() Perm { return area.perm }

// contains reports whether the virtual address falls inside the area.
func (area *MapArea) contains(virtAddr uintptr) bool {
	page := mm.PageFromAddress(virtAddr)
	return page >= area.start && page < area.end
}

// overlaps reports whether the page range [start, end) intersects the area.
func (area *MapArea) overlaps(start, end mm.Page) bool {
	return start < area.end && area.start < end
}

// mapOne installs the mapping for a single page. Framed pages allocate
// their backing frame eagerly; there is no demand paging.
func (area *MapArea) mapOne(pt *PageTable, page mm.Page) *kernel.Error {
	var frame mm.Frame

	switch area.mapType {
	case MapIdentical:
		frame = mm.Frame(page)
	case MapFramed:
		newFrame, err := mm.AllocFrame()
		if err != nil {
			return err
		}
		frame = newFrame
	}

	if err := pt.Map(page, frame, area.perm.pteFlags()); err != nil {
		if area.mapType == MapFramed {
			mm.FreeFrame(frame)
		}
		return err
	}

	if area.mapType == MapFramed {
		area.frames[page] = frame
	}
	return nil
}

// unmapOne removes the mapping for a single page, returning the backing
// frame to the pool if the area owns it.
func (area *MapArea) unmapOne(pt *PageTable, page mm.Page) *kernel.Error {
	if err := pt.Unmap(page); err != nil {
		return err
	}

	if frame, owned := area.frames[page]; owned {
		delete(area.frames, page)
		mm.FreeFrame(frame)
	}
	return nil
}

// mapAll installs mappings for every page of the area. A failure partway
// unmaps the pages installed so far and returns their frames, leaving the
// range and the pool as they were.
func (area *MapArea) mapAll(pt *PageTable) *kernel.Error {
	for page := area.start; page < area.end; page++ {
		if err := area.mapOne(pt, page); err != nil {
			for mapped := area.start; mapped < page; mapped++ {
				_ = area.unmapOne(pt, mapped)
			}
			return err
		}
	}
	return nil
}

// unmapAll removes every remaining mapping of the area.
func (area *MapArea) unmapAll(pt *PageTable) *kernel.Error {
	for page := area.start; page < area.end; page++ {
		if _, owned := area.frames[page]; !owned && area.mapType == MapFramed {
			// Already unmapped through the page-table surface.
			continue
		}
		if err := area.unmapOne(pt, page); err != nil {
			return err
		}
	}
	return nil
}

// copyData fills a framed area's backing frames from data, page by page.
// The frames were cleared on allocation, so a short final chunk leaves the
// page's tail zeroed.
func (area *MapArea) copyData(pt *PageTable, data []byte) *kernel.Error {
	if area.mapType != MapFramed {
		return &kernel.Error{Module: "vmm", Message: "cannot copy data into a non-framed area"}
	}

	page := area.start
	for offset := 0; offset < len(data); offset += int(mm.PageSize) {
		frame, err := pt.TranslatePage(page)
		if err != nil {
			return err
		}

		chunkEnd := offset + int(mm.PageSize)
		if chunkEnd > len(data) {
			chunkEnd = len(data)
		}
		copy(mm.FrameBytes(frame), data[offset:chunkEnd])
		page++
	}
	return nil
}
