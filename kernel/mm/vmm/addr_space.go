package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

var (
	// ErrAreaOverlap is returned when an inserted area intersects an
	// existing one.
	ErrAreaOverlap = &kernel.Error{Module: "vmm", Message: "map area overlaps an existing area"}

	// ErrNoSuchArea is returned when removing an area that does not
	// exist.
	ErrNoSuchArea = &kernel.Error{Module: "vmm", Message: "no map area starts at the given address"}

	// trampolineFrame backs the trampoline page mapped into every
	// address space. It is allocated once at vmm Init and never freed.
	trampolineFrame = mm.InvalidFrame

	// kernelSpace is the address space active while no user task runs.
	kernelSpace *AddressSpace
)

// AddressSpace is an ordered set of non-overlapping map areas plus the page
// table realizing them. It owns the frames backing its framed areas and its
// page-table nodes; identity-mapped regions are referenced, not owned.
type AddressSpace struct {
	pt    *PageTable
	areas []*MapArea
}

// NewAddressSpace returns an empty address space with a fresh root table
// and the shared trampoline page mapped at its fixed location.
func NewAddressSpace() (*AddressSpace, *kernel.Error) {
	pt, err := NewPageTable()
	if err != nil {
		return nil, err
	}

	as := &AddressSpace{pt: pt}
	if trampolineFrame.Valid() {
		if err := pt.Map(mm.PageFromAddress(mm.TrampolineBase), trampolineFrame, FlagRead|FlagExec); err != nil {
			pt.Release()
			return nil, err
		}
	}
	return as, nil
}

// InsertArea adds a map area covering [startAddr, endAddr) and eagerly
// installs its mappings. The request fails with ErrAreaOverlap if the range
// intersects an existing area.
func (as *AddressSpace) InsertArea(startAddr, endAddr uintptr, mapType MapType, perm Perm) *kernel.Error {
	return as.insert(newMapArea(startAddr, endAddr, mapType, perm), nil)
}

// InsertAreaWithData behaves like InsertArea and then fills the framed
// area's backing frames from data.
func (as *AddressSpace) InsertAreaWithData(startAddr, endAddr uintptr, mapType MapType, perm Perm, data []byte) *kernel.Error {
	return as.insert(newMapArea(startAddr, endAddr, mapType, perm), data)
}

func (as *AddressSpace) insert(area *MapArea, data []byte) *kernel.Error {
	for _, existing := range as.areas {
		if existing.overlaps(area.start, area.end) {
			return ErrAreaOverlap
		}
	}

	if err := area.mapAll(as.pt); err != nil {
		return err
	}
	if data != nil {
		if err := area.copyData(as.pt, data); err != nil {
			_ = area.unmapAll(as.pt)
			return err
		}
	}

	as.areas = append(as.areas, area)
	return nil
}

// RemoveArea unmaps the area whose range starts at startAddr and releases
// its owned frames.
func (as *AddressSpace) RemoveArea(startAddr uintptr) *kernel.Error {
	start := mm.PageFromAddress(startAddr)
	for i, area := range as.areas {
		if area.start != start {
			continue
		}

		if err := area.unmapAll(as.pt); err != nil {
			return err
		}
		as.areas = append(as.areas[:i], as.areas[i+1:]...)
		return nil
	}
	return ErrNoSuchArea
}

// UnmapPage removes the mapping of a single page through its owning area,
// returning the backing frame to the pool when the area owns it.
func (as *AddressSpace) UnmapPage(page mm.Page) *kernel.Error {
	area := as.AreaFor(page.Address())
	if area == nil {
		return ErrNotMapped
	}
	return area.unmapOne(as.pt, page)
}

// AreaFor returns the area containing the virtual address, or nil.
func (as *AddressSpace) AreaFor(virtAddr uintptr) *MapArea {
	for _, area := range as.areas {
		if area.contains(virtAddr) {
			return area
		}
	}
	return nil
}

// Translate returns the physical address corresponding to virtAddr. The
// syscall layer uses it to validate user-provided pointers before copying
// across the privilege boundary.
func (as *AddressSpace) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	return as.pt.Translate(virtAddr)
}

// TranslatePage returns the frame backing a virtual page.
func (as *AddressSpace) TranslatePage(page mm.Page) (mm.Frame, *kernel.Error) {
	return as.pt.TranslatePage(page)
}

// Satp returns the translation token activating this address space.
func (as *AddressSpace) Satp() uint64 {
	return as.pt.Satp()
}

// Activate switches the hart's translation root to this address space.
func (as *AddressSpace) Activate() {
	switchSatpFn(as.pt.Satp())
}

// Release unmaps every area, returns all owned frames and releases the page
// table. The address space must not be used afterwards. Release is
// idempotent so both process exit and reaping may trigger it.
func (as *AddressSpace) Release() {
	if as.pt == nil {
		return
	}

	for _, area := range as.areas {
		// Area teardown cannot fail on a consistent space; a failure
		// here means the table and the areas disagree.
		if err := area.unmapAll(as.pt); err != nil {
			panicFn(err)
		}
	}
	as.areas = nil

	if trampolineFrame.Valid() {
		if err := as.pt.Unmap(mm.PageFromAddress(mm.TrampolineBase)); err != nil {
			panicFn(err)
		}
	}

	as.pt.Release()
	as.pt = nil
}

// Clone builds a deep copy of the address space: identical areas are
// re-mapped in place while framed areas get fresh frames holding a copy of
// the source contents.
func (as *AddressSpace) Clone() (*AddressSpace, *kernel.Error) {
	clone, err := NewAddressSpace()
	if err != nil {
		return nil, err
	}

	for _, area := range as.areas {
		if err := clone.InsertArea(area.start.Address(), area.end.Address(), area.mapType, area.perm); err != nil {
			clone.Release()
			return nil, err
		}
		if area.mapType != MapFramed {
			continue
		}

		for page := area.start; page < area.end; page++ {
			srcFrame, owned := area.frames[page]
			if !owned {
				continue
			}
			dstFrame, err := clone.pt.TranslatePage(page)
			if err != nil {
				clone.Release()
				return nil, err
			}
			copy(mm.FrameBytes(dstFrame), mm.FrameBytes(srcFrame))
		}
	}

	return clone, nil
}

// KernelLayout names the kernel image regions that must be identity-mapped
// into every address space root so trap handling code remains addressable
// right after a page-table switch.
type KernelLayout struct {
	TextStart, TextEnd     uintptr
	RodataStart, RodataEnd uintptr
	DataStart, DataEnd     uintptr
}

// DefaultKernelLayout describes the image layout used by the linker script:
// the kernel is loaded at KernBase with one region per section.
var DefaultKernelLayout = KernelLayout{
	TextStart:   mm.KernBase,
	TextEnd:     mm.KernBase + 0x100000,
	RodataStart: mm.KernBase + 0x100000,
	RodataEnd:   mm.KernBase + 0x180000,
	DataStart:   mm.KernBase + 0x180000,
	DataEnd:     mm.KernBase + 0x400000,
}

// Init allocates the trampoline frame and builds the kernel address space
// for the supplied image layout. It must run after pmm Init.
func Init(layout KernelLayout) *kernel.Error {
	frame, err := mm.AllocFrame()
	if err != nil {
		return err
	}
	trampolineFrame = frame

	space, err := NewKernelSpace(layout)
	if err != nil {
		return err
	}
	kernelSpace = space
	return nil
}

// KernelSpace returns the kernel's own address space.
func KernelSpace() *AddressSpace {
	return kernelSpace
}

// NewKernelSpace builds an address space with the kernel image regions
// identity-mapped with section permissions, the remaining physical range
// identity-mapped read-write, and the device MMIO windows mapped for the
// driver layer.
func NewKernelSpace(layout KernelLayout) (*AddressSpace, *kernel.Error) {
	as, err := NewAddressSpace()
	if err != nil {
		return nil, err
	}

	specs := []struct {
		start, end uintptr
		perm       Perm
	}{
		{layout.TextStart, layout.TextEnd, PermRead | PermExec},
		{layout.RodataStart, layout.RodataEnd, PermRead},
		{layout.DataStart, layout.DataEnd, PermRead | PermWrite},
		{layout.DataEnd, mm.MemoryEnd, PermRead | PermWrite},
		{mm.UART0, mm.UART0 + mm.PageSize, PermRead | PermWrite},
		{mm.VirtIO0, mm.VirtIO0 + mm.PageSize, PermRead | PermWrite},
		{mm.PLIC, mm.PLIC + mm.PLICSize, PermRead | PermWrite},
	}

	for _, spec := range specs {
		if err := as.InsertArea(spec.start, spec.end, MapIdentical, spec.perm); err != nil {
			as.Release()
			return nil, err
		}
	}

	return as, nil
}
