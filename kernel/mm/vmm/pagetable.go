package vmm

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
)

var (
	// ErrAlreadyMapped is returned when a mapping request targets a
	// virtual page that already has a leaf entry. Mappings are never
	// silently overwritten.
	ErrAlreadyMapped = &kernel.Error{Module: "vmm", Message: "virtual page is already mapped"}

	// ErrNotMapped is returned when a lookup or unmap request targets a
	// virtual page without a leaf entry.
	ErrNotMapped = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	errVirtOutOfRange = &kernel.Error{Module: "vmm", Message: "virtual page outside the translatable address range"}

	// satpModeSv39 is the translation-mode field value for Sv39 paging.
	satpModeSv39 = uint64(8) << 60
)

// PageTable is one address space's three-level radix tree. The root and
// every lazily-allocated intermediate node are frames owned by the table and
// released together by Release.
type PageTable struct {
	root mm.Frame

	// nodeFrames owns the root and intermediate node frames in
	// allocation order.
	nodeFrames []mm.Frame
}

// NewPageTable allocates a cleared root node.
func NewPageTable() (*PageTable, *kernel.Error) {
	root, err := mm.AllocFrame()
	if err != nil {
		return nil, err
	}

	return &PageTable{
		root:       root,
		nodeFrames: []mm.Frame{root},
	}, nil
}

// walk descends the radix tree to the leaf entry for page. With alloc set,
// missing intermediate nodes are created along the path; without it, a
// missing node terminates the walk with ErrNotMapped.
func (pt *PageTable) walk(page mm.Page, alloc bool) (*pageTableEntry, *kernel.Error) {
	if page.Address() >= mm.MaxVirtAddr {
		return nil, errVirtOutOfRange
	}

	node := pt.root
	for level := 0; level < pageLevels-1; level++ {
		entry := &tableForFn(node)[pageIndex(page, level)]
		if entry.HasFlags(FlagValid) {
			node = entry.Frame()
			continue
		}

		if !alloc {
			return nil, ErrNotMapped
		}

		nodeFrame, err := mm.AllocFrame()
		if err != nil {
			return nil, err
		}
		pt.nodeFrames = append(pt.nodeFrames, nodeFrame)

		entry.SetFrame(nodeFrame)
		entry.SetFlags(FlagValid)
		node = nodeFrame
	}

	return &tableForFn(node)[pageIndex(page, pageLevels-1)], nil
}

// Map installs a leaf entry translating page to frame with the supplied
// permission flags. Intermediate nodes are created as needed. Mapping a page
// that already has a leaf fails with ErrAlreadyMapped.
func (pt *PageTable) Map(page mm.Page, frame mm.Frame, flags PageTableEntryFlag) *kernel.Error {
	entry, err := pt.walk(page, true)
	if err != nil {
		return err
	}

	if entry.HasFlags(FlagValid) {
		return ErrAlreadyMapped
	}

	*entry = 0
	entry.SetFrame(frame)
	entry.SetFlags(flags | FlagValid)
	flushTLBFn()
	return nil
}

// Unmap clears the leaf entry for page. Now-empty intermediate nodes are not
// reclaimed until the table is released. Unmapping an absent page fails with
// ErrNotMapped.
func (pt *PageTable) Unmap(page mm.Page) *kernel.Error {
	entry, err := pt.walk(page, false)
	if err != nil {
		return err
	}

	if !entry.HasFlags(FlagValid) {
		return ErrNotMapped
	}

	*entry = 0
	flushTLBFn()
	return nil
}

// TranslatePage returns the physical frame that a virtual page maps to.
func (pt *PageTable) TranslatePage(page mm.Page) (mm.Frame, *kernel.Error) {
	entry, err := pt.walk(page, false)
	if err != nil {
		return mm.InvalidFrame, err
	}

	if !entry.HasFlags(FlagValid) {
		return mm.InvalidFrame, ErrNotMapped
	}
	if !entry.IsLeaf() {
		// A valid non-leaf at the last level is a malformed table.
		kfmt.Panic(&kernel.Error{Module: "vmm", Message: "leaf level entry is a table pointer"})
	}

	return entry.Frame(), nil
}

// Translate returns the physical address that corresponds to the supplied
// virtual address or ErrNotMapped if the virtual address does not correspond
// to a mapped physical page.
func (pt *PageTable) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	frame, err := pt.TranslatePage(mm.PageFromAddress(virtAddr))
	if err != nil {
		return 0, err
	}

	return frame.Address() + mm.PageOffset(virtAddr), nil
}

// entryFor returns a copy of the leaf entry for page, without allocating.
func (pt *PageTable) entryFor(page mm.Page) (pageTableEntry, *kernel.Error) {
	entry, err := pt.walk(page, false)
	if err != nil {
		return 0, err
	}
	return *entry, nil
}

// RootFrame returns the frame holding the root node.
func (pt *PageTable) RootFrame() mm.Frame {
	return pt.root
}

// Satp returns the address-translation token that activates this table:
// the Sv39 mode field plus the root physical page number.
func (pt *PageTable) Satp() uint64 {
	return satpModeSv39 | uint64(pt.root)
}

// Release returns the root and all intermediate node frames to the pool.
// Leaf target frames are owned by the map areas, not the table.
func (pt *PageTable) Release() {
	for _, frame := range pt.nodeFrames {
		mm.FreeFrame(frame)
	}
	pt.nodeFrames = nil
}
