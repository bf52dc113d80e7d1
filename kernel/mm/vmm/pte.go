// Package vmm implements virtual address spaces built from Sv39 page
// tables.
package vmm

import "rvos/kernel/mm"

// PageTableEntryFlag describes a flag that can be applied to a page table
// entry. The bit positions are the ones the hardware walker expects.
type PageTableEntryFlag uint64

const (
	// FlagValid marks the entry as present.
	FlagValid = PageTableEntryFlag(1 << 0)

	// FlagRead allows loads through the mapping.
	FlagRead = PageTableEntryFlag(1 << 1)

	// FlagWrite allows stores through the mapping.
	FlagWrite = PageTableEntryFlag(1 << 2)

	// FlagExec allows instruction fetches through the mapping.
	FlagExec = PageTableEntryFlag(1 << 3)

	// FlagUser allows user-mode accesses through the mapping.
	FlagUser = PageTableEntryFlag(1 << 4)

	// FlagGlobal marks the mapping as present in all address spaces.
	FlagGlobal = PageTableEntryFlag(1 << 5)

	// FlagAccessed is set by the hardware when the page is read.
	FlagAccessed = PageTableEntryFlag(1 << 6)

	// FlagDirty is set by the hardware when the page is written.
	FlagDirty = PageTableEntryFlag(1 << 7)
)

const (
	// ptePpnShift is the bit position of the physical page number field.
	ptePpnShift = 10

	// ptePpnMask selects the 44-bit physical page number field.
	ptePpnMask = uint64(((1 << 44) - 1) << ptePpnShift)
)

// pageTableEntry describes an Sv39 page table entry: a physical frame
// number at bits 10..53 plus the flag bits above. An entry with any of
// R/W/X set is a leaf that terminates translation; an entry with only
// FlagValid set points to the next table level. An entry is never both.
type pageTableEntry uint64

// HasFlags returns true if this entry has all the input flags set.
func (pte pageTableEntry) HasFlags(flags PageTableEntryFlag) bool {
	return (uint64(pte) & uint64(flags)) == uint64(flags)
}

// HasAnyFlag returns true if this entry has at least one of the input flags
// set.
func (pte pageTableEntry) HasAnyFlag(flags PageTableEntryFlag) bool {
	return (uint64(pte) & uint64(flags)) != 0
}

// SetFlags sets the input list of flags on the page table entry.
func (pte *pageTableEntry) SetFlags(flags PageTableEntryFlag) {
	*pte = pageTableEntry(uint64(*pte) | uint64(flags))
}

// ClearFlags unsets the input list of flags from the page table entry.
func (pte *pageTableEntry) ClearFlags(flags PageTableEntryFlag) {
	*pte = pageTableEntry(uint64(*pte) &^ uint64(flags))
}

// IsLeaf returns true if the entry terminates translation at a mapped frame
// rather than pointing at the next table level.
func (pte pageTableEntry) IsLeaf() bool {
	return pte.HasAnyFlag(FlagRead | FlagWrite | FlagExec)
}

// Frame returns the physical page frame that this entry points to.
func (pte pageTableEntry) Frame() mm.Frame {
	return mm.Frame((uint64(pte) & ptePpnMask) >> ptePpnShift)
}

// SetFrame updates the entry to point at the given physical frame.
func (pte *pageTableEntry) SetFrame(frame mm.Frame) {
	*pte = pageTableEntry((uint64(*pte) &^ ptePpnMask) | (uint64(frame) << ptePpnShift))
}
