package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

var (
	// ErrSegmentation is returned for user accesses that no map area or
	// permission allows. The offending process is terminated; the kernel
	// and sibling processes are unaffected.
	ErrSegmentation = &kernel.Error{Module: "vmm", Message: "segmentation violation"}

	errFramedLeafMissing = &kernel.Error{Module: "vmm", Message: "framed area page has no leaf entry"}
)

// FaultAccess describes the access kind that raised a page fault.
type FaultAccess uint8

const (
	// AccessLoad is a read access.
	AccessLoad FaultAccess = iota

	// AccessStore is a write access.
	AccessStore

	// AccessFetch is an instruction fetch.
	AccessFetch
)

// HandleFault applies the page-fault policy to a faulting user access.
// Under eager allocation a framed page never faults while still owned, so
// an owned page without a leaf entry means the table is corrupt and halts
// the kernel. Every recoverable outcome is a user error reported as
// ErrSegmentation; the caller terminates the process.
func (as *AddressSpace) HandleFault(faultAddr uintptr, access FaultAccess) *kernel.Error {
	area := as.AreaFor(faultAddr)
	if area == nil {
		return ErrSegmentation
	}

	page := mm.PageFromAddress(faultAddr)
	if area.mapType == MapFramed {
		if _, owned := area.frames[page]; owned {
			if _, err := as.pt.TranslatePage(page); err != nil {
				panicFn(errFramedLeafMissing)
			}
		}
		// The page was explicitly unmapped from the area; the access
		// is a user error.
		return ErrSegmentation
	}

	// The address is mapped but the permission check failed.
	return ErrSegmentation
}
