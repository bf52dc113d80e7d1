package mm

const (
	// PointerShift is equal to log2(unsafe.Sizeof(uintptr)). The pointer
	// size for this architecture is defined as (1 << PointerShift).
	PointerShift = uintptr(3)

	// PageShift is equal to log2(PageSize). This constant is used when we
	// need to convert a physical address to a page number (shift right by
	// PageShift) and vice-versa.
	PageShift = uintptr(12)

	// PageSize defines the system's page size in bytes.
	PageSize = uintptr(1 << PageShift)

	// MaxVirtAddr is the exclusive upper bound of the 39-bit virtual
	// address space that Sv39 translation covers.
	MaxVirtAddr = uintptr(1) << 38

	// TrampolineBase is the virtual address of the trampoline page. It is
	// mapped at the same location in every address space so the trap
	// entry code stays addressable across a page-table switch.
	TrampolineBase = MaxVirtAddr - PageSize

	// TrapContextBase is the virtual address of the page holding a user
	// task's saved trap context, directly below the trampoline.
	TrapContextBase = TrampolineBase - PageSize
)
