package task

import (
	"rvos/kernel"
	"rvos/kernel/mm"
	"rvos/kernel/mm/vmm"
)

// Stack sizing. Each stack is separated from its neighbour by an unmapped
// guard page so an overflow faults instead of corrupting the next stack.
const (
	UserStackSize   = 2 * mm.PageSize
	KernelStackSize = 2 * mm.PageSize
)

// kernelStackRange returns the [low, high) virtual range of the kernel
// stack assigned to tid. Stacks are stacked downwards from just below the
// trampoline page in the kernel address space, one guard page between
// consecutive slots.
func kernelStackRange(tid Tid) (low, high uintptr) {
	high = mm.TrampolineBase - uintptr(tid)*(KernelStackSize+mm.PageSize) - mm.PageSize
	return high - KernelStackSize, high
}

// trapContextAddr returns the virtual address of the trap context page for
// a process-local thread slot. Slot 0 sits at the canonical trap context
// base, later slots at the pages directly below it.
func trapContextAddr(slot uint32) uintptr {
	return mm.TrapContextBase - uintptr(slot)*mm.PageSize
}

// userStackRange returns the [low, high) virtual range of the user stack
// for a thread slot, given the process's stack base.
func userStackRange(stackBase uintptr, slot uint32) (low, high uintptr) {
	low = stackBase + uintptr(slot)*(UserStackSize+mm.PageSize)
	return low, low + UserStackSize
}

// allocKernelStack maps a fresh kernel stack for tid into the kernel
// address space and returns its range.
func allocKernelStack(tid Tid) (low, high uintptr, err *kernel.Error) {
	low, high = kernelStackRange(tid)
	if err = vmm.KernelSpace().InsertArea(low, high, vmm.MapFramed, vmm.PermRead|vmm.PermWrite); err != nil {
		return 0, 0, err
	}
	return low, high, nil
}

// freeKernelStack removes tid's kernel stack from the kernel address
// space.
func freeKernelStack(low uintptr) {
	// The area was inserted at task creation; a lookup failure here means
	// the accounting is corrupt, which RemoveArea reports.
	_ = vmm.KernelSpace().RemoveArea(low)
}

// allocThreadResources maps the user stack and the trap context page for a
// thread slot into the process address space and returns the user stack
// top together with the physical frame backing the trap context.
func allocThreadResources(space *vmm.AddressSpace, stackBase uintptr, slot uint32) (ustackHigh uintptr, trapFrame mm.Frame, err *kernel.Error) {
	ustackLow, ustackHigh := userStackRange(stackBase, slot)
	if err = space.InsertArea(ustackLow, ustackHigh, vmm.MapFramed, vmm.PermRead|vmm.PermWrite|vmm.PermUser); err != nil {
		return 0, mm.InvalidFrame, err
	}

	ctxAddr := trapContextAddr(slot)
	if err = space.InsertArea(ctxAddr, ctxAddr+mm.PageSize, vmm.MapFramed, vmm.PermRead|vmm.PermWrite); err != nil {
		_ = space.RemoveArea(ustackLow)
		return 0, mm.InvalidFrame, err
	}

	trapFrame, err = space.TranslatePage(mm.PageFromAddress(ctxAddr))
	if err != nil {
		_ = space.RemoveArea(ustackLow)
		_ = space.RemoveArea(ctxAddr)
		return 0, mm.InvalidFrame, err
	}

	return ustackHigh, trapFrame, nil
}

// freeThreadResources unmaps a thread slot's user stack and trap context
// page from the process address space.
func freeThreadResources(space *vmm.AddressSpace, stackBase uintptr, slot uint32) {
	ustackLow, _ := userStackRange(stackBase, slot)
	_ = space.RemoveArea(ustackLow)
	_ = space.RemoveArea(trapContextAddr(slot))
}
