package trap

import (
	"unsafe"

	"rvos/kernel/cpu"
	"rvos/kernel/mm"
)

// General purpose register indices into Context.Regs, following the
// standard RISC-V integer register convention.
const (
	RegRA = 1
	RegSP = 2
	RegGP = 3
	RegTP = 4
	RegA0 = 10
	RegA1 = 11
	RegA2 = 12
	RegA3 = 13
	RegA4 = 14
	RegA5 = 15
	RegA6 = 16
	RegA7 = 17

	numRegs = 32
)

// Context captures the full user-visible machine state of a task at the
// moment it entered the supervisor. One Context lives at the start of each
// task's dedicated trap context frame; the low-level trap entry stub spills
// the register file into it and the exit stub restores from it. The three
// kernel* fields are populated once when the task is created and are never
// touched by generic kernel code afterwards.
type Context struct {
	Regs    [numRegs]uint64
	Sstatus uint64
	Sepc    uint64

	KernelSatp    uint64
	KernelSP      uint64
	TrapHandlerVA uint64
}

// ContextAt overlays a Context on the supplied frame. The frame must remain
// allocated for as long as the returned pointer is in use.
func ContextAt(frame mm.Frame) *Context {
	return (*Context)(unsafe.Pointer(&mm.FrameBytes(frame)[0]))
}

// NewUserContext initializes ctx for the first entry into user mode: sepc
// points at the entry address, sp at the top of the user stack and sstatus
// marks the previous privilege level as U with interrupts enabled on return.
func NewUserContext(ctx *Context, entry, userSP uintptr, kernelSatp uint64, kernelSP uintptr) {
	*ctx = Context{}
	ctx.Regs[RegSP] = uint64(userSP)
	ctx.Sepc = uint64(entry)
	ctx.Sstatus = cpu.SstatusSPIE
	ctx.KernelSatp = kernelSatp
	ctx.KernelSP = uint64(kernelSP)
}

// FromKernel reports whether the trap described by ctx was taken while the
// hart was already executing in supervisor mode.
func (ctx *Context) FromKernel() bool {
	return ctx.Sstatus&cpu.SstatusSPP != 0
}

// SyscallArgs extracts the system call number and the first three argument
// registers per the RISC-V calling convention (a7 carries the number).
func (ctx *Context) SyscallArgs() (num uint64, args [3]uint64) {
	return ctx.Regs[RegA7], [3]uint64{ctx.Regs[RegA0], ctx.Regs[RegA1], ctx.Regs[RegA2]}
}

// SetReturnValue stores ret into a0, where user mode expects the result of
// a system call.
func (ctx *Context) SetReturnValue(ret uint64) {
	ctx.Regs[RegA0] = ret
}
