package trap

import (
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm/vmm"
)

var errKernelTrap = &kernel.Error{Module: "trap", Message: "trap taken while in supervisor mode"}

// SyscallHandler services an environment call. It receives the syscall
// number from a7 and the first three argument registers. The handler is
// responsible for storing the result into ctx: a task that exits inside
// the call no longer owns its context frame, so only the handler knows
// whether writing a return value is still valid.
type SyscallHandler func(ctx *Context, num uint64, args [3]uint64)

// FaultHandler resolves a page fault against the faulting task's address
// space. A non-nil error means the fault is not recoverable and the task
// must be terminated.
type FaultHandler func(virtAddr uintptr, access vmm.FaultAccess) *kernel.Error

// TimerHandler acknowledges a supervisor timer interrupt, rearms the timer
// and applies the scheduling policy.
type TimerHandler func()

// KillHandler forcibly terminates the currently running process with the
// supplied exit code.
type KillHandler func(exitCode int32)

// Exit codes reported for tasks killed by the kernel rather than by their
// own exit call, following the Linux signal convention (negated SIGSEGV,
// SIGILL and SIGKILL numbers).
const (
	ExitCodeSegfault = -11
	ExitCodeIllegal  = -4
	ExitCodeKilled   = -9
)

var (
	syscallHandler SyscallHandler
	faultHandler   FaultHandler
	timerHandler   TimerHandler
	killHandler    KillHandler

	// test hook
	panicFn = kfmt.Panic
)

// HandleSyscall registers the handler invoked for environment calls from
// user mode.
func HandleSyscall(h SyscallHandler) { syscallHandler = h }

// HandlePageFault registers the handler consulted for page faults taken in
// user mode.
func HandlePageFault(h FaultHandler) { faultHandler = h }

// HandleTimer registers the handler invoked for supervisor timer
// interrupts.
func HandleTimer(h TimerHandler) { timerHandler = h }

// HandleKill registers the handler used to terminate tasks that trip a
// fatal exception.
func HandleKill(h KillHandler) { killHandler = h }

// Dispatch routes a single trap whose machine state has been spilled into
// ctx. The trap cause and auxiliary value are read from the control and
// status registers. Traps taken while in supervisor mode indicate a kernel
// bug and are fatal.
func Dispatch(ctx *Context) {
	cause := DecodeCause(cpu.Scause())
	stval := cpu.Stval()

	if ctx.FromKernel() && cause != CauseTimer {
		kfmt.Printf("trap: %s in supervisor mode, sepc: 0x%16x, stval: 0x%16x\n", cause.String(), ctx.Sepc, stval)
		panicFn(errKernelTrap)
		return
	}

	switch cause {
	case CauseSyscall:
		// Step over the ecall instruction before the handler runs so a
		// fork sees the post-syscall pc in the cloned context.
		ctx.Sepc += 4
		num, args := ctx.SyscallArgs()
		syscallHandler(ctx, num, args)
	case CauseInstructionFault:
		dispatchFault(ctx, uintptr(stval), vmm.AccessFetch)
	case CauseLoadFault:
		dispatchFault(ctx, uintptr(stval), vmm.AccessLoad)
	case CauseStoreFault:
		dispatchFault(ctx, uintptr(stval), vmm.AccessStore)
	case CauseIllegalInstruction:
		kfmt.Printf("trap: illegal instruction, sepc: 0x%16x\n", ctx.Sepc)
		killHandler(ExitCodeIllegal)
	case CauseTimer:
		timerHandler()
	default:
		kfmt.Printf("trap: unhandled cause 0x%x, sepc: 0x%16x\n", cpu.Scause(), ctx.Sepc)
		killHandler(ExitCodeIllegal)
	}
}

func dispatchFault(ctx *Context, virtAddr uintptr, access vmm.FaultAccess) {
	if err := faultHandler(virtAddr, access); err != nil {
		kfmt.Printf("trap: %s at 0x%16x, sepc: 0x%16x\n", err.Message, virtAddr, ctx.Sepc)
		killHandler(ExitCodeSegfault)
	}
}
