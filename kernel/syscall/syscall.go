// Package syscall routes environment calls from user mode to their
// handlers. Calls that cannot make progress yet (a wait with no zombie
// child, a read with no pending input) rewind the saved pc back onto the
// ecall instruction so the call re-executes once the task is woken; the
// task never sleeps inside a handler.
package syscall

import (
	"rvos/kernel/kfmt"
	"rvos/kernel/mm/vmm"
	"rvos/kernel/task"
	"rvos/kernel/trap"
)

// Error values returned to user mode in a0.
const (
	retErr        = ^uint64(0)     // -1: invalid argument or target
	retNotExited  = ^uint64(0) - 1 // -2: target exists but has not exited
	retBadAddress = ^uint64(0) - 2 // -3: user pointer outside the address space
)

// programs maps names to loadable images for exec.
var programs map[string]*vmm.Image

// Init registers the dispatcher with the trap layer and clears the
// program registry.
func Init() {
	programs = make(map[string]*vmm.Image)
	trap.HandleSyscall(dispatch)
}

// RegisterProgram makes an image available to exec under the given name.
func RegisterProgram(name string, img *vmm.Image) {
	programs[name] = img
}

// dispatch routes one system call and stores its result in the caller's
// a0. The result is written through the caller's TCB rather than ctx:
// exec rebuilds the context frame mid-call, and a caller that exited no
// longer has one at all.
func dispatch(ctx *trap.Context, num uint64, args [3]uint64) {
	cur := task.Current()
	if cur == nil {
		return
	}

	var ret uint64

	switch num {
	case SysRead:
		ret = sysRead(ctx, args)
	case SysWrite:
		ret = sysWrite(args)
	case SysExit:
		task.ExitThread(int32(args[0]))
	case SysSleep:
		ret = sysSleep(args)
	case SysYield:
		task.Yield()
	case SysKill:
		ret = sysKill(args)
	case SysGetTime:
		ret = sysGetTime()
	case SysGetPid:
		ret = uint64(task.CurrentProcess().Pid())
	case SysFork:
		ret = sysFork()
	case SysExec:
		ret = sysExec(args)
	case SysWaitPid:
		ret = sysWaitPid(ctx, args)
	case SysThreadCreate:
		ret = sysThreadCreate(args)
	case SysGetTid:
		ret = uint64(cur.Slot())
	case SysWaitTid:
		ret = sysWaitTid(args)
	case SysMutexCreate, SysMutexLock, SysMutexUnlock,
		SysSemaphoreCreate, SysSemaphoreUp, SysSemaphoreDown,
		SysCondvarCreate, SysCondvarSignal, SysCondvarWait:
		ret = sysSync(num, args)
	default:
		kfmt.Printf("syscall: unknown call %d from pid %d\n", num, uint64(cur.Process()))
		ret = retErr
	}

	if cur.Status() != task.StatusZombie {
		cur.TrapContext().SetReturnValue(ret)
	}
}

// restart rewinds the saved pc onto the ecall instruction so the call
// runs again when the task resumes. The returned value keeps a0 intact
// for the retry.
func restart(ctx *trap.Context, args [3]uint64) uint64 {
	ctx.Sepc -= 4
	return args[0]
}
