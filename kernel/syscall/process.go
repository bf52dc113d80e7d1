package syscall

import (
	"rvos/kernel/cpu"
	"rvos/kernel/task"
	"rvos/kernel/timer"
	"rvos/kernel/trap"
)

// sysSleep blocks the calling task until the kernel clock has advanced by
// args[0] milliseconds.
func sysSleep(args [3]uint64) uint64 {
	timer.AddSleeper(task.CurrentTid(), timer.TimeMs()+args[0])
	task.Block()
	return 0
}

// sysKill force-exits the process named by args[0].
func sysKill(args [3]uint64) uint64 {
	if err := task.Kill(task.Pid(args[0]), trap.ExitCodeKilled); err != nil {
		return retErr
	}
	return 0
}

// sysGetTime returns the kernel clock in milliseconds.
func sysGetTime() uint64 {
	return timer.TimeMs()
}

// sysFork clones the calling process and returns the child pid to the
// parent; the child resumes with 0 in a0.
func sysFork() uint64 {
	pid, err := task.Fork()
	if err != nil {
		return retErr
	}
	return uint64(pid)
}

// sysExec replaces the calling process's image with the program named by
// the user string at args[0].
func sysExec(args [3]uint64) uint64 {
	p := task.CurrentProcess()

	name, err := p.Space().ReadUserString(uintptr(args[0]))
	if err != nil {
		return retBadAddress
	}

	img, known := programs[name]
	if !known {
		return retErr
	}

	if err := task.Exec(img); err != nil {
		return retErr
	}
	return 0
}

// sysWaitPid reaps a zombie child: args[0] selects a child pid, or any
// child when it is ^0. The child's exit code is stored at the user
// address in args[1] when non-zero. With children alive but none exited
// the caller blocks until a child exit wakes it and the call restarts.
func sysWaitPid(ctx *trap.Context, args [3]uint64) uint64 {
	p := task.CurrentProcess()

	want := task.NoPid
	if int64(args[0]) >= 0 {
		want = task.Pid(args[0])
	}

	childPid, code, err := task.CollectChild(p, want)
	switch err {
	case nil:
	case task.ErrStillRunning:
		wasEnabled := cpu.IntrOff()
		p.ChildWait().Wait()
		cpu.IntrRestore(wasEnabled)
		return restart(ctx, args)
	default:
		return retErr
	}

	if args[1] != 0 {
		status := [4]byte{
			byte(code),
			byte(code >> 8),
			byte(code >> 16),
			byte(code >> 24),
		}
		if err := p.Space().CopyToUser(uintptr(args[1]), status[:]); err != nil {
			return retBadAddress
		}
	}

	return uint64(childPid)
}

// sysThreadCreate starts a new thread in the calling process at the entry
// point in args[0] with args[1] as its argument, returning the thread's
// slot.
func sysThreadCreate(args [3]uint64) uint64 {
	slot, err := task.CreateThread(uintptr(args[0]), uintptr(args[1]))
	if err != nil {
		return retErr
	}
	return uint64(slot)
}

// sysWaitTid reaps an exited sibling thread by slot. A live thread
// reports -2 so the caller can yield and retry.
func sysWaitTid(args [3]uint64) uint64 {
	code, err := task.CollectThread(task.CurrentProcess(), uint32(args[0]))
	switch err {
	case nil:
		return uint64(int64(code))
	case task.ErrStillRunning:
		return retNotExited
	default:
		return retErr
	}
}
