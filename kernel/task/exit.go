package task

import (
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/kfmt"
	"rvos/kernel/sbi"
	ksync "rvos/kernel/sync"
)

var (
	// ErrNoChild reports a wait call naming no child of the caller.
	ErrNoChild = &kernel.Error{Module: "task", Message: "no matching child process"}

	// ErrStillRunning reports a wait on a child or thread that has not
	// exited yet; the caller should block and retry.
	ErrStillRunning = &kernel.Error{Module: "task", Message: "target has not exited yet"}

	errExitExited = &kernel.Error{Module: "task", Message: "exit of an already exited process"}
)

// ExitThread terminates the running thread with the given code. A main
// thread (slot 0) takes its whole process down; any other thread becomes
// a zombie reaped later through CollectThread, and the process exits only
// when no live thread remains. Mutexes the thread holds are released so
// waiters are not wedged behind a dead owner.
func ExitThread(code int32) {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	cur := Current()
	if cur == nil {
		return
	}
	p := procs[cur.proc]

	if cur.slot == 0 {
		exitProcess(p, code)
		return
	}

	cur.status = StatusZombie
	cur.exitCode = code
	p.sync.ReleaseHeldBy(cur.tid)

	// The user stack goes back to the pool now; the trap context page
	// stays mapped until the thread is reaped since the thread's saved
	// state lives in it.
	ustackLow, _ := userStackRange(p.stackBase, cur.slot)
	_ = p.space.RemoveArea(ustackLow)

	if p.liveThreads() == 0 {
		exitProcess(p, code)
	}

	if currentTid == cur.tid {
		currentTid = NoTid
		schedule()
	}
}

// ExitProcess terminates the running thread's whole process with the
// given code, regardless of which thread calls it.
func ExitProcess(code int32) {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	p := CurrentProcess()
	if p == nil {
		return
	}
	exitProcess(p, code)
}

// exitProcess zombifies every thread of p, releases its address space and
// kernel stacks, hands its children to the nearest living ancestor and
// wakes the parent if it is blocked in a wait call. Interrupts must be
// disabled. Exiting an already exited process is a fatal caller bug.
func exitProcess(p *PCB, code int32) {
	if p.zombie {
		kfmt.Panic(errExitExited)
	}

	ranHere := false
	for _, tid := range p.threads {
		if tid == NoTid {
			continue
		}
		t := threads[tid]

		switch t.status {
		case StatusZombie:
			// Exited but unreaped: only its kernel stack is still held.
			freeKernelStack(t.kstackLow)
			continue
		case StatusReady:
			dequeue(tid)
		case StatusRunning:
			ranHere = true
		}

		t.status = StatusZombie
		t.exitCode = code
		p.sync.ReleaseHeldBy(tid)
		freeKernelStack(t.kstackLow)
	}

	p.zombie = true
	p.exitCode = code
	p.space.Release()
	p.space = nil
	p.files = nil

	reparentChildren(p)

	if parent := procs[p.parent]; parent != nil {
		parent.childWait.WakeAll()
	}

	if p.pid == initPid {
		kfmt.Printf("task: root process exited with code %d, shutting down\n", code)
		sbi.Shutdown(false)
	}

	if ranHere {
		currentTid = NoTid
		schedule()
	}
}

// reparentChildren moves p's children to the nearest living ancestor,
// falling back to the root process.
func reparentChildren(p *PCB) {
	if len(p.children) == 0 {
		return
	}

	heir := initPid
	for ancestor := procs[p.parent]; ancestor != nil; ancestor = procs[ancestor.parent] {
		if !ancestor.zombie {
			heir = ancestor.pid
			break
		}
	}

	heirProc := procs[heir]
	for _, child := range p.children {
		if c := procs[child]; c != nil {
			c.parent = heir
			if heirProc != nil && heir != p.pid {
				heirProc.children = append(heirProc.children, child)
			}
		}
	}
	p.children = nil
}

// Kill forcibly exits the process identified by pid with the given code.
// Killing an unknown or already exited process fails with ErrNoChild.
func Kill(pid Pid, code int32) *kernel.Error {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	p := procs[pid]
	if p == nil || p.zombie {
		return ErrNoChild
	}

	exitProcess(p, code)
	return nil
}

// CollectChild reaps one zombie child of p. want selects a specific child
// pid; NoPid accepts any. It returns ErrNoChild when no child matches at
// all, and ErrStillRunning when a matching child exists but has not
// exited, in which case the caller should block on ChildWait and retry.
// On success the child's records are freed and its pid and exit code
// returned.
func CollectChild(p *PCB, want Pid) (Pid, int32, *kernel.Error) {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	matched := false
	for _, childPid := range p.children {
		if want != NoPid && childPid != want {
			continue
		}
		matched = true

		child := procs[childPid]
		if child == nil || !child.zombie {
			continue
		}

		code := child.exitCode
		p.removeChild(childPid)
		releaseProcess(child)
		return childPid, code, nil
	}

	if !matched {
		return NoPid, 0, ErrNoChild
	}
	return NoPid, 0, ErrStillRunning
}

// ChildWait returns the wait queue the process's threads block on until
// one of its children exits.
func (p *PCB) ChildWait() *ksync.WaitQueue { return &p.childWait }

// releaseProcess frees the last records of a reaped zombie: its TCBs and
// their ids, then the PCB and pid themselves.
func releaseProcess(p *PCB) {
	for _, tid := range p.threads {
		if tid == NoTid {
			continue
		}
		delete(threads, tid)
		tidAlloc.Free(uint32(tid))
	}
	delete(procs, p.pid)
	pidAlloc.Free(uint32(p.pid))
}

// CollectThread reaps a zombie thread of p by slot. Reaping the caller's
// own slot or a slot that never existed fails with ErrNoSuchThread; a
// live thread reports ErrStillRunning.
func CollectThread(p *PCB, slot uint32) (int32, *kernel.Error) {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	t := p.threadAt(slot)
	if t == nil || t.tid == currentTid {
		return 0, ErrNoSuchThread
	}
	if t.status != StatusZombie {
		return 0, ErrStillRunning
	}

	code := t.exitCode
	if p.space != nil {
		_ = p.space.RemoveArea(trapContextAddr(slot))
	}
	freeKernelStack(t.kstackLow)

	p.threads[slot] = NoTid
	p.slotAlloc.Free(slot)
	delete(threads, t.tid)
	tidAlloc.Free(uint32(t.tid))

	return code, nil
}
