// Package task implements the thread and process model: TCB and PCB
// records, the ready-queue scheduler with FIFO and round-robin policies,
// and the lifecycle operations (spawn, fork, exec, thread creation, exit
// and reaping). Threads are the unit of scheduling; processes own the
// address space and the tables their threads share.
package task

import (
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/fs"
	"rvos/kernel/mm"
	"rvos/kernel/mm/vmm"
	ksync "rvos/kernel/sync"
	"rvos/kernel/trap"
)

var (
	// ErrNoSuchThread reports a thread slot that names no thread of the
	// process.
	ErrNoSuchThread = &kernel.Error{Module: "task", Message: "no such thread"}

	// ErrMultithreaded reports an operation that requires a
	// single-threaded process, such as fork or exec.
	ErrMultithreaded = &kernel.Error{Module: "task", Message: "operation requires a single-threaded process"}

	errNoCurrent = &kernel.Error{Module: "task", Message: "operation requires a running task"}
)

var (
	procs   map[Pid]*PCB
	threads map[Tid]*TCB

	pidAlloc RecycleAllocator
	tidAlloc RecycleAllocator

	// initPid is the root of the process tree; orphans whose whole
	// ancestor chain has exited are reassigned to it.
	initPid = NoPid
)

// Init resets the task tables and wires the synchronization primitives to
// the scheduler. It must run after the memory subsystem is up and before
// the first process is created.
func Init() {
	procs = make(map[Pid]*PCB)
	threads = make(map[Tid]*TCB)
	pidAlloc = RecycleAllocator{}
	tidAlloc = RecycleAllocator{}
	readyQueue = nil
	currentTid = NoTid
	initPid = NoPid

	ksync.SetSchedulerHooks(ksync.SchedulerHooks{
		Current: CurrentTid,
		Block:   Block,
		Wake:    Wakeup,
	})
}

// Process looks up a PCB by pid.
func Process(pid Pid) *PCB { return procs[pid] }

// Thread looks up a TCB by tid.
func Thread(tid Tid) *TCB { return threads[tid] }

// InitProcess returns the pid of the root process.
func InitProcess() Pid { return initPid }

// CreateProcess builds a new process around the loaded image and makes
// its main thread ready. The first process created becomes the root of
// the process tree.
func CreateProcess(img *vmm.Image) (Pid, *kernel.Error) {
	space, stackBase, err := vmm.NewUserSpace(img)
	if err != nil {
		return NoPid, err
	}

	p := &PCB{
		pid:       Pid(pidAlloc.Alloc()),
		parent:    NoPid,
		space:     space,
		entry:     img.Entry,
		stackBase: stackBase,
		files:     fs.NewStdDescriptors(),
	}
	procs[p.pid] = p
	if initPid == NoPid {
		initPid = p.pid
	}

	if _, err = newThread(p, img.Entry, 0); err != nil {
		space.Release()
		delete(procs, p.pid)
		pidAlloc.Free(uint32(p.pid))
		return NoPid, err
	}

	return p.pid, nil
}

// CreateThread adds a thread to the running process, starting at entry
// with arg in its first argument register, and returns the thread's slot
// within the process.
func CreateThread(entry, arg uintptr) (uint32, *kernel.Error) {
	p := CurrentProcess()
	if p == nil {
		return 0, errNoCurrent
	}

	t, err := newThread(p, entry, arg)
	if err != nil {
		return 0, err
	}
	return t.slot, nil
}

// newThread allocates a tid, a slot, a kernel stack and the per-slot user
// resources, initializes the thread's trap context for first entry into
// user mode and enqueues it.
func newThread(p *PCB, entry, arg uintptr) (*TCB, *kernel.Error) {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	slot := p.slotAlloc.Alloc()
	tid := Tid(tidAlloc.Alloc())

	kstackLow, kstackHigh, err := allocKernelStack(tid)
	if err != nil {
		tidAlloc.Free(uint32(tid))
		p.slotAlloc.Free(slot)
		return nil, err
	}

	ustackHigh, trapFrame, err := allocThreadResources(p.space, p.stackBase, slot)
	if err != nil {
		freeKernelStack(kstackLow)
		tidAlloc.Free(uint32(tid))
		p.slotAlloc.Free(slot)
		return nil, err
	}

	t := &TCB{
		tid:        tid,
		proc:       p.pid,
		slot:       slot,
		trapFrame:  trapFrame,
		kstackLow:  kstackLow,
		kstackHigh: kstackHigh,
		ustackHigh: ustackHigh,
	}

	ctx := t.TrapContext()
	trap.NewUserContext(ctx, entry, ustackHigh, vmm.KernelSpace().Satp(), kstackHigh)
	ctx.Regs[trap.RegA0] = uint64(arg)

	threads[tid] = t
	p.setThreadSlot(slot, tid)
	enqueue(t)

	return t, nil
}

// Fork clones the running single-threaded process: the child gets a deep
// copy of the address space, the same descriptor table and a copy of the
// caller's trap context with the return register cleared. It returns the
// child pid.
func Fork() (Pid, *kernel.Error) {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	cur := Current()
	p := CurrentProcess()
	if cur == nil || p == nil {
		return NoPid, errNoCurrent
	}
	if p.liveThreads() > 1 {
		return NoPid, ErrMultithreaded
	}

	childSpace, err := p.space.Clone()
	if err != nil {
		return NoPid, err
	}

	child := &PCB{
		pid:       Pid(pidAlloc.Alloc()),
		parent:    p.pid,
		space:     childSpace,
		entry:     p.entry,
		stackBase: p.stackBase,
		files:     append([]fs.File(nil), p.files...),
	}

	tid := Tid(tidAlloc.Alloc())
	slot := child.slotAlloc.Alloc()

	kstackLow, kstackHigh, err := allocKernelStack(tid)
	if err != nil {
		tidAlloc.Free(uint32(tid))
		childSpace.Release()
		pidAlloc.Free(uint32(child.pid))
		return NoPid, err
	}

	// The clone already copied the caller's thread areas, trap context
	// page included; look its frame up instead of allocating new ones.
	trapFrame, err := childSpace.TranslatePage(mm.PageFromAddress(trapContextAddr(slot)))
	if err != nil {
		freeKernelStack(kstackLow)
		tidAlloc.Free(uint32(tid))
		childSpace.Release()
		pidAlloc.Free(uint32(child.pid))
		return NoPid, err
	}

	t := &TCB{
		tid:        tid,
		proc:       child.pid,
		slot:       slot,
		trapFrame:  trapFrame,
		kstackLow:  kstackLow,
		kstackHigh: kstackHigh,
		ustackHigh: cur.ustackHigh,
	}

	ctx := t.TrapContext()
	ctx.KernelSP = uint64(kstackHigh)
	ctx.SetReturnValue(0)

	procs[child.pid] = child
	p.children = append(p.children, child.pid)
	threads[tid] = t
	child.setThreadSlot(slot, tid)
	enqueue(t)

	return child.pid, nil
}

// Exec replaces the running process's image. The process must be
// single-threaded. On success the calling thread restarts at the new
// entry point with a fresh user stack; on failure the old image remains
// intact.
func Exec(img *vmm.Image) *kernel.Error {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	cur := Current()
	p := CurrentProcess()
	if cur == nil || p == nil {
		return errNoCurrent
	}
	if p.liveThreads() > 1 {
		return ErrMultithreaded
	}

	space, stackBase, err := vmm.NewUserSpace(img)
	if err != nil {
		return err
	}

	ustackHigh, trapFrame, err := allocThreadResources(space, stackBase, cur.slot)
	if err != nil {
		space.Release()
		return err
	}

	oldSpace := p.space
	p.space = space
	p.entry = img.Entry
	p.stackBase = stackBase
	cur.trapFrame = trapFrame
	cur.ustackHigh = ustackHigh

	trap.NewUserContext(cur.TrapContext(), img.Entry, ustackHigh, vmm.KernelSpace().Satp(), cur.kstackHigh)

	oldSpace.Release()
	space.Activate()
	return nil
}

// setThreadSlot records tid at its slot in the creation-order thread
// list, growing the list with holes as needed.
func (p *PCB) setThreadSlot(slot uint32, tid Tid) {
	for uint32(len(p.threads)) <= slot {
		p.threads = append(p.threads, NoTid)
	}
	p.threads[slot] = tid
}

// threadAt returns the TCB occupying a slot, or nil.
func (p *PCB) threadAt(slot uint32) *TCB {
	if slot >= uint32(len(p.threads)) || p.threads[slot] == NoTid {
		return nil
	}
	return threads[p.threads[slot]]
}
