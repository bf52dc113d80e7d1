package task

import (
	"rvos/kernel/mm"
	ksync "rvos/kernel/sync"
	"rvos/kernel/trap"
)

// Tid identifies a thread of execution. Tids are global: each live thread
// in the system has a distinct one.
type Tid = ksync.TaskID

// NoTid is the invalid thread id.
const NoTid = ksync.NoTask

// Status is the scheduling state of a thread.
type Status uint8

const (
	// StatusReady means the thread sits in the ready queue awaiting CPU
	// time.
	StatusReady Status = iota
	// StatusRunning means the thread is the one the hart is executing.
	StatusRunning
	// StatusBlocked means the thread waits on some wait queue and is not
	// schedulable.
	StatusBlocked
	// StatusZombie is terminal: the thread has exited and only its exit
	// code remains to be collected.
	StatusZombie
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusBlocked:
		return "blocked"
	case StatusZombie:
		return "zombie"
	}
	return "invalid"
}

// TCB is the kernel-side record for one thread: its scheduling state, the
// frame holding its saved trap context, and the locations of its kernel
// and user stacks. The owning process is referenced by pid only so a dead
// TCB record cannot keep a process alive.
type TCB struct {
	tid  Tid
	proc Pid

	// slot is the thread's index within its process. It selects the
	// thread's trap context page and user stack position.
	slot uint32

	status   Status
	exitCode int32

	trapFrame  mm.Frame
	kstackLow  uintptr
	kstackHigh uintptr
	ustackHigh uintptr

	// sliceLeft is the remaining time-slice in ticks under the
	// round-robin policy.
	sliceLeft uint32
}

// Tid returns the thread's id.
func (t *TCB) Tid() Tid { return t.tid }

// Process returns the pid of the owning process.
func (t *TCB) Process() Pid { return t.proc }

// Slot returns the thread's index within its process.
func (t *TCB) Slot() uint32 { return t.slot }

// Status returns the thread's scheduling state.
func (t *TCB) Status() Status { return t.status }

// ExitCode returns the recorded exit code; only meaningful once the
// thread is a zombie.
func (t *TCB) ExitCode() int32 { return t.exitCode }

// TrapContext overlays the thread's saved trap context on its dedicated
// frame.
func (t *TCB) TrapContext() *trap.Context {
	return trap.ContextAt(t.trapFrame)
}

// KernelStackTop returns the virtual address the thread's kernel stack
// grows down from.
func (t *TCB) KernelStackTop() uintptr { return t.kstackHigh }

// UserStackTop returns the virtual address the thread's user stack grows
// down from.
func (t *TCB) UserStackTop() uintptr { return t.ustackHigh }
