package task

import (
	"rvos/kernel/fs"
	"rvos/kernel/mm/vmm"
	ksync "rvos/kernel/sync"
)

// Pid identifies a process.
type Pid uint32

// NoPid is the invalid process id; the init process has no parent.
const NoPid = Pid(0xffffffff)

// PCB is the kernel-side record for one process: its address space, its
// threads in creation order, the parent/children links and the tables its
// threads share. The parent is referenced by pid only and never keeps the
// parent record alive.
type PCB struct {
	pid    Pid
	parent Pid

	space *vmm.AddressSpace
	entry uintptr

	// stackBase is the lowest virtual address of the thread user stack
	// region, one guard page above the loaded image.
	stackBase uintptr

	// threads lists owned thread ids in creation order. A dead thread
	// leaves a NoTid hole so later threads keep their slots.
	threads   []Tid
	slotAlloc RecycleAllocator

	children []Pid

	files []fs.File
	sync  ksync.Table

	// childWait parks threads blocked in a wait call until one of this
	// process's children exits.
	childWait ksync.WaitQueue

	zombie   bool
	exitCode int32
}

// Pid returns the process id.
func (p *PCB) Pid() Pid { return p.pid }

// Parent returns the pid of the parent process, or NoPid for init.
func (p *PCB) Parent() Pid { return p.parent }

// Space returns the process address space, or nil once the process is a
// zombie.
func (p *PCB) Space() *vmm.AddressSpace { return p.space }

// Zombie reports whether the process has exited.
func (p *PCB) Zombie() bool { return p.zombie }

// ExitCode returns the recorded exit code; only meaningful for zombies.
func (p *PCB) ExitCode() int32 { return p.exitCode }

// Threads returns the owned thread ids in creation order, including NoTid
// holes left by exited threads.
func (p *PCB) Threads() []Tid { return p.threads }

// Children returns the pids of the process's live or zombie children.
func (p *PCB) Children() []Pid { return p.children }

// Sync returns the process's synchronization primitive table.
func (p *PCB) Sync() *ksync.Table { return &p.sync }

// File returns the open file for a descriptor, or nil when the descriptor
// is out of range or closed.
func (p *PCB) File(fd int) fs.File {
	if fd < 0 || fd >= len(p.files) {
		return nil
	}
	return p.files[fd]
}

// AddFile installs f in the lowest free descriptor slot and returns the
// descriptor.
func (p *PCB) AddFile(f fs.File) int {
	for fd, open := range p.files {
		if open == nil {
			p.files[fd] = f
			return fd
		}
	}
	p.files = append(p.files, f)
	return len(p.files) - 1
}

// CloseFile releases a descriptor. It reports whether the descriptor was
// open.
func (p *PCB) CloseFile(fd int) bool {
	if fd < 0 || fd >= len(p.files) || p.files[fd] == nil {
		return false
	}
	p.files[fd] = nil
	return true
}

// liveThreads counts the process's threads that are not zombies.
func (p *PCB) liveThreads() int {
	n := 0
	for _, tid := range p.threads {
		if tid == NoTid {
			continue
		}
		if t := threads[tid]; t != nil && t.status != StatusZombie {
			n++
		}
	}
	return n
}

// removeChild unlinks pid from the children list.
func (p *PCB) removeChild(pid Pid) {
	for i, child := range p.children {
		if child == pid {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}
