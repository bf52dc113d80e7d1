// Package pmm implements the physical frame allocator.
package pmm

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
)

var (
	// ErrOutOfMemory is returned when the frame pool is exhausted. It is
	// fatal for the request that triggered the allocation, not for the
	// kernel.
	ErrOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of physical memory"}

	errDoubleFree      = &kernel.Error{Module: "pmm", Message: "frame freed twice"}
	errFreeUnallocated = &kernel.Error{Module: "pmm", Message: "freed frame was never allocated"}
)

// StackAllocator hands out single frames from a fixed physical range. Frames
// below the cursor have been handed out at least once; released frames are
// kept on a recycle stack and reused in LIFO order. There is no compaction.
type StackAllocator struct {
	// first and end bound the managed range; cursor is the next
	// never-allocated frame.
	first, cursor, end mm.Frame

	// recycled holds freed frames available for reuse.
	recycled []mm.Frame

	// allocCount and freeCount instrument the exclusive-ownership
	// invariant: allocCount - freeCount equals the frames currently
	// reachable from an address space or a page table.
	allocCount, freeCount uint64
}

// Init sets the frame range [first, last) managed by the allocator.
func (a *StackAllocator) Init(first, last mm.Frame) {
	a.first = first
	a.cursor = first
	a.end = last
	a.recycled = a.recycled[:0]
	a.allocCount = 0
	a.freeCount = 0
}

// AllocFrame reserves and zero-fills the next available frame.
func (a *StackAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	var frame mm.Frame

	switch {
	case len(a.recycled) > 0:
		frame = a.recycled[len(a.recycled)-1]
		a.recycled = a.recycled[:len(a.recycled)-1]
	case a.cursor < a.end:
		frame = a.cursor
		a.cursor++
	default:
		return mm.InvalidFrame, ErrOutOfMemory
	}

	clear(mm.FrameBytes(frame))
	a.allocCount++
	return frame, nil
}

// FreeFrame returns a frame to the pool, consuming the handle. Releasing a
// frame twice, or one that was never handed out, breaks the kernel's
// ownership invariants and halts the machine.
func (a *StackAllocator) FreeFrame(frame mm.Frame) {
	if frame < a.first || frame >= a.cursor {
		kfmt.Panic(errFreeUnallocated)
	}
	for _, recycled := range a.recycled {
		if recycled == frame {
			kfmt.Panic(errDoubleFree)
		}
	}

	a.recycled = append(a.recycled, frame)
	a.freeCount++
}

// Stats returns the number of allocations and frees performed so far.
func (a *StackAllocator) Stats() (allocs, frees uint64) {
	return a.allocCount, a.freeCount
}

// FramesInUse returns the number of frames currently held by an owner other
// than the free pool.
func (a *StackAllocator) FramesInUse() uint64 {
	return a.allocCount - a.freeCount
}
