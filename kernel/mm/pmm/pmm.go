package pmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

// allocator is the frame allocator used for all page allocations while the
// kernel runs.
var allocator StackAllocator

// Init sets up the physical memory allocation sub-system over the usable
// frame range registered with mm and installs the allocation hooks that the
// vmm code depends on.
func Init(first, last mm.Frame) *kernel.Error {
	allocator.Init(first, last)
	mm.SetFrameAllocator(allocFrame)
	mm.SetFrameDeallocator(freeFrame)
	return nil
}

func allocFrame() (mm.Frame, *kernel.Error) {
	return allocator.AllocFrame()
}

func freeFrame(frame mm.Frame) {
	allocator.FreeFrame(frame)
}

// Stats returns the global allocator's allocation and free counters.
func Stats() (allocs, frees uint64) {
	return allocator.Stats()
}

// FramesInUse returns the number of frames currently held outside the free
// pool.
func FramesInUse() uint64 {
	return allocator.FramesInUse()
}
