// Package mm provides the physical frame and virtual page primitives shared
// by the memory-management subsystems.
package mm

import (
	"math"

	"rvos/kernel"
)

// Frame describes a physical memory page index.
type Frame uintptr

const (
	// InvalidFrame is returned by frame allocators when they fail to
	// reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address pointed to by this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f << PageShift)
}

// FrameFromAddress returns the Frame that contains the given physical
// address. Addresses that are not page-aligned are rounded down.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame((physAddr & ^(PageSize - 1)) >> PageShift)
}

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address pointed to by this Page.
func (p Page) Address() uintptr {
	return uintptr(p << PageShift)
}

// PageFromAddress returns the Page that contains the given virtual address.
// Addresses that are not page-aligned are rounded down.
func PageFromAddress(virtAddr uintptr) Page {
	return Page((virtAddr & ^(PageSize - 1)) >> PageShift)
}

// PageOffset returns the offset of a virtual address within its page.
func PageOffset(virtAddr uintptr) uintptr {
	return virtAddr & (PageSize - 1)
}

var (
	// frameAllocator points to the frame allocator function registered
	// using SetFrameAllocator.
	frameAllocator FrameAllocatorFn

	// frameDeallocator points to the frame release function registered
	// using SetFrameDeallocator.
	frameDeallocator FrameDeallocatorFn
)

// FrameAllocatorFn is a function that can allocate physical frames. The
// returned frame is zero-filled.
type FrameAllocatorFn func() (Frame, *kernel.Error)

// FrameDeallocatorFn is a function that returns a physical frame to the free
// pool. The frame handle is consumed by the call; using it afterwards
// violates the exclusive-ownership invariant.
type FrameDeallocatorFn func(Frame)

// SetFrameAllocator registers a frame allocator function that will be used
// by the vmm code when new physical frames need to be allocated.
func SetFrameAllocator(allocFn FrameAllocatorFn) { frameAllocator = allocFn }

// SetFrameDeallocator registers the function used to return frames to the
// free pool.
func SetFrameDeallocator(deallocFn FrameDeallocatorFn) { frameDeallocator = deallocFn }

// AllocFrame allocates a new physical frame using the currently registered
// physical frame allocator.
func AllocFrame() (Frame, *kernel.Error) { return frameAllocator() }

// FreeFrame returns a frame to the free pool, consuming the handle.
func FreeFrame(frame Frame) { frameDeallocator(frame) }
