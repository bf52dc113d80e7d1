package mm

import (
	"unsafe"

	"rvos/kernel"
	"rvos/kernel/kfmt"
)

var (
	errWindowTooSmall = &kernel.Error{Module: "mm", Message: "physical memory window smaller than two pages"}

	// window is the physical memory handed to the kernel at boot. Holding
	// the slice here also keeps the hosted backing storage reachable.
	window []byte

	// firstFrame and lastFrame bound the usable frame range
	// [firstFrame, lastFrame).
	firstFrame, lastFrame Frame
)

// Init registers the physical memory window. The bare-metal bring-up hands
// it the RAM range past the kernel image; the hosted bring-up hands it a
// block obtained from the host. Frame numbers are derived from the real
// addresses inside the window so that translated physical addresses are
// directly addressable.
func Init(physWindow []byte) *kernel.Error {
	if uintptr(len(physWindow)) < 2*PageSize {
		return errWindowTooSmall
	}

	window = physWindow

	base := uintptr(unsafe.Pointer(&physWindow[0]))
	alignedBase := (base + PageSize - 1) & ^(PageSize - 1)
	end := (base + uintptr(len(physWindow))) & ^(PageSize - 1)

	firstFrame = Frame(alignedBase >> PageShift)
	lastFrame = Frame(end >> PageShift)
	return nil
}

// FirstFrame returns the first usable frame of the physical window.
func FirstFrame() Frame { return firstFrame }

// LastFrame returns the exclusive upper bound of the usable frame range.
func LastFrame() Frame { return lastFrame }

// FramesTotal returns the number of usable frames in the physical window.
func FramesTotal() uintptr { return uintptr(lastFrame - firstFrame) }

// FrameBytes overlays a byte slice on the physical frame's contents. Frames
// outside the registered window indicate a corrupted frame handle and halt
// the kernel.
func FrameBytes(f Frame) []byte {
	if f < firstFrame || f >= lastFrame {
		kfmt.Panic(&kernel.Error{Module: "mm", Message: "frame outside the physical memory window"})
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(f.Address())), PageSize)
}
