package pmm

import (
	"testing"

	"rvos/kernel/mm"
)

func setupArena(t *testing.T, frames int) {
	t.Helper()

	// One extra page absorbs the alignment of the window base.
	window := make([]byte, uintptr(frames+1)*mm.PageSize)
	if err := mm.Init(window); err != nil {
		t.Fatalf("expected arena registration to succeed; got %v", err)
	}
}

func TestAllocFrameBumpAndRecycle(t *testing.T) {
	setupArena(t, 4)

	var a StackAllocator
	a.Init(mm.FirstFrame(), mm.LastFrame())

	first, err := a.AllocFrame()
	if err != nil {
		t.Fatalf("expected allocation to succeed; got %v", err)
	}
	second, err := a.AllocFrame()
	if err != nil {
		t.Fatalf("expected allocation to succeed; got %v", err)
	}
	if first == second {
		t.Fatal("expected distinct frames from consecutive allocations")
	}

	// Dirty the frame, free it, and check the recycled copy comes back
	// zero-filled and in LIFO order.
	mm.FrameBytes(second)[123] = 0xff
	a.FreeFrame(second)

	third, err := a.AllocFrame()
	if err != nil {
		t.Fatalf("expected allocation to succeed; got %v", err)
	}
	if third != second {
		t.Fatalf("expected the recycled frame %d; got %d", second, third)
	}
	if mm.FrameBytes(third)[123] != 0 {
		t.Fatal("expected the recycled frame to be zero-filled")
	}
}

func TestAllocFrameExhaustion(t *testing.T) {
	setupArena(t, 2)

	var a StackAllocator
	a.Init(mm.FirstFrame(), mm.LastFrame())

	total := int(mm.FramesTotal())
	for i := 0; i < total; i++ {
		if _, err := a.AllocFrame(); err != nil {
			t.Fatalf("expected allocation %d to succeed; got %v", i, err)
		}
	}

	if _, err := a.AllocFrame(); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory; got %v", err)
	}
}

func TestFreeFrameDoubleFreeHalts(t *testing.T) {
	setupArena(t, 4)

	var a StackAllocator
	a.Init(mm.FirstFrame(), mm.LastFrame())

	frame, err := a.AllocFrame()
	if err != nil {
		t.Fatalf("expected allocation to succeed; got %v", err)
	}
	a.FreeFrame(frame)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a double free to halt the kernel")
		}
	}()
	a.FreeFrame(frame)
}

func TestFreeFrameUnallocatedHalts(t *testing.T) {
	setupArena(t, 4)

	var a StackAllocator
	a.Init(mm.FirstFrame(), mm.LastFrame())

	defer func() {
		if recover() == nil {
			t.Fatal("expected freeing a never-allocated frame to halt the kernel")
		}
	}()
	a.FreeFrame(mm.FirstFrame())
}

func TestStatsTrackOwnership(t *testing.T) {
	setupArena(t, 4)

	if err := Init(mm.FirstFrame(), mm.LastFrame()); err != nil {
		t.Fatalf("expected pmm init to succeed; got %v", err)
	}

	f1, _ := mm.AllocFrame()
	f2, _ := mm.AllocFrame()
	mm.FreeFrame(f1)

	allocs, frees := Stats()
	if allocs != 2 || frees != 1 {
		t.Fatalf("expected 2 allocs and 1 free; got %d and %d", allocs, frees)
	}
	if exp, got := uint64(1), FramesInUse(); exp != got {
		t.Fatalf("expected %d frame in use; got %d", exp, got)
	}
	mm.FreeFrame(f2)
	if exp, got := uint64(0), FramesInUse(); exp != got {
		t.Fatalf("expected %d frames in use; got %d", exp, got)
	}
}
