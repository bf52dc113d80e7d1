package vmm

import (
	"testing"

	"rvos/kernel"
	"rvos/kernel/mm"
)

func TestHandleFaultOutsideAnyArea(t *testing.T) {
	setupPhysMem(t, 32)

	as, _ := NewAddressSpace()
	if err := as.InsertArea(0x10000, 0x11000, MapFramed, PermRead); err != nil {
		t.Fatalf("expected insert to succeed; got %v", err)
	}

	for specIndex, faultAddr := range []uintptr{0x0, 0x11000, 0xdeadb000} {
		if err := as.HandleFault(faultAddr, AccessLoad); err != ErrSegmentation {
			t.Errorf("[spec %d] expected ErrSegmentation; got %v", specIndex, err)
		}
	}
}

func TestHandleFaultOnUnmappedAreaPage(t *testing.T) {
	setupPhysMem(t, 32)

	as, _ := NewAddressSpace()
	if err := as.InsertArea(0x10000, 0x12000, MapFramed, PermRead|PermWrite); err != nil {
		t.Fatalf("expected insert to succeed; got %v", err)
	}
	if err := as.UnmapPage(mm.PageFromAddress(0x11000)); err != nil {
		t.Fatalf("expected page unmap to succeed; got %v", err)
	}

	if err := as.HandleFault(0x11008, AccessStore); err != ErrSegmentation {
		t.Fatalf("expected ErrSegmentation for the unmapped page; got %v", err)
	}
}

func TestHandleFaultDetectsCorruption(t *testing.T) {
	setupPhysMem(t, 32)

	defer func(orig func(interface{})) { panicFn = orig }(panicFn)
	var panicked *kernel.Error
	panicFn = func(e interface{}) { panicked, _ = e.(*kernel.Error) }

	as, _ := NewAddressSpace()
	if err := as.InsertArea(0x10000, 0x11000, MapFramed, PermRead); err != nil {
		t.Fatalf("expected insert to succeed; got %v", err)
	}

	// Rip the leaf out from under the area, bypassing its bookkeeping:
	// the area still owns the page, so the fault is corruption, not a
	// user error.
	if err := as.pt.Unmap(mm.PageFromAddress(0x10000)); err != nil {
		t.Fatalf("expected raw unmap to succeed; got %v", err)
	}

	as.HandleFault(0x10000, AccessLoad)
	if panicked != errFramedLeafMissing {
		t.Fatalf("expected the framed-leaf-missing panic; got %v", panicked)
	}
}
