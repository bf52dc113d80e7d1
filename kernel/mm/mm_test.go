package mm

import "testing"

func TestPageAndFrameMath(t *testing.T) {
	specs := []struct {
		addr      uintptr
		expPage   Page
		expOffset uintptr
	}{
		{0, 0, 0},
		{4095, 0, 4095},
		{4096, 1, 0},
		{0x80001234, 0x80001, 0x234},
	}

	for specIndex, spec := range specs {
		if got := PageFromAddress(spec.addr); got != spec.expPage {
			t.Errorf("[spec %d] expected page %d; got %d", specIndex, spec.expPage, got)
		}
		if got := PageOffset(spec.addr); got != spec.expOffset {
			t.Errorf("[spec %d] expected offset %d; got %d", specIndex, spec.expOffset, got)
		}
		if got := FrameFromAddress(spec.addr); Page(got) != spec.expPage {
			t.Errorf("[spec %d] expected frame %d; got %d", specIndex, spec.expPage, got)
		}
	}

	if exp, got := uintptr(0x80001000), Page(0x80001).Address(); exp != got {
		t.Fatalf("expected address 0x%x; got 0x%x", exp, got)
	}
	if InvalidFrame.Valid() {
		t.Fatal("expected InvalidFrame to be invalid")
	}
}

func TestInitRejectsTinyWindow(t *testing.T) {
	if err := Init(make([]byte, PageSize)); err != errWindowTooSmall {
		t.Fatalf("expected errWindowTooSmall; got %v", err)
	}
}

func TestInitAndFrameBytes(t *testing.T) {
	window := make([]byte, 8*PageSize)
	if err := Init(window); err != nil {
		t.Fatalf("expected window registration to succeed; got %v", err)
	}

	// Alignment may sacrifice the partial first and last pages.
	total := FramesTotal()
	if total < 6 || total > 8 {
		t.Fatalf("expected 6-8 usable frames; got %d", total)
	}
	if FirstFrame() >= LastFrame() {
		t.Fatalf("expected a non-empty frame range; got [%d, %d)", FirstFrame(), LastFrame())
	}

	buf := FrameBytes(FirstFrame())
	if uintptr(len(buf)) != PageSize {
		t.Fatalf("expected a %d byte frame overlay; got %d", PageSize, len(buf))
	}

	// The overlay aliases the window: a write through one must be seen
	// through the other.
	buf[0] = 0xaa
	again := FrameBytes(FirstFrame())
	if again[0] != 0xaa {
		t.Fatal("expected frame overlays to alias the same storage")
	}
}

func TestFrameBytesHaltsOnForeignFrame(t *testing.T) {
	window := make([]byte, 4*PageSize)
	if err := Init(window); err != nil {
		t.Fatalf("expected window registration to succeed; got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected a frame outside the window to halt the kernel")
		}
	}()
	FrameBytes(LastFrame())
}
