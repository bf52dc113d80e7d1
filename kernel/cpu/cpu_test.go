package cpu

import "testing"

func TestInterruptEnableDisable(t *testing.T) {
	defer func() { regs = registers{} }()
	regs = registers{}

	if InterruptsEnabled() {
		t.Fatal("expected interrupts to start disabled")
	}

	EnableInterrupts()
	if !InterruptsEnabled() {
		t.Fatal("expected interrupts to be enabled")
	}

	DisableInterrupts()
	if InterruptsEnabled() {
		t.Fatal("expected interrupts to be disabled")
	}
}

func TestIntrOffRestorePairsNest(t *testing.T) {
	defer func() { regs = registers{} }()
	regs = registers{}
	EnableInterrupts()

	outer := IntrOff()
	if !outer {
		t.Fatal("expected outer IntrOff to report interrupts were enabled")
	}
	if InterruptsEnabled() {
		t.Fatal("expected interrupts to be off inside the critical section")
	}

	inner := IntrOff()
	if inner {
		t.Fatal("expected inner IntrOff to report interrupts were already disabled")
	}

	IntrRestore(inner)
	if InterruptsEnabled() {
		t.Fatal("expected interrupts to stay off until the outer restore")
	}

	IntrRestore(outer)
	if !InterruptsEnabled() {
		t.Fatal("expected the outer restore to re-enable interrupts")
	}
}

func TestSwitchSatp(t *testing.T) {
	defer func() { regs = registers{} }()

	SwitchSatp(0xdeadbeef)
	if exp, got := uint64(0xdeadbeef), Satp(); exp != got {
		t.Fatalf("expected satp 0x%x; got 0x%x", exp, got)
	}
}

func TestHaltPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Halt to panic")
		}
	}()
	Halt()
}
