package trap

import (
	"testing"

	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/mm"
	"rvos/kernel/mm/pmm"
	"rvos/kernel/mm/vmm"
)

func TestDecodeCause(t *testing.T) {
	specs := []struct {
		scause uint64
		exp    Cause
	}{
		{scauseEcallFromU, CauseSyscall},
		{scauseIllegalInstruction, CauseIllegalInstruction},
		{scauseInstructionFault, CauseInstructionFault},
		{scauseLoadFault, CauseLoadFault},
		{scauseStoreFault, CauseStoreFault},
		{scauseStoreAccessFault, CauseStoreFault},
		{cpu.InterruptBit | scauseSupervisorTimer, CauseTimer},
		{cpu.InterruptBit | 9, CauseUnknown},
		{63, CauseUnknown},
	}

	for specIndex, spec := range specs {
		if got := DecodeCause(spec.scause); got != spec.exp {
			t.Errorf("[spec %d] expected cause %s; got %s", specIndex, spec.exp, got)
		}
	}
}

func setupContextFrame(t *testing.T) *Context {
	t.Helper()

	window := make([]byte, 8*mm.PageSize)
	if err := mm.Init(window); err != nil {
		t.Fatalf("expected arena registration to succeed; got %v", err)
	}
	if err := pmm.Init(mm.FirstFrame(), mm.LastFrame()); err != nil {
		t.Fatalf("expected pmm init to succeed; got %v", err)
	}

	frame, err := mm.AllocFrame()
	if err != nil {
		t.Fatalf("expected frame allocation to succeed; got %v", err)
	}
	return ContextAt(frame)
}

func TestNewUserContext(t *testing.T) {
	ctx := setupContextFrame(t)

	NewUserContext(ctx, 0x10000, 0x80000, 0xf00f, 0xffff00)

	if exp, got := uint64(0x10000), ctx.Sepc; exp != got {
		t.Fatalf("expected sepc 0x%x; got 0x%x", exp, got)
	}
	if exp, got := uint64(0x80000), ctx.Regs[RegSP]; exp != got {
		t.Fatalf("expected sp 0x%x; got 0x%x", exp, got)
	}
	if ctx.Sstatus&cpu.SstatusSPP != 0 {
		t.Fatal("expected the previous privilege level to be user")
	}
	if ctx.Sstatus&cpu.SstatusSPIE == 0 {
		t.Fatal("expected interrupts to be enabled on return to user")
	}
	if exp, got := uint64(0xf00f), ctx.KernelSatp; exp != got {
		t.Fatalf("expected kernel satp 0x%x; got 0x%x", exp, got)
	}
}

func resetHandlers() {
	syscallHandler = nil
	faultHandler = nil
	timerHandler = nil
	killHandler = nil
}

func TestDispatchSyscall(t *testing.T) {
	defer resetHandlers()
	ctx := setupContextFrame(t)

	ctx.Sepc = 0x1000
	ctx.Regs[RegA7] = 64
	ctx.Regs[RegA0] = 1
	ctx.Regs[RegA1] = 0x2000
	ctx.Regs[RegA2] = 16

	var gotNum uint64
	var gotArgs [3]uint64
	HandleSyscall(func(c *Context, num uint64, args [3]uint64) {
		gotNum, gotArgs = num, args
		c.SetReturnValue(16)
	})

	cpu.SetScause(scauseEcallFromU)
	Dispatch(ctx)

	if exp, got := uint64(0x1004), ctx.Sepc; exp != got {
		t.Fatalf("expected sepc to step over the ecall to 0x%x; got 0x%x", exp, got)
	}
	if gotNum != 64 {
		t.Fatalf("expected syscall number 64; got %d", gotNum)
	}
	if exp := [3]uint64{1, 0x2000, 16}; gotArgs != exp {
		t.Fatalf("expected args %v; got %v", exp, gotArgs)
	}
	if exp, got := uint64(16), ctx.Regs[RegA0]; exp != got {
		t.Fatalf("expected return value %d in a0; got %d", exp, got)
	}
}

func TestDispatchPageFault(t *testing.T) {
	defer resetHandlers()
	ctx := setupContextFrame(t)

	var killedWith int32
	var faultAddr uintptr
	var faultAccess vmm.FaultAccess

	HandlePageFault(func(virtAddr uintptr, access vmm.FaultAccess) *kernel.Error {
		faultAddr, faultAccess = virtAddr, access
		return vmm.ErrSegmentation
	})
	HandleKill(func(code int32) { killedWith = code })

	cpu.SetScause(scauseStoreFault)
	cpu.SetStval(0xdead0008)
	Dispatch(ctx)

	if faultAddr != 0xdead0008 || faultAccess != vmm.AccessStore {
		t.Fatalf("expected a store fault at 0xdead0008; got access %d at 0x%x", faultAccess, faultAddr)
	}
	if killedWith != ExitCodeSegfault {
		t.Fatalf("expected the process to be killed with %d; got %d", ExitCodeSegfault, killedWith)
	}
}

func TestDispatchRecoverableFaultDoesNotKill(t *testing.T) {
	defer resetHandlers()
	ctx := setupContextFrame(t)

	killed := false
	HandlePageFault(func(uintptr, vmm.FaultAccess) *kernel.Error { return nil })
	HandleKill(func(int32) { killed = true })

	cpu.SetScause(scauseLoadFault)
	Dispatch(ctx)

	if killed {
		t.Fatal("expected a resolved fault to leave the task alive")
	}
}

func TestDispatchIllegalInstruction(t *testing.T) {
	defer resetHandlers()
	ctx := setupContextFrame(t)

	var killedWith int32
	HandleKill(func(code int32) { killedWith = code })

	cpu.SetScause(scauseIllegalInstruction)
	Dispatch(ctx)

	if killedWith != ExitCodeIllegal {
		t.Fatalf("expected exit code %d; got %d", ExitCodeIllegal, killedWith)
	}
}

func TestDispatchTimer(t *testing.T) {
	defer resetHandlers()
	ctx := setupContextFrame(t)

	fired := false
	HandleTimer(func() { fired = true })

	cpu.SetScause(cpu.InterruptBit | scauseSupervisorTimer)
	Dispatch(ctx)

	if !fired {
		t.Fatal("expected the timer handler to run")
	}
}

func TestDispatchKernelTrapIsFatal(t *testing.T) {
	defer resetHandlers()
	defer func(orig func(interface{})) { panicFn = orig }(panicFn)

	ctx := setupContextFrame(t)
	ctx.Sstatus = cpu.SstatusSPP

	var panicked interface{}
	panicFn = func(e interface{}) { panicked = e }

	cpu.SetScause(scauseLoadFault)
	Dispatch(ctx)

	if panicked != errKernelTrap {
		t.Fatalf("expected the kernel trap panic; got %v", panicked)
	}
}
