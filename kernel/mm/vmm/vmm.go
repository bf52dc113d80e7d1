package vmm

import (
	"rvos/kernel/cpu"
	"rvos/kernel/kfmt"
)

var (
	// panicFn is used by tests to intercept invariant-violation halts.
	panicFn = kfmt.Panic

	// flushTLBFn is used by tests to instrument translation-cache
	// flushes.
	flushTLBFn = cpu.FlushTLB

	// switchSatpFn is used by tests to instrument page-table switches.
	switchSatpFn = cpu.SwitchSatp
)
