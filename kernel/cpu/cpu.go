// Package cpu models the control and status registers of a single RV64
// hart. It is the only package that manipulates raw register state; every
// other subsystem works with the structured values it exposes.
package cpu

// Bits of the sstatus register defined by the privileged architecture.
const (
	SstatusSIE  = uint64(1 << 1) // supervisor interrupts enabled
	SstatusSPIE = uint64(1 << 5) // SIE prior to taking a trap
	SstatusSPP  = uint64(1 << 8) // privilege level prior to the trap; 0 = user
)

// Bits of the sie interrupt-enable register.
const (
	SieSSIE = uint64(1 << 1) // software interrupts
	SieSTIE = uint64(1 << 5) // timer interrupts
	SieSEIE = uint64(1 << 9) // external interrupts
)

// InterruptBit is set in scause when the trap was caused by an interrupt
// rather than an exception.
const InterruptBit = uint64(1) << 63

// registers holds the supervisor CSR state for the hart.
type registers struct {
	sstatus uint64
	sie     uint64
	sepc    uint64
	scause  uint64
	stval   uint64
	satp    uint64
}

var regs registers

// EnableInterrupts sets the supervisor interrupt-enable bit.
func EnableInterrupts() {
	regs.sstatus |= SstatusSIE
}

// DisableInterrupts clears the supervisor interrupt-enable bit.
func DisableInterrupts() {
	regs.sstatus &^= SstatusSIE
}

// IntrOff disables interrupts and reports whether they were previously
// enabled so the caller can pair it with IntrRestore. Critical sections over
// kernel singletons bracket themselves with this pair.
func IntrOff() bool {
	enabled := regs.sstatus&SstatusSIE != 0
	regs.sstatus &^= SstatusSIE
	return enabled
}

// IntrRestore restores the interrupt-enable state captured by IntrOff.
func IntrRestore(wasEnabled bool) {
	if wasEnabled {
		regs.sstatus |= SstatusSIE
	}
}

// InterruptsEnabled reports whether supervisor interrupts are enabled.
func InterruptsEnabled() bool {
	return regs.sstatus&SstatusSIE != 0
}

// EnableTimerInterrupts sets the supervisor timer bit in sie.
func EnableTimerInterrupts() {
	regs.sie |= SieSTIE
}

// Sstatus returns the current sstatus value.
func Sstatus() uint64 { return regs.sstatus }

// SetSstatus overwrites sstatus. Used when restoring a trap context.
func SetSstatus(v uint64) { regs.sstatus = v }

// Sepc returns the exception program counter.
func Sepc() uint64 { return regs.sepc }

// SetSepc sets the exception program counter.
func SetSepc(v uint64) { regs.sepc = v }

// Scause returns the cause register for the most recent trap.
func Scause() uint64 { return regs.scause }

// SetScause records a trap cause. Called by the low-level trap entry.
func SetScause(v uint64) { regs.scause = v }

// Stval returns the trap value register (the faulting address for page
// faults).
func Stval() uint64 { return regs.stval }

// SetStval records a trap value. Called by the low-level trap entry.
func SetStval(v uint64) { regs.stval = v }

// Satp returns the active address-translation token.
func Satp() uint64 { return regs.satp }

// SwitchSatp points address translation at a new page-table root and flushes
// the translation caches for the changed mapping.
func SwitchSatp(token uint64) {
	regs.satp = token
	FlushTLB()
}

// FlushTLB invalidates all cached address translations. The modeled hart
// walks the live tables on every translation, so there is no cache to
// invalidate; the call is kept as the single point where an sfence.vma would
// be issued.
func FlushTLB() {}

// Halt stops instruction execution on the hart. It never returns.
func Halt() {
	panic("cpu: halted")
}
