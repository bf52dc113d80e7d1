package trap

import "rvos/kernel/cpu"

// Cause identifies the reason a trap was taken, decoded from the scause
// register.
type Cause uint8

const (
	// CauseUnknown covers scause values this kernel does not handle.
	CauseUnknown Cause = iota
	// CauseSyscall is an environment call from user mode.
	CauseSyscall
	// CauseIllegalInstruction covers illegal instruction exceptions.
	CauseIllegalInstruction
	// CauseInstructionFault is an instruction page fault.
	CauseInstructionFault
	// CauseLoadFault is a load page fault.
	CauseLoadFault
	// CauseStoreFault is a store/AMO page fault or access fault.
	CauseStoreFault
	// CauseTimer is a supervisor timer interrupt.
	CauseTimer
)

// scause exception codes (interrupt bit clear).
const (
	scauseIllegalInstruction = 2
	scauseStoreAccessFault   = 7
	scauseEcallFromU         = 8
	scauseInstructionFault   = 12
	scauseLoadFault          = 13
	scauseStoreFault         = 15
)

// scause interrupt codes (interrupt bit set).
const scauseSupervisorTimer = 5

// DecodeCause classifies a raw scause register value.
func DecodeCause(scause uint64) Cause {
	if scause&cpu.InterruptBit != 0 {
		if scause&^cpu.InterruptBit == scauseSupervisorTimer {
			return CauseTimer
		}
		return CauseUnknown
	}

	switch scause {
	case scauseEcallFromU:
		return CauseSyscall
	case scauseIllegalInstruction:
		return CauseIllegalInstruction
	case scauseInstructionFault:
		return CauseInstructionFault
	case scauseLoadFault:
		return CauseLoadFault
	case scauseStoreFault, scauseStoreAccessFault:
		return CauseStoreFault
	}

	return CauseUnknown
}

// String implements fmt.Stringer for diagnostics emitted on fatal traps.
func (c Cause) String() string {
	switch c {
	case CauseSyscall:
		return "environment call from U-mode"
	case CauseIllegalInstruction:
		return "illegal instruction"
	case CauseInstructionFault:
		return "instruction page fault"
	case CauseLoadFault:
		return "load page fault"
	case CauseStoreFault:
		return "store page fault"
	case CauseTimer:
		return "supervisor timer interrupt"
	}
	return "unknown trap"
}
