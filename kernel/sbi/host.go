package sbi

import "io"

// HostFirmware is a firmware implementation backed by the host environment.
// Console output goes to an io.Writer, the timer is a recorded value and
// shutdown is latched instead of powering anything off. The kernel bring-up
// path registers it when running hosted; tests use it directly.
type HostFirmware struct {
	console io.Writer
	input   []byte

	// NextTimerEvent holds the most recent SetTimer argument.
	NextTimerEvent uint64

	// ShutdownRequested and ShutdownFailure latch the Shutdown call.
	ShutdownRequested bool
	ShutdownFailure   bool
}

// NewHostFirmware returns a HostFirmware writing console output to w.
func NewHostFirmware(w io.Writer) *HostFirmware {
	return &HostFirmware{console: w}
}

// ConsolePutChar implements Firmware.
func (fw *HostFirmware) ConsolePutChar(c byte) {
	if fw.console != nil {
		fw.console.Write([]byte{c})
	}
}

// ConsoleGetChar implements Firmware.
func (fw *HostFirmware) ConsoleGetChar() int {
	if len(fw.input) == 0 {
		return -1
	}
	c := fw.input[0]
	fw.input = fw.input[1:]
	return int(c)
}

// QueueInput appends bytes that subsequent ConsoleGetChar calls will return.
func (fw *HostFirmware) QueueInput(p []byte) {
	fw.input = append(fw.input, p...)
}

// SetTimer implements Firmware.
func (fw *HostFirmware) SetTimer(ticks uint64) {
	fw.NextTimerEvent = ticks
}

// Shutdown implements Firmware.
func (fw *HostFirmware) Shutdown(failure bool) {
	fw.ShutdownRequested = true
	fw.ShutdownFailure = failure
}
