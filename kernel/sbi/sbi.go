// Package sbi defines the call surface to the machine-mode firmware. The
// kernel treats the firmware as an opaque external service for early console
// I/O, timer programming and shutdown; a host-backed implementation stands in
// for it when the kernel core runs hosted.
package sbi

import "io"

// Firmware describes the fixed set of privileged calls the kernel may issue.
type Firmware interface {
	// ConsolePutChar writes a byte to the firmware console.
	ConsolePutChar(c byte)

	// ConsoleGetChar returns the next pending console byte or -1 when no
	// input is pending.
	ConsoleGetChar() int

	// SetTimer programs the next timer event in absolute ticks.
	SetTimer(ticks uint64)

	// Shutdown powers off the machine. It never returns control to the
	// kernel.
	Shutdown(failure bool)
}

var active Firmware

// Register installs the firmware implementation. It must be called before
// any other function in this package.
func Register(fw Firmware) {
	active = fw
}

// ConsolePutChar writes a byte to the firmware console.
func ConsolePutChar(c byte) { active.ConsolePutChar(c) }

// ConsoleGetChar returns the next pending console byte or -1.
func ConsoleGetChar() int { return active.ConsoleGetChar() }

// SetTimer programs the next timer event.
func SetTimer(ticks uint64) { active.SetTimer(ticks) }

// Shutdown powers off the machine.
func Shutdown(failure bool) { active.Shutdown(failure) }

// consoleWriter adapts the firmware console to io.Writer so it can be
// registered as the kfmt output sink.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		active.ConsolePutChar(b)
	}
	return len(p), nil
}

// ConsoleWriter returns an io.Writer backed by the firmware console.
func ConsoleWriter() io.Writer {
	return consoleWriter{}
}
