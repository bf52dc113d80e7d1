package fs

import (
	"rvos/kernel"
	"rvos/kernel/sbi"
)

var (
	errStdinWrite = &kernel.Error{Module: "fs", Message: "write on read-only stream"}
	errStdoutRead = &kernel.Error{Module: "fs", Message: "read on write-only stream"}

	// ErrWouldBlock reports that no data is available yet. The system
	// call layer reacts by yielding the calling task and retrying the
	// read once it is scheduled again.
	ErrWouldBlock = &kernel.Error{Module: "fs", Message: "operation would block"}
)

// Console standard streams shared by all processes.
var (
	Stdin  File = &stdin{}
	Stdout File = &stdout{}
)

type stdin struct{}

func (*stdin) Readable() bool { return true }
func (*stdin) Writable() bool { return false }

// Read returns one byte of console input per call, or ErrWouldBlock when
// none is pending.
func (*stdin) Read(p []byte) (int, *kernel.Error) {
	if len(p) == 0 {
		return 0, nil
	}

	ch := sbi.ConsoleGetChar()
	if ch < 0 {
		return 0, ErrWouldBlock
	}

	p[0] = byte(ch)
	return 1, nil
}

func (*stdin) Write(_ []byte) (int, *kernel.Error) { return 0, errStdinWrite }

type stdout struct{}

func (*stdout) Readable() bool { return false }
func (*stdout) Writable() bool { return true }

func (*stdout) Read(_ []byte) (int, *kernel.Error) { return 0, errStdoutRead }

func (*stdout) Write(p []byte) (int, *kernel.Error) {
	for _, b := range p {
		sbi.ConsolePutChar(b)
	}
	return len(p), nil
}
