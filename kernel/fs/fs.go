// Package fs defines the file abstraction the system call layer reads and
// writes through, together with the console-backed standard streams every
// process starts with. The kernel core does not implement an on-disk file
// system; anything satisfying File can be installed into a process's
// descriptor table.
package fs

import "rvos/kernel"

// File is a byte stream a task can read from or write to via a file
// descriptor.
type File interface {
	// Read fills p and returns the number of bytes read. It may block the
	// calling task until data is available.
	Read(p []byte) (int, *kernel.Error)
	// Write consumes p and returns the number of bytes written.
	Write(p []byte) (int, *kernel.Error)
	// Readable reports whether Read is supported.
	Readable() bool
	// Writable reports whether Write is supported.
	Writable() bool
}

// Standard descriptor numbers.
const (
	FdStdin  = 0
	FdStdout = 1
	FdStderr = 2
)

// NewStdDescriptors returns the descriptor table a fresh process starts
// with: console input on fd 0 and console output on fds 1 and 2.
func NewStdDescriptors() []File {
	return []File{Stdin, Stdout, Stdout}
}
