// Package kernel provides the error type shared by all kernel subsystems.
package kernel

// Error describes a kernel error. All kernel errors must be defined as global
// variables that are pointers to the Error structure. This requirement is
// necessary as the kernel may need to define errors before the memory
// allocation subsystem is available.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
