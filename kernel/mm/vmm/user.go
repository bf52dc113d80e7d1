package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

var (
	// ErrBadUserPointer is returned when a user-supplied pointer does not
	// resolve to user-accessible memory with the required permission.
	ErrBadUserPointer = &kernel.Error{Module: "vmm", Message: "user pointer outside accessible mappings"}

	// maxUserStringLen caps ReadUserString so an unterminated user
	// buffer cannot walk the whole address space.
	maxUserStringLen = 4096
)

// userFrame validates that virtAddr lies in a user-accessible area with the
// given permission and resolves its backing frame. Validation happens before
// any copy touches memory across the privilege boundary.
func (as *AddressSpace) userFrame(virtAddr uintptr, perm Perm) (mm.Frame, *kernel.Error) {
	area := as.AreaFor(virtAddr)
	if area == nil || area.perm&(perm|PermUser) != perm|PermUser {
		return mm.InvalidFrame, ErrBadUserPointer
	}

	frame, err := as.pt.TranslatePage(mm.PageFromAddress(virtAddr))
	if err != nil {
		return mm.InvalidFrame, ErrBadUserPointer
	}
	return frame, nil
}

// CopyFromUser copies len(buf) bytes from the user virtual address into buf,
// translating page by page.
func (as *AddressSpace) CopyFromUser(virtAddr uintptr, buf []byte) *kernel.Error {
	for copied := 0; copied < len(buf); {
		frame, err := as.userFrame(virtAddr, PermRead)
		if err != nil {
			return err
		}

		offset := mm.PageOffset(virtAddr)
		n := copy(buf[copied:], mm.FrameBytes(frame)[offset:])
		copied += n
		virtAddr += uintptr(n)
	}
	return nil
}

// CopyToUser copies buf to the user virtual address, translating page by
// page.
func (as *AddressSpace) CopyToUser(virtAddr uintptr, buf []byte) *kernel.Error {
	for copied := 0; copied < len(buf); {
		frame, err := as.userFrame(virtAddr, PermWrite)
		if err != nil {
			return err
		}

		offset := mm.PageOffset(virtAddr)
		n := copy(mm.FrameBytes(frame)[offset:], buf[copied:])
		copied += n
		virtAddr += uintptr(n)
	}
	return nil
}

// ReadUserString reads a NUL-terminated string starting at the user virtual
// address.
func (as *AddressSpace) ReadUserString(virtAddr uintptr) (string, *kernel.Error) {
	var out []byte

	for len(out) < maxUserStringLen {
		frame, err := as.userFrame(virtAddr, PermRead)
		if err != nil {
			return "", err
		}

		bytes := mm.FrameBytes(frame)[mm.PageOffset(virtAddr):]
		for _, b := range bytes {
			if b == 0 {
				return string(out), nil
			}
			out = append(out, b)
			if len(out) == maxUserStringLen {
				break
			}
		}
		virtAddr += uintptr(len(bytes))
	}

	return "", ErrBadUserPointer
}
