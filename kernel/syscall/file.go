package syscall

import (
	"rvos/kernel/fs"
	"rvos/kernel/task"
	"rvos/kernel/trap"
)

// maxIOChunk caps the kernel buffer used to shuttle bytes between user
// space and a file in one call.
const maxIOChunk = 4096

// sysRead reads up to args[2] bytes from descriptor args[0] into the user
// buffer at args[1]. A descriptor with no pending data yields the task
// and restarts the call.
func sysRead(ctx *trap.Context, args [3]uint64) uint64 {
	p := task.CurrentProcess()
	f := p.File(int(args[0]))
	if f == nil || !f.Readable() {
		return retErr
	}

	size := args[2]
	if size > maxIOChunk {
		size = maxIOChunk
	}

	buf := make([]byte, size)
	n, err := f.Read(buf)
	if err == fs.ErrWouldBlock {
		task.Yield()
		return restart(ctx, args)
	}
	if err != nil {
		return retErr
	}

	if err := p.Space().CopyToUser(uintptr(args[1]), buf[:n]); err != nil {
		return retBadAddress
	}
	return uint64(n)
}

// sysWrite writes args[2] bytes from the user buffer at args[1] to
// descriptor args[0].
func sysWrite(args [3]uint64) uint64 {
	p := task.CurrentProcess()
	f := p.File(int(args[0]))
	if f == nil || !f.Writable() {
		return retErr
	}

	remaining := args[2]
	virtAddr := uintptr(args[1])
	written := uint64(0)

	buf := make([]byte, maxIOChunk)
	for remaining > 0 {
		chunk := remaining
		if chunk > maxIOChunk {
			chunk = maxIOChunk
		}

		if err := p.Space().CopyFromUser(virtAddr, buf[:chunk]); err != nil {
			return retBadAddress
		}

		n, err := f.Write(buf[:chunk])
		written += uint64(n)
		if err != nil {
			return retErr
		}

		virtAddr += uintptr(chunk)
		remaining -= chunk
	}

	return written
}
