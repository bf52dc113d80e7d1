package kfmt

import "io"

// ringBufferSize defines the size of the early output ring buffer. It must
// always be a power of 2.
const ringBufferSize = 2048

// ringBuffer stores Printf output produced before the firmware console is
// registered. Writes that overtake the read index overwrite the oldest data.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
	full           bool
}

// Write writes len(p) bytes from p to the ring buffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.full {
			rb.rIndex = rb.wIndex
		}
		if rb.wIndex == rb.rIndex {
			rb.full = true
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p, returning io.EOF once the buffer has
// been fully drained.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex && !rb.full {
		return 0, io.EOF
	}

	var n int
	for n < len(p) {
		p[n] = rb.buffer[rb.rIndex]
		n++
		rb.full = false
		rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			break
		}
	}

	return n, nil
}
