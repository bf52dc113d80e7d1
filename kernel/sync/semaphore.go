package sync

// Semaphore is a counting semaphore. The count may go negative: its
// absolute value is then the number of blocked tasks.
type Semaphore struct {
	count   int64
	waiters WaitQueue
}

// NewSemaphore returns a semaphore with the given initial number of
// permits.
func NewSemaphore(permits int64) *Semaphore {
	return &Semaphore{count: permits}
}

// Down takes a permit, blocking the calling task when none is available.
func (s *Semaphore) Down() {
	restore := critical()

	s.count--
	if s.count < 0 {
		s.waiters.Wait()
	}

	restore()
}

// Up returns a permit, waking the longest-blocked task if any.
func (s *Semaphore) Up() {
	restore := critical()
	defer restore()

	s.count++
	if s.count <= 0 {
		s.waiters.WakeOne()
	}
}

// Count returns the current permit count; a negative value counts blocked
// tasks.
func (s *Semaphore) Count() int64 { return s.count }
