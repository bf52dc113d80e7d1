package sync

// Mutex is a blocking, non-reentrant mutual exclusion lock. Release hands
// ownership directly to the longest-waiting task instead of unlocking and
// letting waiters race: the woken task resumes as the holder without
// re-checking the lock state. A task that acquires a mutex it already
// holds joins its own wait queue and deadlocks, matching the non-reentrant
// contract.
type Mutex struct {
	locked  bool
	holder  TaskID
	waiters WaitQueue
}

// NewMutex returns an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{holder: NoTask}
}

// Acquire blocks the calling task until it owns the mutex.
func (m *Mutex) Acquire() {
	restore := critical()

	if !m.locked {
		m.locked = true
		m.holder = sched.Current()
		restore()
		return
	}

	// Ownership is transferred before the wakeup, so the task already
	// owns the lock when it resumes.
	m.waiters.Wait()
	restore()
}

// Release passes the mutex to the longest-waiting task, or unlocks it if
// no task is waiting. Calling Release on a mutex the task does not hold is
// a no-op.
func (m *Mutex) Release() {
	restore := critical()
	defer restore()

	if !m.locked || m.holder != sched.Current() {
		return
	}
	m.releaseLocked()
}

// releaseLocked performs the handoff. Interrupts must be disabled.
func (m *Mutex) releaseLocked() {
	if next, ok := m.waiters.WakeOne(); ok {
		m.holder = next
		return
	}

	m.locked = false
	m.holder = NoTask
}

// forceRelease releases the mutex on behalf of id, used when the holder
// exits without unlocking. It reports whether id held the mutex.
func (m *Mutex) forceRelease(id TaskID) bool {
	restore := critical()
	defer restore()

	if !m.locked || m.holder != id {
		return false
	}
	m.releaseLocked()
	return true
}

// Holder returns the current owner, or NoTask when unlocked.
func (m *Mutex) Holder() TaskID {
	if !m.locked {
		return NoTask
	}
	return m.holder
}

// Locked reports whether the mutex is currently held.
func (m *Mutex) Locked() bool { return m.locked }
