package sync

// condWaiter records a task blocked on a condition variable together with
// the mutex it must re-own before resuming.
type condWaiter struct {
	id TaskID
	m  *Mutex
}

// Condvar is a condition variable used together with a Mutex. Wakeups use
// wait morphing: a signalled task is not made runnable while its mutex is
// held by someone else; instead it is moved onto the mutex wait queue and
// resumes, as holder, only when the mutex is handed to it. Waiters must
// still re-check their predicate after Wait returns.
type Condvar struct {
	waiters []condWaiter
}

// NewCondvar returns an empty condition variable.
func NewCondvar() *Condvar {
	return &Condvar{}
}

// Wait atomically releases m and blocks the calling task. When the task
// resumes it owns m again.
func (c *Condvar) Wait(m *Mutex) {
	restore := critical()
	defer restore()

	c.waiters = append(c.waiters, condWaiter{id: sched.Current(), m: m})
	m.releaseLocked()
	sched.Block()
}

// Signal wakes the longest-waiting task, if any.
func (c *Condvar) Signal() {
	restore := critical()
	defer restore()

	if len(c.waiters) == 0 {
		return
	}

	w := c.waiters[0]
	c.waiters = c.waiters[1:]
	w.resume()
}

// Broadcast wakes every waiting task in FIFO order.
func (c *Condvar) Broadcast() {
	restore := critical()
	defer restore()

	for _, w := range c.waiters {
		w.resume()
	}
	c.waiters = c.waiters[:0]
}

// resume transfers the waiter back onto its mutex. If the mutex is free
// the waiter becomes its holder and runs; otherwise it stays blocked on
// the mutex wait queue until the handoff reaches it.
func (w condWaiter) resume() {
	if w.m.locked {
		w.m.waiters.push(w.id)
		return
	}

	w.m.locked = true
	w.m.holder = w.id
	sched.Wake(w.id)
}

// removeWaiter drops id from the condition variable without waking it.
func (c *Condvar) removeWaiter(id TaskID) {
	for i, w := range c.waiters {
		if w.id == id {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// Len returns the number of tasks currently waiting.
func (c *Condvar) Len() int { return len(c.waiters) }
