package sync

// WaitQueue is a FIFO of blocked task ids. Tasks are woken in the exact
// order they began waiting.
type WaitQueue struct {
	waiters []TaskID
}

// Wait appends the current task to the queue and marks it blocked; the
// task resumes once a matching WakeOne or WakeAll releases it. Interrupts
// must already be disabled by the caller; the queue itself performs no
// locking.
func (q *WaitQueue) Wait() {
	q.push(sched.Current())
	sched.Block()
}

// push enqueues id without blocking it. Used when a task is moved between
// queues while already blocked.
func (q *WaitQueue) push(id TaskID) {
	q.waiters = append(q.waiters, id)
}

// WakeOne removes and wakes the longest-waiting task. It reports whether a
// task was woken, and which one.
func (q *WaitQueue) WakeOne() (TaskID, bool) {
	if len(q.waiters) == 0 {
		return NoTask, false
	}

	id := q.waiters[0]
	q.waiters = q.waiters[1:]
	sched.Wake(id)
	return id, true
}

// WakeAll wakes every waiting task in FIFO order and returns the number of
// tasks woken.
func (q *WaitQueue) WakeAll() int {
	woken := len(q.waiters)
	for _, id := range q.waiters {
		sched.Wake(id)
	}
	q.waiters = q.waiters[:0]
	return woken
}

// Remove deletes id from the queue without waking it. It is used when a
// waiting task is torn down before it can be woken.
func (q *WaitQueue) Remove(id TaskID) {
	for i, waiter := range q.waiters {
		if waiter == id {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return
		}
	}
}

// Len returns the number of tasks currently waiting.
func (q *WaitQueue) Len() int { return len(q.waiters) }
