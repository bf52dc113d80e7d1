package sync

// Table holds the synchronization primitives created by one process. The
// index assigned at creation time doubles as the id user code passes to
// the lock and unlock calls.
type Table struct {
	mutexes    []*Mutex
	semaphores []*Semaphore
	condvars   []*Condvar
}

// AddMutex creates a mutex and returns its id.
func (t *Table) AddMutex() int {
	t.mutexes = append(t.mutexes, NewMutex())
	return len(t.mutexes) - 1
}

// Mutex looks up a mutex by id.
func (t *Table) Mutex(id int) (*Mutex, bool) {
	if id < 0 || id >= len(t.mutexes) {
		return nil, false
	}
	return t.mutexes[id], true
}

// AddSemaphore creates a semaphore with the given permit count and returns
// its id.
func (t *Table) AddSemaphore(permits int64) int {
	t.semaphores = append(t.semaphores, NewSemaphore(permits))
	return len(t.semaphores) - 1
}

// Semaphore looks up a semaphore by id.
func (t *Table) Semaphore(id int) (*Semaphore, bool) {
	if id < 0 || id >= len(t.semaphores) {
		return nil, false
	}
	return t.semaphores[id], true
}

// AddCondvar creates a condition variable and returns its id.
func (t *Table) AddCondvar() int {
	t.condvars = append(t.condvars, NewCondvar())
	return len(t.condvars) - 1
}

// Condvar looks up a condition variable by id.
func (t *Table) Condvar(id int) (*Condvar, bool) {
	if id < 0 || id >= len(t.condvars) {
		return nil, false
	}
	return t.condvars[id], true
}

// ReleaseHeldBy force-releases every mutex held by id and removes id from
// all wait queues. It is invoked when a task exits so that surviving tasks
// are not wedged behind a dead owner. It returns the number of mutexes
// released.
func (t *Table) ReleaseHeldBy(id TaskID) int {
	released := 0
	for _, m := range t.mutexes {
		m.waiters.Remove(id)
		if m.forceRelease(id) {
			released++
		}
	}
	for _, s := range t.semaphores {
		s.waiters.Remove(id)
	}
	for _, c := range t.condvars {
		c.removeWaiter(id)
	}
	return released
}
