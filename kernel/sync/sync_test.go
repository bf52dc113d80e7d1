package sync

import "testing"

// fakeSched drives the primitives from tests: the current task id is set
// explicitly, blocks are counted and wakeups recorded in order.
type fakeSched struct {
	current TaskID
	blocks  int
	woken   []TaskID
}

func installFakeSched(t *testing.T) *fakeSched {
	t.Helper()

	fake := &fakeSched{}
	SetSchedulerHooks(SchedulerHooks{
		Current: func() TaskID { return fake.current },
		Block:   func() { fake.blocks++ },
		Wake:    func(id TaskID) { fake.woken = append(fake.woken, id) },
	})
	t.Cleanup(func() { SetSchedulerHooks(SchedulerHooks{}) })
	return fake
}

func TestMutexHandoffFollowsFIFOOrder(t *testing.T) {
	fake := installFakeSched(t)
	m := NewMutex()

	fake.current = 1
	m.Acquire()
	if exp, got := TaskID(1), m.Holder(); exp != got {
		t.Fatalf("expected holder %d; got %d", exp, got)
	}

	fake.current = 2
	m.Acquire()
	fake.current = 3
	m.Acquire()
	if fake.blocks != 2 {
		t.Fatalf("expected 2 blocked acquirers; got %d", fake.blocks)
	}

	fake.current = 1
	m.Release()
	if exp, got := TaskID(2), m.Holder(); exp != got {
		t.Fatalf("expected ownership handed to %d; got %d", exp, got)
	}

	fake.current = 2
	m.Release()
	if exp, got := TaskID(3), m.Holder(); exp != got {
		t.Fatalf("expected ownership handed to %d; got %d", exp, got)
	}

	fake.current = 3
	m.Release()
	if m.Locked() {
		t.Fatal("expected the mutex to be free after the last release")
	}

	if exp := []TaskID{2, 3}; len(fake.woken) != 2 || fake.woken[0] != exp[0] || fake.woken[1] != exp[1] {
		t.Fatalf("expected wakeups in order %v; got %v", exp, fake.woken)
	}
}

func TestMutexSecondAcquireDeadlocks(t *testing.T) {
	fake := installFakeSched(t)
	m := NewMutex()

	fake.current = 1
	m.Acquire()

	// The mutex is not reentrant: a second acquire joins the wait queue
	// behind the holder and deadlocks the task.
	m.Acquire()

	if fake.blocks != 1 {
		t.Fatalf("expected the second acquire to block; got %d blocks", fake.blocks)
	}
	if len(fake.woken) != 0 {
		t.Fatalf("expected no wakeups; got %v", fake.woken)
	}
	if exp, got := TaskID(1), m.Holder(); exp != got {
		t.Fatalf("expected the holder to remain %d; got %d", exp, got)
	}
}

func TestMutexReleaseByNonHolderIsIgnored(t *testing.T) {
	fake := installFakeSched(t)
	m := NewMutex()

	fake.current = 1
	m.Acquire()

	fake.current = 2
	m.Release()

	if exp, got := TaskID(1), m.Holder(); exp != got {
		t.Fatalf("expected holder to remain %d; got %d", exp, got)
	}
}

func TestSemaphoreCountGoesNegative(t *testing.T) {
	fake := installFakeSched(t)
	s := NewSemaphore(0)

	fake.current = 1
	s.Down()
	fake.current = 2
	s.Down()

	if exp, got := int64(-2), s.Count(); exp != got {
		t.Fatalf("expected count %d; got %d", exp, got)
	}
	if fake.blocks != 2 {
		t.Fatalf("expected both downs to block; got %d blocks", fake.blocks)
	}

	fake.current = 3
	s.Up()
	s.Up()
	s.Up()

	if exp, got := int64(1), s.Count(); exp != got {
		t.Fatalf("expected count %d; got %d", exp, got)
	}
	if len(fake.woken) != 2 || fake.woken[0] != 1 || fake.woken[1] != 2 {
		t.Fatalf("expected tasks 1 and 2 woken in FIFO order; got %v", fake.woken)
	}

	// A permit is available, so the next down does not block.
	fake.current = 4
	s.Down()
	if fake.blocks != 2 {
		t.Fatalf("expected the down with a free permit not to block; got %d blocks", fake.blocks)
	}
}

func TestCondvarSignalMorphsOntoHeldMutex(t *testing.T) {
	fake := installFakeSched(t)
	m := NewMutex()
	c := NewCondvar()

	fake.current = 1
	m.Acquire()
	c.Wait(m)
	if m.Locked() {
		t.Fatal("expected wait to release the mutex")
	}
	if exp, got := 1, c.Len(); exp != got {
		t.Fatalf("expected %d condvar waiter; got %d", exp, got)
	}

	fake.current = 2
	m.Acquire()
	c.Signal()

	// Task 1 must not run while task 2 still holds the mutex; it moves
	// onto the mutex queue instead.
	if len(fake.woken) != 0 {
		t.Fatalf("expected no wakeup while the mutex is held; got %v", fake.woken)
	}
	if exp, got := 0, c.Len(); exp != got {
		t.Fatalf("expected the condvar queue to be drained; got %d waiters", got)
	}

	m.Release()
	if exp, got := TaskID(1), m.Holder(); exp != got {
		t.Fatalf("expected the mutex handed to the signalled task; got %d", got)
	}
	if len(fake.woken) != 1 || fake.woken[0] != 1 {
		t.Fatalf("expected task 1 woken by the handoff; got %v", fake.woken)
	}
}

func TestCondvarSignalWithFreeMutex(t *testing.T) {
	fake := installFakeSched(t)
	m := NewMutex()
	c := NewCondvar()

	fake.current = 1
	m.Acquire()
	c.Wait(m)

	fake.current = 2
	c.Signal()

	if exp, got := TaskID(1), m.Holder(); exp != got {
		t.Fatalf("expected the woken task to own the mutex; got %d", got)
	}
	if len(fake.woken) != 1 || fake.woken[0] != 1 {
		t.Fatalf("expected task 1 woken immediately; got %v", fake.woken)
	}
}

func TestCondvarBroadcast(t *testing.T) {
	fake := installFakeSched(t)
	m := NewMutex()
	c := NewCondvar()

	for id := TaskID(1); id <= 3; id++ {
		fake.current = id
		m.Acquire()
		c.Wait(m)
	}

	fake.current = 4
	c.Broadcast()

	// The first waiter gets the free mutex; the rest line up behind it.
	if len(fake.woken) != 1 || fake.woken[0] != 1 {
		t.Fatalf("expected only the first waiter woken; got %v", fake.woken)
	}
	if exp, got := 2, m.waiters.Len(); exp != got {
		t.Fatalf("expected %d waiters queued on the mutex; got %d", exp, got)
	}

	fake.current = 1
	m.Release()
	fake.current = 2
	m.Release()

	if exp := []TaskID{1, 2, 3}; len(fake.woken) != 3 || fake.woken[1] != exp[1] || fake.woken[2] != exp[2] {
		t.Fatalf("expected wakeups in FIFO order %v; got %v", exp, fake.woken)
	}
}

func TestWaitQueueFIFO(t *testing.T) {
	fake := installFakeSched(t)

	var q WaitQueue
	for id := TaskID(10); id < 14; id++ {
		fake.current = id
		q.Wait()
	}

	q.Remove(12)
	if exp, got := 3, q.Len(); exp != got {
		t.Fatalf("expected %d waiters after removal; got %d", exp, got)
	}

	for _, exp := range []TaskID{10, 11, 13} {
		id, ok := q.WakeOne()
		if !ok || id != exp {
			t.Fatalf("expected to wake %d; got %d (ok=%t)", exp, id, ok)
		}
	}
	if _, ok := q.WakeOne(); ok {
		t.Fatal("expected the queue to be empty")
	}
}

func TestTableReleaseHeldBy(t *testing.T) {
	fake := installFakeSched(t)

	var table Table
	mid := table.AddMutex()
	m, _ := table.Mutex(mid)

	fake.current = 1
	m.Acquire()
	fake.current = 2
	m.Acquire()

	// Task 1 exits while holding the mutex: the table hands the lock to
	// the next waiter instead of leaving it wedged.
	if released := table.ReleaseHeldBy(1); released != 1 {
		t.Fatalf("expected 1 released mutex; got %d", released)
	}
	if exp, got := TaskID(2), m.Holder(); exp != got {
		t.Fatalf("expected the waiter to inherit the mutex; got %d", got)
	}
}
