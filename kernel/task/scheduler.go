package task

import (
	"rvos/kernel/cpu"
	"rvos/kernel/mm/vmm"
)

// Policy selects the scheduling discipline.
type Policy uint8

const (
	// PolicyFIFO runs the ready queue strictly first-in first-out; every
	// timer interrupt preempts the running task to the tail.
	PolicyFIFO Policy = iota
	// PolicyRoundRobin uses the same queue discipline but grants each
	// dispatch a fixed time slice; only an expired slice preempts.
	PolicyRoundRobin
)

// DefaultTimeSlice is the round-robin slice length in timer ticks.
const DefaultTimeSlice = 5

var (
	readyQueue []Tid
	currentTid = NoTid

	policy     = PolicyFIFO
	sliceTicks = uint32(DefaultTimeSlice)
)

// SetPolicy selects the scheduling discipline and, for round-robin, the
// time-slice length in ticks.
func SetPolicy(p Policy, slice uint32) {
	policy = p
	if slice > 0 {
		sliceTicks = slice
	}
}

// CurrentTid returns the id of the running thread, or NoTid when the hart
// is idle.
func CurrentTid() Tid { return currentTid }

// Current returns the running thread's TCB, or nil when idle.
func Current() *TCB {
	if currentTid == NoTid {
		return nil
	}
	return threads[currentTid]
}

// CurrentProcess returns the process owning the running thread, or nil
// when idle.
func CurrentProcess() *PCB {
	t := Current()
	if t == nil {
		return nil
	}
	return procs[t.proc]
}

// ReadyCount returns the number of threads in the ready queue.
func ReadyCount() int { return len(readyQueue) }

// enqueue marks t ready and appends it to the ready queue tail.
func enqueue(t *TCB) {
	t.status = StatusReady
	readyQueue = append(readyQueue, t.tid)
}

// dequeue removes tid from the ready queue, wherever it sits.
func dequeue(tid Tid) {
	for i, queued := range readyQueue {
		if queued == tid {
			readyQueue = append(readyQueue[:i], readyQueue[i+1:]...)
			return
		}
	}
}

// schedule pops the ready queue head and makes it the running thread,
// activating its process address space. With an empty queue the hart goes
// idle on the kernel address space. Interrupts must be disabled by the
// caller.
func schedule() {
	for len(readyQueue) > 0 {
		tid := readyQueue[0]
		readyQueue = readyQueue[1:]

		t := threads[tid]
		if t == nil || t.status != StatusReady {
			continue
		}

		t.status = StatusRunning
		t.sliceLeft = sliceTicks
		currentTid = tid
		procs[t.proc].space.Activate()
		return
	}

	currentTid = NoTid
	vmm.KernelSpace().Activate()
}

// Schedule dispatches the next ready thread when the hart is idle. It is
// the entry point used once the first process has been created.
func Schedule() {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	if currentTid != NoTid {
		return
	}
	schedule()
}

// Yield moves the running thread to the ready queue tail and schedules
// the next one.
func Yield() {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	cur := Current()
	if cur == nil {
		return
	}

	enqueue(cur)
	schedule()
}

// Block suspends the running thread without queueing it anywhere; the
// caller must have recorded it on a wait queue first. The next ready
// thread is scheduled.
func Block() {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	cur := Current()
	if cur == nil {
		return
	}

	cur.status = StatusBlocked
	schedule()
}

// Wakeup makes a blocked thread ready again. Waking a thread in any other
// state is a no-op so stale wakeups cannot corrupt the queue.
func Wakeup(tid Tid) {
	wasEnabled := cpu.IntrOff()
	defer cpu.IntrRestore(wasEnabled)

	t := threads[tid]
	if t == nil || t.status != StatusBlocked {
		return
	}
	enqueue(t)
}

// TimerTick applies the scheduling policy on a timer interrupt: FIFO
// preempts unconditionally, round-robin only once the running thread's
// slice is used up.
func TimerTick() {
	cur := Current()
	if cur == nil {
		return
	}

	if policy == PolicyRoundRobin {
		if cur.sliceLeft > 0 {
			cur.sliceLeft--
		}
		if cur.sliceLeft > 0 {
			return
		}
	}

	Yield()
}
