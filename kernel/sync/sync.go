// Package sync provides the blocking synchronization primitives exposed to
// user tasks: mutexes with direct ownership handoff, counting semaphores
// and condition variables. The primitives do not know about the scheduler
// directly; the task layer injects the block and wakeup operations at boot.
package sync

import "rvos/kernel/cpu"

// TaskID identifies a schedulable task to the injected scheduler hooks.
type TaskID uint32

// NoTask is the zero value reported when no task is involved.
const NoTask = TaskID(0xffffffff)

// SchedulerHooks supplies the scheduler operations the primitives are
// built on. Block marks the current task blocked and selects the next
// runnable one; the blocked task is resumed, at its saved trap context,
// once another task passes its id to Wake.
type SchedulerHooks struct {
	Current func() TaskID
	Block   func()
	Wake    func(TaskID)
}

var sched SchedulerHooks

// SetSchedulerHooks wires the primitives to the scheduler. It must be
// called before any primitive is used.
func SetSchedulerHooks(h SchedulerHooks) { sched = h }

// critical disables interrupts for the duration of a primitive's state
// update and returns the function that restores the previous state.
func critical() func() {
	wasEnabled := cpu.IntrOff()
	return func() { cpu.IntrRestore(wasEnabled) }
}
