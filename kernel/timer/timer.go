// Package timer tracks kernel time in timer-interrupt ticks, programs the
// next tick through the firmware and wakes tasks whose sleep deadline has
// passed.
package timer

import (
	"rvos/kernel/sbi"
	"rvos/kernel/task"
)

// Timebase parameters for the QEMU virt machine: the mtime counter runs
// at ClockFreq increments per second and the kernel takes TicksPerSec
// timer interrupts per second.
const (
	ClockFreq   = 12500000
	TicksPerSec = 100

	msPerTick     = 1000 / TicksPerSec
	cyclesPerTick = ClockFreq / TicksPerSec
)

// sleeper records a task to wake once the kernel clock reaches its
// deadline.
type sleeper struct {
	deadlineMs uint64
	tid        task.Tid
}

var (
	ticks uint64

	// sleepers is kept sorted by ascending deadline.
	sleepers []sleeper
)

// Init resets the clock and programs the first tick.
func Init() {
	ticks = 0
	sleepers = nil
	setNextTrigger()
}

// Ticks returns the number of timer interrupts taken since Init.
func Ticks() uint64 { return ticks }

// TimeMs returns the kernel clock in milliseconds.
func TimeMs() uint64 { return ticks * msPerTick }

// setNextTrigger asks the firmware for an interrupt one tick from now.
func setNextTrigger() {
	sbi.SetTimer(ticks*cyclesPerTick + cyclesPerTick)
}

// Tick advances the kernel clock by one interrupt: due sleepers are woken
// in deadline order and the next tick is programmed. It is invoked from
// the trap path on every supervisor timer interrupt.
func Tick() {
	ticks++

	now := TimeMs()
	for len(sleepers) > 0 && sleepers[0].deadlineMs <= now {
		task.Wakeup(sleepers[0].tid)
		sleepers = sleepers[1:]
	}

	setNextTrigger()
}

// AddSleeper registers tid to be woken once the kernel clock reaches
// deadlineMs. The caller is expected to block the task afterwards.
func AddSleeper(tid task.Tid, deadlineMs uint64) {
	i := len(sleepers)
	for ; i > 0 && sleepers[i-1].deadlineMs > deadlineMs; i-- {
	}

	sleepers = append(sleepers, sleeper{})
	copy(sleepers[i+1:], sleepers[i:])
	sleepers[i] = sleeper{deadlineMs: deadlineMs, tid: tid}
}

// SleepingCount returns the number of registered sleepers.
func SleepingCount() int { return len(sleepers) }
