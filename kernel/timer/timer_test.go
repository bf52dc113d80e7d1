package timer

import (
	"testing"

	"rvos/kernel/mm"
	"rvos/kernel/mm/pmm"
	"rvos/kernel/mm/vmm"
	"rvos/kernel/sbi"
	"rvos/kernel/task"
)

// bootClock registers a host firmware and resets the clock.
func bootClock(t *testing.T) *sbi.HostFirmware {
	t.Helper()

	fw := sbi.NewHostFirmware(nil)
	sbi.Register(fw)
	Init()
	return fw
}

// bootTasks additionally brings up memory and the task table so sleepers
// can block and wake real threads.
func bootTasks(t *testing.T) *sbi.HostFirmware {
	t.Helper()

	fw := sbi.NewHostFirmware(nil)
	sbi.Register(fw)

	window := make([]byte, 2048*mm.PageSize)
	if err := mm.Init(window); err != nil {
		t.Fatalf("expected arena registration to succeed; got %v", err)
	}
	if err := pmm.Init(mm.FirstFrame(), mm.LastFrame()); err != nil {
		t.Fatalf("expected pmm init to succeed; got %v", err)
	}
	if err := vmm.Init(vmm.DefaultKernelLayout); err != nil {
		t.Fatalf("expected vmm init to succeed; got %v", err)
	}

	task.Init()
	task.SetPolicy(task.PolicyFIFO, task.DefaultTimeSlice)
	Init()
	return fw
}

func spawn(t *testing.T) task.Pid {
	t.Helper()

	img := &vmm.Image{
		Entry: 0x10000,
		Segments: []vmm.Segment{
			{Addr: 0x10000, MemSize: 2 * mm.PageSize, Data: []byte("text"), Perm: vmm.PermRead | vmm.PermExec},
		},
	}
	pid, err := task.CreateProcess(img)
	if err != nil {
		t.Fatalf("expected process creation to succeed; got %v", err)
	}
	return pid
}

func TestInitProgramsFirstTick(t *testing.T) {
	fw := bootClock(t)

	if Ticks() != 0 || TimeMs() != 0 {
		t.Fatalf("expected a zeroed clock; got %d ticks, %d ms", Ticks(), TimeMs())
	}
	if exp, got := uint64(cyclesPerTick), fw.NextTimerEvent; exp != got {
		t.Fatalf("expected the first trigger at %d cycles; got %d", exp, got)
	}
}

func TestTickAdvancesClockAndRearms(t *testing.T) {
	fw := bootClock(t)

	Tick()
	Tick()
	Tick()

	if exp, got := uint64(3), Ticks(); exp != got {
		t.Fatalf("expected %d ticks; got %d", exp, got)
	}
	if exp, got := uint64(3*msPerTick), TimeMs(); exp != got {
		t.Fatalf("expected %d ms; got %d", exp, got)
	}
	if exp, got := uint64(4*cyclesPerTick), fw.NextTimerEvent; exp != got {
		t.Fatalf("expected the next trigger at %d cycles; got %d", exp, got)
	}
}

func TestSleeperDeadlinesExpireInOrder(t *testing.T) {
	bootClock(t)

	// Tids that exist in no task table: waking them is a no-op, which
	// leaves just the deadline bookkeeping to observe.
	AddSleeper(task.Tid(101), 30)
	AddSleeper(task.Tid(102), 10)
	AddSleeper(task.Tid(103), 20)

	if exp, got := 3, SleepingCount(); exp != got {
		t.Fatalf("expected %d sleepers; got %d", exp, got)
	}

	for i, expected := range []int{2, 1, 0} {
		Tick()
		if got := SleepingCount(); expected != got {
			t.Fatalf("[tick %d] expected %d sleepers left; got %d", i+1, expected, got)
		}
	}
}

func TestTickWakesBlockedTasks(t *testing.T) {
	bootTasks(t)

	spawn(t)
	spawn(t)
	spawn(t)
	task.Schedule()

	// Park all three tasks; the second one to run has the earliest
	// deadline.
	first := task.CurrentTid()
	AddSleeper(first, 2*msPerTick)
	task.Block()

	second := task.CurrentTid()
	AddSleeper(second, msPerTick)
	task.Block()

	third := task.CurrentTid()
	AddSleeper(third, 2*msPerTick)
	task.Block()

	if task.CurrentTid() != task.NoTid {
		t.Fatal("expected an idle hart once every task sleeps")
	}
	if exp, got := 3, SleepingCount(); exp != got {
		t.Fatalf("expected %d sleepers; got %d", exp, got)
	}

	Tick()
	if exp, got := 1, task.ReadyCount(); exp != got {
		t.Fatalf("expected only the earliest deadline woken; got %d ready", got)
	}
	task.Schedule()
	if got := task.CurrentTid(); got != second {
		t.Fatalf("expected tid %d to run first; got %d", second, got)
	}

	Tick()
	if exp, got := 0, SleepingCount(); exp != got {
		t.Fatalf("expected all sleepers drained; got %d", got)
	}

	// Equal deadlines wake in registration order.
	task.Yield()
	if got := task.CurrentTid(); got != first {
		t.Fatalf("expected tid %d next; got %d", first, got)
	}
	task.Yield()
	if got := task.CurrentTid(); got != third {
		t.Fatalf("expected tid %d next; got %d", third, got)
	}
}

func TestStaleSleeperIsIgnored(t *testing.T) {
	bootTasks(t)

	AddSleeper(task.Tid(9999), msPerTick)
	Tick()

	if exp, got := 0, SleepingCount(); exp != got {
		t.Fatalf("expected the stale sleeper dropped; got %d", got)
	}
	if task.ReadyCount() != 0 {
		t.Fatal("expected no task woken for an unknown tid")
	}
}
