// Package kmain brings the kernel up: it wires the firmware, memory,
// task, trap, system call and timer subsystems together in dependency
// order and starts the first process.
package kmain

import (
	"rvos/kernel"
	"rvos/kernel/cpu"
	"rvos/kernel/kfmt"
	"rvos/kernel/mm"
	"rvos/kernel/mm/pmm"
	"rvos/kernel/mm/vmm"
	"rvos/kernel/sbi"
	"rvos/kernel/syscall"
	"rvos/kernel/task"
	"rvos/kernel/timer"
	"rvos/kernel/trap"
)

// Init boots the kernel core. fw is the firmware providing console and
// timer services, physWindow the physical memory handed to the frame
// allocator and layout the placement of the kernel image regions. The
// order is fixed: the console may buffer until the firmware is up, frame
// allocation must precede any page-table work, and interrupts are enabled
// only once every handler is registered.
func Init(fw sbi.Firmware, physWindow []byte, layout vmm.KernelLayout) *kernel.Error {
	sbi.Register(fw)
	kfmt.SetOutputSink(sbi.ConsoleWriter())

	if err := mm.Init(physWindow); err != nil {
		return err
	}
	if err := pmm.Init(mm.FirstFrame(), mm.LastFrame()); err != nil {
		return err
	}
	if err := vmm.Init(layout); err != nil {
		return err
	}

	task.Init()
	syscall.Init()

	trap.HandlePageFault(func(virtAddr uintptr, access vmm.FaultAccess) *kernel.Error {
		p := task.CurrentProcess()
		if p == nil || p.Space() == nil {
			return vmm.ErrSegmentation
		}
		return p.Space().HandleFault(virtAddr, access)
	})
	trap.HandleKill(task.ExitProcess)
	trap.HandleTimer(func() {
		timer.Tick()
		task.TimerTick()
	})

	timer.Init()

	cpu.EnableTimerInterrupts()
	cpu.EnableInterrupts()

	kfmt.Printf("rvos: %d frames available\n", mm.FramesTotal())
	return nil
}

// Start creates the root process from img and switches to its address
// space; the machine layer then drops into user mode at the saved trap
// context.
func Start(img *vmm.Image) (task.Pid, *kernel.Error) {
	pid, err := task.CreateProcess(img)
	if err != nil {
		return task.NoPid, err
	}

	task.Schedule()
	return pid, nil
}
