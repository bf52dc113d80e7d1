package syscall

import "rvos/kernel/task"

// sysSync handles the synchronization primitive calls. Creation calls
// return the new primitive's id within the process; the remaining calls
// take that id in args[0]. Lock, down and wait may block the caller; it
// resumes holding the lock (or permit) with 0 in a0.
func sysSync(num uint64, args [3]uint64) uint64 {
	table := task.CurrentProcess().Sync()

	switch num {
	case SysMutexCreate:
		return uint64(table.AddMutex())
	case SysMutexLock:
		m, ok := table.Mutex(int(args[0]))
		if !ok {
			return retErr
		}
		m.Acquire()
	case SysMutexUnlock:
		m, ok := table.Mutex(int(args[0]))
		if !ok {
			return retErr
		}
		m.Release()
	case SysSemaphoreCreate:
		return uint64(table.AddSemaphore(int64(args[0])))
	case SysSemaphoreUp:
		s, ok := table.Semaphore(int(args[0]))
		if !ok {
			return retErr
		}
		s.Up()
	case SysSemaphoreDown:
		s, ok := table.Semaphore(int(args[0]))
		if !ok {
			return retErr
		}
		s.Down()
	case SysCondvarCreate:
		return uint64(table.AddCondvar())
	case SysCondvarSignal:
		c, ok := table.Condvar(int(args[0]))
		if !ok {
			return retErr
		}
		c.Signal()
	case SysCondvarWait:
		c, ok := table.Condvar(int(args[0]))
		if !ok {
			return retErr
		}
		m, ok := table.Mutex(int(args[1]))
		if !ok {
			return retErr
		}
		c.Wait(m)
	}

	return 0
}
