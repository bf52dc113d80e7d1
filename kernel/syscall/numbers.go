package syscall

// System call numbers. The base set follows the RISC-V Linux numbering so
// user runtimes can share constants; the 1000+ range covers the thread
// and synchronization calls that have no Linux equivalent here.
const (
	SysRead    = 63
	SysWrite   = 64
	SysExit    = 93
	SysSleep   = 101
	SysYield   = 124
	SysKill    = 129
	SysGetTime = 169
	SysGetPid  = 172
	SysFork    = 220
	SysExec    = 221
	SysWaitPid = 260

	SysThreadCreate = 1000
	SysGetTid       = 1001
	SysWaitTid      = 1002

	SysMutexCreate = 1010
	SysMutexLock   = 1011
	SysMutexUnlock = 1012

	SysSemaphoreCreate = 1020
	SysSemaphoreUp     = 1021
	SysSemaphoreDown   = 1022

	SysCondvarCreate = 1030
	SysCondvarSignal = 1031
	SysCondvarWait   = 1032
)
