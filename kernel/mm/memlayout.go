package mm

// Physical memory layout of the qemu riscv virt machine. The device regions
// are configuration constants consumed by the driver layer; this core only
// identity-maps them into the kernel address space.
//
// 00001000 -- boot ROM, provided by qemu
// 02000000 -- CLINT
// 0c000000 -- PLIC
// 10000000 -- uart0
// 10001000 -- virtio disk
// 80000000 -- boot ROM jumps here in machine mode; the kernel is loaded here

const (
	// UART0 is the MMIO base of the console UART.
	UART0 = uintptr(0x10000000)

	// UART0IRQ is the PLIC interrupt line of the UART.
	UART0IRQ = 10

	// VirtIO0 is the MMIO base of the virtio disk interface.
	VirtIO0 = uintptr(0x10001000)

	// VirtIO0IRQ is the PLIC interrupt line of the virtio disk.
	VirtIO0IRQ = 1

	// CLINT is the base of the core-local interruptor holding the timer
	// compare registers.
	CLINT = uintptr(0x2000000)

	// PLIC is the base of the platform-level interrupt controller.
	PLIC = uintptr(0x0c000000)

	// PLICSize is the span of the PLIC register window.
	PLICSize = uintptr(0x400000)

	// KernBase is the physical address the kernel image is loaded at.
	KernBase = uintptr(0x80000000)

	// MemoryEnd is the exclusive upper bound of the RAM the kernel
	// manages.
	MemoryEnd = KernBase + 128*1024*1024
)
