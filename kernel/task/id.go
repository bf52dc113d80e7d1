package task

import (
	"rvos/kernel"
	"rvos/kernel/kfmt"
)

var (
	errFreeUnallocatedID = &kernel.Error{Module: "task", Message: "attempt to free an id that was never allocated"}
	errDoubleFreeID      = &kernel.Error{Module: "task", Message: "attempt to free an already freed id"}
)

// RecycleAllocator hands out dense uint32 ids and reuses freed ones before
// extending the range. Freeing an id that is not currently allocated is a
// bug in the caller and panics.
type RecycleAllocator struct {
	next     uint32
	recycled []uint32
}

// Alloc returns the next free id, preferring recycled ones.
func (a *RecycleAllocator) Alloc() uint32 {
	if last := len(a.recycled) - 1; last >= 0 {
		id := a.recycled[last]
		a.recycled = a.recycled[:last]
		return id
	}

	id := a.next
	a.next++
	return id
}

// Free returns id to the allocator.
func (a *RecycleAllocator) Free(id uint32) {
	if id >= a.next {
		kfmt.Panic(errFreeUnallocatedID)
	}

	for _, freed := range a.recycled {
		if freed == id {
			kfmt.Panic(errDoubleFreeID)
		}
	}

	a.recycled = append(a.recycled, id)
}

// InUse returns the number of ids currently allocated.
func (a *RecycleAllocator) InUse() int {
	return int(a.next) - len(a.recycled)
}
