package vmm

import (
	"rvos/kernel"
	"rvos/kernel/mm"
)

// Segment is one loadable region of a program image. MemSize may exceed
// len(Data); the remainder is zero-filled, which is how images describe
// their bss.
type Segment struct {
	Addr    uintptr
	MemSize uintptr
	Data    []byte
	Perm    Perm
}

// Image is an in-memory program image: the loader boundary hands the kernel
// one of these after parsing whatever container format the file system
// stores. Building address spaces from it is all this core does with it.
type Image struct {
	Entry    uintptr
	Segments []Segment
}

// NewUserSpace builds a fresh address space from a program image: one
// framed user-accessible area per segment, populated with the segment data.
// It returns the space and the base address for thread user stacks, which
// starts one guard page above the highest segment.
func NewUserSpace(img *Image) (*AddressSpace, uintptr, *kernel.Error) {
	as, err := NewAddressSpace()
	if err != nil {
		return nil, 0, err
	}

	var maxEnd mm.Page
	for _, seg := range img.Segments {
		end := seg.Addr + seg.MemSize
		if err := as.InsertAreaWithData(seg.Addr, end, MapFramed, seg.Perm|PermUser, seg.Data); err != nil {
			as.Release()
			return nil, 0, err
		}

		if endPage := mm.PageFromAddress(end + mm.PageSize - 1); endPage > maxEnd {
			maxEnd = endPage
		}
	}

	// Guard page between the image and the first thread stack.
	stackBase := maxEnd.Address() + mm.PageSize
	return as, stackBase, nil
}
