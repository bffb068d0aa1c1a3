package main

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

// cAllocator hands out buffers from the C heap so the host may keep the
// pointers across calls without pinning Go memory.
type cAllocator struct{}

func (cAllocator) Alloc(s string) unsafe.Pointer {
	return unsafe.Pointer(C.CString(s))
}

func (cAllocator) Free(p unsafe.Pointer) {
	C.free(p)
}
