// SPDX-License-Identifier: Unlicense OR MIT

// Package kernel implements the kernel collaborators of the monitor:
// the physical page allocator and the kernel image layout.
package kernel

// kernError is an error type usable in kernel code.
type kernError string

const (
	// ErrNoMem is returned by Alloc when no free page is left.
	ErrNoMem = kernError("alloc: out of memory")
	// ErrRefUnderflow is returned when a page with no references
	// is dereferenced.
	ErrRefUnderflow = kernError("decref: page has no references")
	// ErrPageInUse is returned when freeing a referenced page.
	ErrPageInUse = kernError("free: page is still referenced")
	// ErrDoubleFree is returned when freeing a page that is free.
	ErrDoubleFree = kernError("free: page is already free")
)

func (k kernError) Error() string {
	return string(k)
}
