// SPDX-License-Identifier: Unlicense OR MIT

//go:build !unix

package kernel

import "fmt"

// Arena is page aligned memory standing in for physical RAM.
type Arena struct {
	mem []byte
}

// NewArena allocates npages of memory from the Go heap. Without mmap
// the memory is not guaranteed to be page aligned.
func NewArena(npages int) (*Arena, error) {
	if npages <= 0 {
		return nil, fmt.Errorf("arena: invalid page count %d", npages)
	}
	return &Arena{mem: make([]byte, npages*PageSize)}, nil
}

func (a *Arena) Bytes() []byte {
	return a.mem
}

func (a *Arena) Close() error {
	a.mem = nil
	return nil
}
