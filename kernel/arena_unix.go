// SPDX-License-Identifier: Unlicense OR MIT

//go:build unix

package kernel

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Arena is page aligned memory standing in for physical RAM.
type Arena struct {
	mem []byte
}

// NewArena maps npages of anonymous memory.
func NewArena(npages int) (*Arena, error) {
	if npages <= 0 {
		return nil, fmt.Errorf("arena: invalid page count %d", npages)
	}
	mem, err := unix.Mmap(-1, 0, npages*PageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap: %w", err)
	}
	return &Arena{mem: mem}, nil
}

func (a *Arena) Bytes() []byte {
	return a.mem
}

// Close unmaps the arena. The pages must not be used afterwards.
func (a *Arena) Close() error {
	if a.mem == nil {
		return nil
	}
	err := unix.Munmap(a.mem)
	a.mem = nil
	if err != nil {
		return fmt.Errorf("arena: munmap: %w", err)
	}
	return nil
}
