// SPDX-License-Identifier: Unlicense OR MIT

package kernel

import (
	"debug/elf"
	"errors"
	"fmt"
)

// Layout describes where the loader placed the kernel image. All
// addresses are virtual; subtracting KernBase gives the physical
// address.
type Layout struct {
	Start    uint64
	Entry    uint64
	Etext    uint64
	Edata    uint64
	End      uint64
	KernBase uint64
}

// ReadLayout reads the layout of the ELF executable at path.
func ReadLayout(path string) (Layout, error) {
	f, err := elf.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("layout: %w", err)
	}
	defer f.Close()
	return LayoutFromELF(f)
}

// LayoutFromELF computes the image layout from the loadable segments
// of f. Go binaries carry the exact boundaries as runtime symbols,
// which take precedence over the segment bounds.
func LayoutFromELF(f *elf.File) (Layout, error) {
	l := Layout{
		Start: ^uint64(0),
		Entry: f.Entry,
	}
	loads := 0
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		loads++
		if p.Vaddr < l.Start {
			l.Start = p.Vaddr
		}
		fileEnd := p.Vaddr + p.Filesz
		if p.Flags&elf.PF_X != 0 && fileEnd > l.Etext {
			l.Etext = fileEnd
		}
		if p.Flags&elf.PF_W != 0 && fileEnd > l.Edata {
			l.Edata = fileEnd
		}
		if end := p.Vaddr + p.Memsz; end > l.End {
			l.End = end
		}
	}
	if loads == 0 {
		return Layout{}, errors.New("layout: no loadable segments")
	}
	if l.Edata == 0 {
		l.Edata = l.Etext
	}
	// A stripped binary has no symbol table; keep the segment bounds.
	syms, _ := f.Symbols()
	for _, s := range syms {
		switch s.Name {
		case "runtime.etext":
			l.Etext = s.Value
		case "runtime.edata":
			l.Edata = s.Value
		case "runtime.end":
			l.End = s.Value
		}
	}
	return l, nil
}

// Footprint returns the size of the image from its entry point to its
// end, in KB rounded up.
func (l Layout) Footprint() uint64 {
	if l.End < l.Entry {
		return 0
	}
	return (l.End - l.Entry + 1023) / 1024
}

// Phys translates a kernel virtual address to its physical address.
func (l Layout) Phys(va uint64) uint64 {
	return va - l.KernBase
}
