// SPDX-License-Identifier: Unlicense OR MIT

package symbol

import (
	"debug/elf"
	"debug/gosym"
	"errors"
	"fmt"
)

// Table resolves addresses from the Go line table of an ELF
// executable.
type Table struct {
	tab *gosym.Table
}

// Open reads the symbol table of the executable at path.
func Open(path string) (*Table, error) {
	exe, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	defer exe.Close()
	return NewTable(exe)
}

// NewTable reads the symbol table of exe.
func NewTable(exe *elf.File) (*Table, error) {
	text := exe.Section(".text")
	pcln := exe.Section(".gopclntab")
	if text == nil || pcln == nil {
		return nil, errors.New("symbol: no Go line table in executable")
	}
	lineTableData, err := pcln.Data()
	if err != nil {
		return nil, fmt.Errorf("symbol: reading .gopclntab: %w", err)
	}
	lineTable := gosym.NewLineTable(lineTableData, text.Addr)
	// Since Go 1.3 .gosymtab is empty or missing.
	var symTableData []byte
	if s := exe.Section(".gosymtab"); s != nil {
		symTableData, err = s.Data()
		if err != nil {
			return nil, fmt.Errorf("symbol: reading .gosymtab: %w", err)
		}
	}
	tab, err := gosym.NewTable(symTableData, lineTable)
	if err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	return &Table{tab: tab}, nil
}

func (t *Table) Symbolize(pc uint64) (Info, error) {
	file, line, fn := t.tab.PCToLine(pc)
	if fn == nil {
		return Info{}, noSymbol(pc)
	}
	return Info{
		File:     file,
		Line:     line,
		Function: fn.Name,
		Entry:    fn.Entry,
	}, nil
}

// LookupFunc returns the entry address of the named function.
func (t *Table) LookupFunc(name string) (uint64, bool) {
	fn := t.tab.LookupFunc(name)
	if fn == nil {
		return 0, false
	}
	return fn.Entry, true
}
