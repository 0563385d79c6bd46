// SPDX-License-Identifier: Unlicense OR MIT

// Package symbol maps instruction addresses to functions and source
// lines.
package symbol

import (
	"errors"
	"fmt"
)

// ErrNoSymbol is returned when an address has no debug information.
var ErrNoSymbol = errors.New("symbol: no symbol for address")

// Info is the debug information for one instruction address. A new
// Info is returned by every lookup.
type Info struct {
	File     string
	Line     int
	Function string
	// Entry is the address of the first instruction of Function.
	Entry uint64
}

// Offset returns the distance of pc from the function entry.
func (i Info) Offset(pc uint64) uint64 {
	if pc < i.Entry {
		return 0
	}
	return pc - i.Entry
}

func (i Info) String() string {
	file := i.File
	if file == "" {
		file = "??"
	}
	fn := i.Function
	if fn == "" {
		fn = "??"
	}
	return fmt.Sprintf("%s:%d: %s", file, i.Line, fn)
}

// Symbolizer resolves instruction addresses.
type Symbolizer interface {
	Symbolize(pc uint64) (Info, error)
}

func noSymbol(pc uint64) error {
	return fmt.Errorf("%w %#x", ErrNoSymbol, pc)
}
