// SPDX-License-Identifier: Unlicense OR MIT

package symbol

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"
)

// Func is one function of a Static table, covering [Entry, End).
type Func struct {
	Name  string
	File  string
	Line  int
	Entry uint64
	End   uint64
}

// Static is a fixed symbol table, for images without Go line tables
// and for synthetic stacks.
type Static struct {
	funcs []Func
}

// NewStatic returns a table of funcs. Function ranges must not
// overlap.
func NewStatic(funcs ...Func) (*Static, error) {
	fs := slices.Clone(funcs)
	sort.Slice(fs, func(i, j int) bool {
		return fs[i].Entry < fs[j].Entry
	})
	for i, f := range fs {
		if f.End <= f.Entry {
			return nil, fmt.Errorf("symbol: empty range for %s", f.Name)
		}
		if i > 0 && fs[i-1].End > f.Entry {
			return nil, fmt.Errorf("symbol: %s overlaps %s", fs[i-1].Name, f.Name)
		}
	}
	return &Static{funcs: fs}, nil
}

func (s *Static) Symbolize(pc uint64) (Info, error) {
	// Find the last function starting at or before pc.
	i, found := slices.BinarySearchFunc(s.funcs, pc, func(f Func, pc uint64) int {
		switch {
		case f.Entry < pc:
			return -1
		case f.Entry > pc:
			return 1
		}
		return 0
	})
	if !found {
		i--
	}
	if i < 0 || pc >= s.funcs[i].End {
		return Info{}, noSymbol(pc)
	}
	f := s.funcs[i]
	return Info{
		File:     f.File,
		Line:     f.Line,
		Function: f.Name,
		Entry:    f.Entry,
	}, nil
}
