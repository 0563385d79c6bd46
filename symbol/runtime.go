// SPDX-License-Identifier: Unlicense OR MIT

package symbol

import "runtime"

// Runtime resolves addresses in the running binary.
type Runtime struct{}

func (Runtime) Symbolize(pc uint64) (Info, error) {
	f := runtime.FuncForPC(uintptr(pc))
	if f == nil {
		return Info{}, noSymbol(pc)
	}
	file, line := f.FileLine(uintptr(pc))
	return Info{
		File:     file,
		Line:     line,
		Function: f.Name(),
		Entry:    uint64(f.Entry()),
	}, nil
}
