// SPDX-License-Identifier: Unlicense OR MIT

package monitor

import (
	"eliasnaur.com/kmon/stack"
	"eliasnaur.com/kmon/symbol"
)

// LiveStack captures the stack of the goroutine running the monitor.
type LiveStack struct {
	MaxFrames int
}

func (l LiveStack) Capture() (Stack, error) {
	s, err := stack.Capture(l.MaxFrames)
	if err != nil {
		return Stack{}, err
	}
	return Stack{Mem: s, FP: s.FP, PC: s.PC}, nil
}

func (m *Monitor) backtrace(argv []string, tf *TrapFrame) Status {
	if tf != nil {
		m.printf("trap frame ip=%08x sp=%08x fp=%08x flags=%08x\n", tf.IP, tf.SP, tf.FP, tf.Flags)
	}
	if m.stack == nil {
		m.printf("backtrace: no stack to walk\n")
		return Continue
	}
	st, err := m.stack.Capture()
	if err != nil {
		m.printf("backtrace: %v\n", err)
		return Continue
	}
	u := &stack.Unwinder{
		Mem:       st.Mem,
		Sym:       m.sym,
		MaxFrames: m.maxFrames,
		Origin:    st.Origin,
	}
	m.printf("Stack backtrace (args: %d raw words above each return address; callee arity unknown):\n", stack.NumArgs)
	m.printf("current eip=%08x\n", st.PC)
	info, err := u.Symbolize(st.PC)
	m.printSymbol(st.PC, info, err)
	err = u.Walk(st.FP, func(f stack.Frame) error {
		m.printf("ebp %08x  eip %08x  args", f.FP, f.PC)
		for _, a := range f.Args {
			m.printf(" %08x", a)
		}
		m.printf("\n")
		m.printSymbol(f.PC, f.Info, f.SymErr)
		return nil
	})
	if err != nil {
		m.printf("backtrace: %v\n", err)
	}
	return Continue
}

func (m *Monitor) printSymbol(pc uint64, info symbol.Info, err error) {
	if err != nil {
		m.printf("       <unknown>\n")
		return
	}
	m.printf("       %s+%d\n", info, info.Offset(pc))
}
