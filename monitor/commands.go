// SPDX-License-Identifier: Unlicense OR MIT

package monitor

import "golang.org/x/exp/slices"

// commands is the default command table. Names must be unique; the
// first match wins.
var commands = []Command{
	{"help", "Display this list of commands", (*Monitor).help},
	{"kerninfo", "Display information about the kernel", (*Monitor).kerninfo},
	{"alloc_page", "Allocate a page and display its address", (*Monitor).allocPage},
	{"page_status", "Display whether a page is allocated or free", (*Monitor).pageStatus},
	{"free_page", "Free a page held by exactly one reference", (*Monitor).freePage},
	{"backtrace", "Display a backtrace of the call stack", (*Monitor).backtrace},
	{"exit", "Leave the kernel monitor", (*Monitor).exit},
}

// DefaultCommands returns a copy of the default command table.
func DefaultCommands() []Command {
	return slices.Clone(commands)
}

func (m *Monitor) help(argv []string, tf *TrapFrame) Status {
	for _, c := range m.commands {
		m.printf("%s - %s\n", c.Name, c.Desc)
	}
	return Continue
}

func (m *Monitor) kerninfo(argv []string, tf *TrapFrame) Status {
	l := m.layout
	m.printf("Special kernel symbols:\n")
	m.printf("  _start                  %08x (phys)\n", l.Phys(l.Start))
	m.printf("  entry  %08x (virt)  %08x (phys)\n", l.Entry, l.Phys(l.Entry))
	m.printf("  etext  %08x (virt)  %08x (phys)\n", l.Etext, l.Phys(l.Etext))
	m.printf("  edata  %08x (virt)  %08x (phys)\n", l.Edata, l.Phys(l.Edata))
	m.printf("  end    %08x (virt)  %08x (phys)\n", l.End, l.Phys(l.End))
	m.printf("Kernel executable memory footprint: %dKB\n", l.Footprint())
	return Continue
}

func (m *Monitor) exit(argv []string, tf *TrapFrame) Status {
	return Exit
}
