// SPDX-License-Identifier: Unlicense OR MIT

package monitor

import "strconv"

func (m *Monitor) allocPage(argv []string, tf *TrapFrame) Status {
	if len(argv) != 1 {
		m.printf("Usage: alloc_page\n")
		return Continue
	}
	if m.pages == nil {
		m.printf("    No page allocator\n")
		return Continue
	}
	p, err := m.pages.Alloc()
	if err != nil {
		m.printf("    Page allocation failed\n")
		return Continue
	}
	p.Incref()
	m.printf("    0x%x\n", m.pages.Addr(p))
	return Continue
}

func (m *Monitor) pageStatus(argv []string, tf *TrapFrame) Status {
	if len(argv) != 2 {
		m.printf("Usage: page_status ADDR\n")
		m.printf("    Address must be aligned in 4KB\n")
		return Continue
	}
	pa, ok := m.parseAddr(argv[1])
	if !ok {
		return Continue
	}
	if m.pages == nil {
		m.printf("    No page allocator\n")
		return Continue
	}
	p, err := m.pages.PageAt(pa)
	if err != nil {
		m.printf("    %v\n", err)
		return Continue
	}
	if p.Ref() > 0 {
		m.printf("    allocated\n")
	} else {
		m.printf("    free\n")
	}
	return Continue
}

func (m *Monitor) freePage(argv []string, tf *TrapFrame) Status {
	if len(argv) != 2 {
		m.printf("Usage: free_page ADDR\n")
		m.printf("    Address must be aligned in 4KB\n")
		m.printf("    The page must be held by exactly one reference\n")
		return Continue
	}
	pa, ok := m.parseAddr(argv[1])
	if !ok {
		return Continue
	}
	if m.pages == nil {
		m.printf("    No page allocator\n")
		return Continue
	}
	p, err := m.pages.PageAt(pa)
	if err != nil {
		m.printf("    %v\n", err)
		return Continue
	}
	// A page with other holders, or none, is left alone.
	if ref := p.Ref(); ref != 1 {
		m.printf("    failed: page 0x%x has reference count %d\n", m.pages.Addr(p), ref)
		return Continue
	}
	if err := m.pages.Decref(p); err != nil {
		m.printf("    failed: %v\n", err)
		return Continue
	}
	m.printf("    Page freed successfully!\n")
	return Continue
}

// parseAddr parses a C style integer literal: 0x for hexadecimal, a
// leading 0 for octal, decimal otherwise.
func (m *Monitor) parseAddr(s string) (uint64, bool) {
	pa, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		m.printf("    bad address %q\n", s)
		return 0, false
	}
	return pa, true
}
