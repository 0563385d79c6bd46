// SPDX-License-Identifier: Unlicense OR MIT

package kernel

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"
)

const (
	PageShift = 12
	PageSize  = 1 << PageShift
)

const (
	// ErrBadAddress is returned for physical addresses outside the
	// managed range.
	ErrBadAddress = kernError("pa2page: physical address out of range")
	// ErrReserved is returned for pages that are never handed out.
	ErrReserved = kernError("pa2page: page is reserved")
)

// Page describes one physical page. The descriptor is owned by the
// allocator; holders are tracked by its reference count.
type Page struct {
	ref      uint16
	reserved bool
}

// Ref returns the number of holders of the page. Zero means free.
func (p *Page) Ref() uint16 {
	return p.ref
}

// Incref records one more holder of the page.
func (p *Page) Incref() {
	p.ref++
}

// Pages is a simple allocator for physical memory. Every page has a
// descriptor, and free pages are tracked with a bitmap.
type Pages struct {
	start uint64
	pages []Page
	// The index into bits of the last allocated block.
	word int
	// bits represent each physical memory page with one bit. 1
	// mean free, 0 means allocated or reserved.
	bits []uint64
	// mem backs the pages. It may be nil.
	mem []byte
}

// NewPages returns an allocator for npages pages starting at the
// physical address start. If mem is not nil it backs the pages and
// allocated pages are cleared.
func NewPages(start uint64, npages int, mem []byte) (*Pages, error) {
	if start&(PageSize-1) != 0 {
		return nil, fmt.Errorf("pages: start address %#x is not page aligned", start)
	}
	if npages <= 0 {
		return nil, errors.New("pages: no memory")
	}
	if mem != nil && len(mem) < npages*PageSize {
		return nil, fmt.Errorf("pages: backing memory holds %d bytes, need %d", len(mem), npages*PageSize)
	}
	m := &Pages{
		start: start,
		pages: make([]Page, npages),
		bits:  make([]uint64, (npages+63)/64),
		mem:   mem,
	}
	m.setFree(true, 0, npages)
	return m, nil
}

// Alloc takes a free page off the bitmap. Like page_alloc the
// reference count is left at zero; the caller increments it.
func (m *Pages) Alloc() (*Page, error) {
	idx, ok := m.nextFreePage()
	if !ok {
		return nil, ErrNoMem
	}
	m.mark(idx)
	if mem := m.pageMem(idx); mem != nil {
		for i := range mem {
			mem[i] = 0
		}
	}
	return &m.pages[idx], nil
}

// Free returns a page with no references to the free pool.
func (m *Pages) Free(p *Page) error {
	idx := m.index(p)
	if p.ref != 0 {
		return ErrPageInUse
	}
	if p.reserved || m.isFree(idx) {
		return ErrDoubleFree
	}
	m.setFree(true, idx, idx+1)
	return nil
}

// Decref drops one reference to the page and frees it when the last
// reference is gone.
func (m *Pages) Decref(p *Page) error {
	if p.ref == 0 {
		return ErrRefUnderflow
	}
	if p.ref > 1 {
		p.ref--
		return nil
	}
	if p.reserved || m.isFree(m.index(p)) {
		return ErrDoubleFree
	}
	p.ref = 0
	return m.Free(p)
}

// PageAt returns the descriptor of the page containing the physical
// address pa.
func (m *Pages) PageAt(pa uint64) (*Page, error) {
	if pa < m.start {
		return nil, fmt.Errorf("%w: %#x", ErrBadAddress, pa)
	}
	idx := (pa - m.start) >> PageShift
	if idx >= uint64(len(m.pages)) {
		return nil, fmt.Errorf("%w: %#x", ErrBadAddress, pa)
	}
	p := &m.pages[idx]
	if p.reserved {
		return nil, fmt.Errorf("%w: %#x", ErrReserved, pa)
	}
	return p, nil
}

// Addr returns the physical address of the page.
func (m *Pages) Addr(p *Page) uint64 {
	return m.start + uint64(m.index(p))<<PageShift
}

// Reserve removes the pages in [start, end) from the allocator, for
// example the kernel image or page 0.
func (m *Pages) Reserve(start, end uint64) error {
	if start&(PageSize-1) != 0 || end&(PageSize-1) != 0 {
		return fmt.Errorf("pages: unaligned reserved range [%#x, %#x)", start, end)
	}
	if start > end || start < m.start || end > m.End() {
		return fmt.Errorf("pages: reserved range [%#x, %#x) outside [%#x, %#x)", start, end, m.start, m.End())
	}
	first := int((start - m.start) >> PageShift)
	last := int((end - m.start) >> PageShift)
	for i := first; i < last; i++ {
		if !m.isFree(i) {
			return fmt.Errorf("pages: reserved range [%#x, %#x) overlaps allocated page %#x", start, end, m.start+uint64(i)<<PageShift)
		}
	}
	m.setFree(false, first, last)
	for i := first; i < last; i++ {
		m.pages[i].reserved = true
	}
	return nil
}

// Start returns the lowest managed physical address.
func (m *Pages) Start() uint64 {
	return m.start
}

// End returns the address just past the last managed page.
func (m *Pages) End() uint64 {
	return m.start + uint64(len(m.pages))<<PageShift
}

// NumFree returns the number of free pages.
func (m *Pages) NumFree() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

func (m *Pages) index(p *Page) int {
	base := uintptr(unsafe.Pointer(&m.pages[0]))
	off := uintptr(unsafe.Pointer(p)) - base
	idx := int(off / unsafe.Sizeof(Page{}))
	if uintptr(unsafe.Pointer(p)) < base || idx >= len(m.pages) {
		panic("page2pa: page not owned by allocator")
	}
	return idx
}

func (m *Pages) pageMem(idx int) []byte {
	if m.mem == nil {
		return nil
	}
	off := idx * PageSize
	return m.mem[off : off+PageSize]
}

// setFree marks the pages with index in [start, end) free or in use.
func (m *Pages) setFree(free bool, start, end int) {
	if start > end {
		panic("setFree: start > end")
	}
	if start == end {
		return
	}
	startWord := start / 64
	endWord := end / 64
	// Set the bits of the first and last word(s).
	startPattern := uint64(1)<<(64-start%64) - 1
	endPattern := ^(uint64(1)<<(64-end%64) - 1)
	if startWord == endWord {
		startPattern &= endPattern
		endPattern = startPattern
	}
	var pattern uint64
	if free {
		pattern = ^uint64(0)
		m.bits[startWord] |= startPattern
		if endPattern != 0 {
			m.bits[endWord] |= endPattern
		}
	} else {
		pattern = 0
		m.bits[startWord] &^= startPattern
		if endPattern != 0 {
			m.bits[endWord] &^= endPattern
		}
	}
	// Mark the middle bits.
	for i := startWord + 1; i < endWord; i++ {
		m.bits[i] = pattern
	}
}

func (m *Pages) isFree(pageIdx int) bool {
	return m.bits[pageIdx/64]&(uint64(1)<<(64-pageIdx%64-1)) != 0
}

func (m *Pages) mark(pageIdx int) bool {
	wordIdx := pageIdx / 64
	bit := pageIdx % 64
	mask := uint64(1) << (64 - bit - 1)
	word := m.bits[wordIdx]
	if word&mask == 0 {
		return false
	}
	m.bits[wordIdx] = word &^ mask
	return true
}

func (m *Pages) nextFreePage() (int, bool) {
	for i := 0; i < len(m.bits); i++ {
		idx := (i + m.word) % len(m.bits)
		w := m.bits[idx]
		b := bits.LeadingZeros64(w)
		if b == 64 {
			continue
		}
		m.word = idx
		return idx*64 + b, true
	}
	return 0, false
}
