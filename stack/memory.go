// SPDX-License-Identifier: Unlicense OR MIT

package stack

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// WordMemory is little-endian memory starting at Base, for synthetic
// stacks.
type WordMemory struct {
	base uint64
	size int
	data []byte
}

// NewWordMemory returns zeroed memory of n words of wordSize bytes,
// 4 or 8, at address base.
func NewWordMemory(base uint64, wordSize, n int) *WordMemory {
	if wordSize != 4 && wordSize != 8 {
		panic(fmt.Sprintf("stack: unsupported word size %d", wordSize))
	}
	return &WordMemory{base: base, size: wordSize, data: make([]byte, n*wordSize)}
}

func (m *WordMemory) WordSize() int {
	return m.size
}

// Base returns the lowest address of the memory.
func (m *WordMemory) Base() uint64 {
	return m.base
}

// End returns the address just past the memory.
func (m *WordMemory) End() uint64 {
	return m.base + uint64(len(m.data))
}

func (m *WordMemory) ReadWord(addr uint64) (uint64, error) {
	b, err := m.word(addr)
	if err != nil {
		return 0, err
	}
	bo := binary.LittleEndian
	if m.size == 4 {
		return uint64(bo.Uint32(b)), nil
	}
	return bo.Uint64(b), nil
}

// WriteWord stores v at addr, truncated to the word size.
func (m *WordMemory) WriteWord(addr, v uint64) error {
	b, err := m.word(addr)
	if err != nil {
		return err
	}
	bo := binary.LittleEndian
	if m.size == 4 {
		bo.PutUint32(b, uint32(v))
	} else {
		bo.PutUint64(b, v)
	}
	return nil
}

func (m *WordMemory) word(addr uint64) ([]byte, error) {
	if addr < m.base || addr >= m.End() || addr%uint64(m.size) != 0 {
		return nil, fmt.Errorf("%w: %#x", ErrUnmapped, addr)
	}
	off := addr - m.base
	if off+uint64(m.size) > uint64(len(m.data)) {
		return nil, fmt.Errorf("%w: %#x", ErrUnmapped, addr)
	}
	return m.data[off : off+uint64(m.size)], nil
}

// frameWords is the number of words copied per live frame.
const frameWords = 2 + NumArgs

type savedFrame struct {
	fp    uint64
	words [frameWords]uint64
}

// Snapshot is a copy of the frame records of a live stack. Only the
// words of each record are readable.
type Snapshot struct {
	// FP is the frame pointer of the innermost frame.
	FP uint64
	// PC is the instruction pointer at the time of capture.
	PC uint64

	frames []savedFrame
}

func (s *Snapshot) WordSize() int {
	return 8
}

// Len returns the number of frames captured.
func (s *Snapshot) Len() int {
	return len(s.frames)
}

func (s *Snapshot) ReadWord(addr uint64) (uint64, error) {
	// Frames are ordered by increasing frame pointer.
	i := sort.Search(len(s.frames), func(i int) bool {
		return s.frames[i].fp > addr
	}) - 1
	if i < 0 || addr%8 != 0 {
		return 0, fmt.Errorf("%w: %#x", ErrUnmapped, addr)
	}
	f := &s.frames[i]
	idx := (addr - f.fp) / 8
	if idx >= frameWords {
		return 0, fmt.Errorf("%w: %#x", ErrUnmapped, addr)
	}
	return f.words[idx], nil
}
