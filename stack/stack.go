// SPDX-License-Identifier: Unlicense OR MIT

// Package stack walks frame-pointer-linked call stacks.
//
// A frame record at frame pointer fp, with W the word size, is laid
// out as
//
//	[fp]              saved frame pointer of the caller
//	[fp+W]            return instruction pointer
//	[fp+2W]...        argument window, NumArgs words
//
// The chain ends at a zero frame pointer. Each frame is validated
// before it is dereferenced: the frame pointer must be word aligned,
// below the stack origin when known, and every link must move strictly
// toward the origin.
package stack

import (
	"errors"
	"fmt"

	"eliasnaur.com/kmon/symbol"
)

const (
	// NumArgs is the number of words reported as arguments for each
	// frame, independent of the callee's real arity.
	NumArgs = 5

	// DefaultMaxFrames bounds a walk when Unwinder.MaxFrames is zero.
	DefaultMaxFrames = 256
)

var (
	ErrCorruptFrame = errors.New("stack: corrupt frame pointer chain")
	ErrFrameLimit   = errors.New("stack: frame limit reached")
	ErrUnmapped     = errors.New("stack: address not mapped")
	ErrUnsupported  = errors.New("stack: cannot capture the live stack on this architecture")
)

// Memory is read-only word addressed memory.
type Memory interface {
	// ReadWord reads the word at addr.
	ReadWord(addr uint64) (uint64, error)
	// WordSize returns the word size in bytes.
	WordSize() int
}

// Frame is one activation record, together with the symbol of its
// return address.
type Frame struct {
	FP   uint64
	PC   uint64
	Args [NumArgs]uint64
	Info symbol.Info
	// SymErr is the symbolization error for PC, if any. It does not
	// stop the walk.
	SymErr error
}

// Unwinder walks the frame pointer chain in Mem.
type Unwinder struct {
	Mem Memory
	// Sym resolves return addresses. If nil, frames carry no symbols.
	Sym symbol.Symbolizer
	// MaxFrames bounds the walk. Zero means DefaultMaxFrames.
	MaxFrames int
	// Origin is the address the stack grows down from, 0 if unknown.
	Origin uint64
}

// Walk visits the frames from fp toward the stack origin. It stops
// without error at the zero frame pointer, and with the error returned
// by visit if it is not nil.
func (u *Unwinder) Walk(fp uint64, visit func(Frame) error) error {
	limit := u.MaxFrames
	if limit <= 0 {
		limit = DefaultMaxFrames
	}
	for n := 0; fp != 0; n++ {
		if n == limit {
			return fmt.Errorf("%w after %d frames", ErrFrameLimit, limit)
		}
		if err := u.check(fp); err != nil {
			return err
		}
		f, next, err := u.frame(fp)
		if err != nil {
			return err
		}
		if err := visit(f); err != nil {
			return err
		}
		if next != 0 && next <= fp {
			return fmt.Errorf("%w: frame %#x links to %#x", ErrCorruptFrame, fp, next)
		}
		fp = next
	}
	return nil
}

// Frames returns the frames from fp toward the stack origin. On error
// the frames visited so far are returned as well.
func (u *Unwinder) Frames(fp uint64) ([]Frame, error) {
	var frames []Frame
	err := u.Walk(fp, func(f Frame) error {
		frames = append(frames, f)
		return nil
	})
	return frames, err
}

// Symbolize resolves pc with the unwinder's symbolizer.
func (u *Unwinder) Symbolize(pc uint64) (symbol.Info, error) {
	if u.Sym == nil {
		return symbol.Info{}, symbol.ErrNoSymbol
	}
	return u.Sym.Symbolize(pc)
}

func (u *Unwinder) check(fp uint64) error {
	w := uint64(u.Mem.WordSize())
	if fp%w != 0 {
		return fmt.Errorf("%w: frame %#x is not word aligned", ErrCorruptFrame, fp)
	}
	if u.Origin != 0 && fp >= u.Origin {
		return fmt.Errorf("%w: frame %#x is beyond the stack origin %#x", ErrCorruptFrame, fp, u.Origin)
	}
	if fp+(2+NumArgs)*w < fp {
		return fmt.Errorf("%w: frame %#x wraps around", ErrCorruptFrame, fp)
	}
	return nil
}

func (u *Unwinder) frame(fp uint64) (Frame, uint64, error) {
	w := uint64(u.Mem.WordSize())
	read := func(i uint64) (uint64, error) {
		v, err := u.Mem.ReadWord(fp + i*w)
		if err != nil {
			return 0, fmt.Errorf("%w: reading frame %#x: %v", ErrCorruptFrame, fp, err)
		}
		return v, nil
	}
	next, err := read(0)
	if err != nil {
		return Frame{}, 0, err
	}
	f := Frame{FP: fp}
	if f.PC, err = read(1); err != nil {
		return Frame{}, 0, err
	}
	for i := range f.Args {
		if f.Args[i], err = read(uint64(2 + i)); err != nil {
			return Frame{}, 0, err
		}
	}
	f.Info, f.SymErr = u.Symbolize(f.PC)
	return f, next, nil
}
