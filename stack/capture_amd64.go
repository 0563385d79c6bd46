// SPDX-License-Identifier: Unlicense OR MIT

package stack

import (
	"runtime"
	"unsafe"
)

const (
	// maxCapture bounds the frames copied by Capture.
	maxCapture = DefaultMaxFrames
	// maxFrameSpan is the largest distance accepted between two
	// linked frames of a live stack.
	maxFrameSpan = 1 << 20
)

// readFramePointer returns the frame pointer of its caller.
func readFramePointer() uintptr

// Capture copies the frame records of the calling goroutine, starting
// with the frame of Capture itself, whose return address lies in the
// caller. Snapshot.PC is the instruction pointer in the caller.
//
// The copy loop makes no calls, so the goroutine stack can neither
// grow nor shrink while raw frame pointers are being read. The
// argument window of the outermost frame is not read and reads as
// zero.
//
//go:noinline
func Capture(maxFrames int) (*Snapshot, error) {
	if maxFrames <= 0 || maxFrames > maxCapture {
		maxFrames = maxCapture
	}
	var (
		raw   [maxCapture][frameWords]uint64
		bases [maxCapture]uintptr
	)
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return nil, ErrUnsupported
	}
	// Frame records are addressed relative to a local so that every
	// pointer is derived from one into this goroutine's stack.
	anchor := unsafe.Pointer(&raw)
	fp := readFramePointer()
	n := 0
	for fp != 0 && fp&7 == 0 && n < maxFrames {
		p := unsafe.Add(anchor, fp-uintptr(anchor))
		next := *(*uintptr)(p)
		words := 2
		if next != 0 {
			words = frameWords
		}
		for i := 0; i < words; i++ {
			raw[n][i] = *(*uint64)(unsafe.Add(p, i*8))
		}
		bases[n] = fp
		n++
		if next <= fp || next-fp > maxFrameSpan {
			break
		}
		fp = next
	}
	s := &Snapshot{
		PC:     uint64(pc),
		frames: make([]savedFrame, n),
	}
	for i := 0; i < n; i++ {
		s.frames[i] = savedFrame{fp: uint64(bases[i]), words: raw[i]}
	}
	if n > 0 {
		s.FP = s.frames[0].fp
	}
	return s, nil
}
