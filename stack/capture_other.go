// SPDX-License-Identifier: Unlicense OR MIT

//go:build !amd64

package stack

// Capture is only implemented where the frame pointer can be read.
func Capture(maxFrames int) (*Snapshot, error) {
	return nil, ErrUnsupported
}
