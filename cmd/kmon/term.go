// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"io"

	"golang.org/x/term"
)

// termReader reads lines from a terminal in raw mode, with line
// editing and history. Writes go through the terminal so that
// newlines are translated.
type termReader struct {
	t *term.Terminal
}

func newTermReader(in io.Reader, out io.Writer) *termReader {
	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	return &termReader{t: term.NewTerminal(rw, "")}
}

func (r *termReader) ReadLine(prompt string) (string, error) {
	r.t.SetPrompt(prompt)
	return r.t.ReadLine()
}

func (r *termReader) Write(p []byte) (int, error) {
	return r.t.Write(p)
}
