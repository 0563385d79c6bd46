// SPDX-License-Identifier: Unlicense OR MIT

package monitor

import (
	"bufio"
	"fmt"
	"io"
)

// ScanReader reads lines from a plain input stream, writing the
// prompt to out.
type ScanReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func NewScanReader(in io.Reader, out io.Writer) *ScanReader {
	return &ScanReader{sc: bufio.NewScanner(in), out: out}
}

func (r *ScanReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}
