// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestTermReader(t *testing.T) {
	out := new(bytes.Buffer)
	r := newTermReader(strings.NewReader("page_status 0x1000\rhelp\r"), out)
	for _, want := range []string{"page_status 0x1000", "help"} {
		line, err := r.ReadLine("K> ")
		if err != nil {
			t.Fatal(err)
		}
		if line != want {
			t.Errorf("ReadLine = %q, want %q", line, want)
		}
	}
	if _, err := r.ReadLine("K> "); err != io.EOF {
		t.Errorf("ReadLine at end of input returned %v", err)
	}
	if !strings.Contains(out.String(), "K> ") {
		t.Errorf("prompt not written: %q", out)
	}
	out.Reset()
	if _, err := r.Write([]byte("free\n")); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !strings.Contains(got, "free\r\n") {
		t.Errorf("terminal wrote %q", got)
	}
}
