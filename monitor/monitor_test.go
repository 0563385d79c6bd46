// SPDX-License-Identifier: Unlicense OR MIT

package monitor

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"eliasnaur.com/kmon/kernel"
)

func newTestMonitor(t *testing.T, npages int) (*Monitor, *bytes.Buffer, *kernel.Pages) {
	t.Helper()
	pages, err := kernel.NewPages(0x100000, npages, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := new(bytes.Buffer)
	m := New(Config{Out: out, Pages: pages})
	return m, out, pages
}

func TestCommandNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range DefaultCommands() {
		if seen[c.Name] {
			t.Errorf("duplicate command %q", c.Name)
		}
		seen[c.Name] = true
		if c.Desc == "" || c.Func == nil {
			t.Errorf("incomplete command %q", c.Name)
		}
	}
}

func TestHelp(t *testing.T) {
	m, out, _ := newTestMonitor(t, 1)
	if s := m.RunCmd("help", nil); s != Continue {
		t.Fatalf("help returned %d", s)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	cmds := m.Commands()
	if len(lines) != len(cmds) {
		t.Fatalf("help printed %d lines for %d commands:\n%s", len(lines), len(cmds), out)
	}
	for i, c := range cmds {
		if want := c.Name + " - " + c.Desc; lines[i] != want {
			t.Errorf("line %d: %q, want %q", i, lines[i], want)
		}
	}
}

func TestDispatch(t *testing.T) {
	var calls [][]string
	record := func(m *Monitor, argv []string, tf *TrapFrame) Status {
		calls = append(calls, argv)
		return 7
	}
	out := new(bytes.Buffer)
	m := New(Config{
		Out: out,
		Commands: []Command{
			{"rec", "record arguments", record},
		},
	})
	tests := []struct {
		line   string
		status Status
		out    string
		calls  int
	}{
		{"", Continue, "", 0},
		{"   \t ", Continue, "", 0},
		{"frob 1 2", Continue, "Unknown command 'frob'\n", 0},
		{"REC", Continue, "Unknown command 'REC'\n", 0},
		{"rec a b", 7, "", 1},
		{"rec" + strings.Repeat(" x", MaxArgs), Continue, "Too many arguments (max 16)\n", 0},
		{"rec" + strings.Repeat(" x", MaxArgs-1), 7, "", 1},
	}
	for _, test := range tests {
		out.Reset()
		calls = nil
		if s := m.RunCmd(test.line, nil); s != test.status {
			t.Errorf("%q: status %d, want %d", test.line, s, test.status)
		}
		if got := out.String(); got != test.out {
			t.Errorf("%q: output %q, want %q", test.line, got, test.out)
		}
		if len(calls) != test.calls {
			t.Errorf("%q: %d handler calls, want %d", test.line, len(calls), test.calls)
		}
	}
	calls = nil
	m.RunCmd("  rec   a  b ", nil)
	if got := calls[0]; len(got) != 3 || got[0] != "rec" || got[1] != "a" || got[2] != "b" {
		t.Errorf("handler got %q", got)
	}
}

func TestDispatchFirstMatch(t *testing.T) {
	var which string
	m := New(Config{Commands: []Command{
		{"x", "first", func(*Monitor, []string, *TrapFrame) Status { which = "first"; return Continue }},
		{"x", "second", func(*Monitor, []string, *TrapFrame) Status { which = "second"; return Continue }},
	}})
	m.RunCmd("x", nil)
	if which != "first" {
		t.Errorf("dispatched to %s", which)
	}
}

func TestDispatchPassesTrapFrame(t *testing.T) {
	tf := &TrapFrame{IP: 1, SP: 2, FP: 3}
	var got *TrapFrame
	m := New(Config{Commands: []Command{
		{"tf", "trap frame", func(_ *Monitor, _ []string, tf *TrapFrame) Status { got = tf; return Continue }},
	}})
	m.RunCmd("tf", tf)
	if got != tf {
		t.Errorf("handler got trap frame %v", got)
	}
}

func TestRunExit(t *testing.T) {
	m, out, _ := newTestMonitor(t, 1)
	in := strings.NewReader("help\nexit\nhelp\n")
	if err := m.Run(NewScanReader(in, out), nil); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "Welcome to the kernel monitor!\nType 'help' for a list of commands.\n") {
		t.Errorf("missing banner:\n%s", s)
	}
	if n := strings.Count(s, "K> "); n != 2 {
		t.Errorf("%d prompts, want 2", n)
	}
	if n := strings.Count(s, "exit - Leave the kernel monitor"); n != 1 {
		t.Errorf("help ran %d times, want 1", n)
	}
}

func TestRunOnlyExitStops(t *testing.T) {
	runs := 0
	cmds := append(DefaultCommands(), Command{"neg", "return a negative status", func(_ *Monitor, _ []string, _ *TrapFrame) Status {
		runs++
		return -2
	}})
	out := new(bytes.Buffer)
	m := New(Config{Out: out, Commands: cmds})
	if err := m.Run(NewScanReader(strings.NewReader("neg\nneg\nexit\nneg\n"), out), nil); err != nil {
		t.Fatal(err)
	}
	if runs != 2 {
		t.Errorf("neg ran %d times, want 2", runs)
	}
}

func TestRunEOF(t *testing.T) {
	m, out, _ := newTestMonitor(t, 1)
	if err := m.Run(NewScanReader(strings.NewReader("bogus"), out), nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Unknown command 'bogus'") {
		t.Errorf("last line not run:\n%s", out)
	}
}

type errReader struct {
	err error
}

func (r errReader) ReadLine(string) (string, error) {
	return "", r.err
}

func TestRunReaderError(t *testing.T) {
	m, _, _ := newTestMonitor(t, 1)
	fail := errors.New("line discipline broken")
	if err := m.Run(errReader{fail}, nil); !errors.Is(err, fail) {
		t.Errorf("Run returned %v", err)
	}
	if err := m.Run(errReader{io.EOF}, nil); err != nil {
		t.Errorf("Run at EOF returned %v", err)
	}
}

func TestCustomPrompt(t *testing.T) {
	out := new(bytes.Buffer)
	m := New(Config{Out: out, Prompt: "kmon> "})
	if err := m.Run(NewScanReader(strings.NewReader("exit\n"), out), nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "kmon> ") {
		t.Errorf("prompt not used:\n%s", out)
	}
}

func TestKerninfo(t *testing.T) {
	out := new(bytes.Buffer)
	m := New(Config{Out: out, Layout: kernel.Layout{
		Start:    0xf0100000,
		Entry:    0xf010000c,
		Etext:    0xf0101a75,
		Edata:    0xf0112300,
		End:      0xf0112960,
		KernBase: 0xf0000000,
	}})
	m.RunCmd("kerninfo", nil)
	want := `Special kernel symbols:
  _start                  00100000 (phys)
  entry  f010000c (virt)  0010000c (phys)
  etext  f0101a75 (virt)  00101a75 (phys)
  edata  f0112300 (virt)  00112300 (phys)
  end    f0112960 (virt)  00112960 (phys)
Kernel executable memory footprint: 75KB
`
	if got := out.String(); got != want {
		t.Errorf("kerninfo printed\n%s\nwant\n%s", got, want)
	}
}
