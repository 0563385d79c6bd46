// SPDX-License-Identifier: Unlicense OR MIT

// Command kmon runs the kernel monitor over simulated physical memory
// and the live stack of the monitor itself.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"eliasnaur.com/kmon/kernel"
	"eliasnaur.com/kmon/monitor"
	"eliasnaur.com/kmon/symbol"
	"golang.org/x/term"
)

var (
	npages    = flag.Int("pages", 1024, "number of simulated physical pages")
	base      = flag.Uint64("base", 0, "physical address of the first page")
	maxArgs   = flag.Int("maxargs", monitor.MaxArgs, "maximum arguments per command")
	maxFrames = flag.Int("maxframes", 256, "maximum frames per backtrace")
	symbols   = flag.String("symbols", "", "ELF executable to read symbols from (default: runtime symbols)")
	exe       = flag.String("exe", "", "ELF executable to describe in kerninfo (default: this binary)")
	kernBase  = flag.Uint64("kernbase", 0, "virtual address of physical address 0 in the kernel image")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("kmon: ")
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	arena, err := kernel.NewArena(*npages)
	if err != nil {
		return err
	}
	defer arena.Close()
	pages, err := kernel.NewPages(*base, *npages, arena.Bytes())
	if err != nil {
		return err
	}
	// Like page 0 of a real machine, the first page is never handed out.
	if err := pages.Reserve(pages.Start(), pages.Start()+kernel.PageSize); err != nil {
		return err
	}
	sym, err := openSymbols()
	if err != nil {
		return err
	}
	layout, err := readLayout()
	if err != nil {
		return err
	}
	layout.KernBase = *kernBase

	var out io.Writer = os.Stdout
	var lines monitor.LineReader = monitor.NewScanReader(os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, state)
		t := newTermReader(os.Stdin, os.Stdout)
		out, lines = t, t
	}

	m := monitor.New(monitor.Config{
		Out:       out,
		Pages:     pages,
		Stack:     monitor.LiveStack{MaxFrames: *maxFrames},
		Symbols:   sym,
		Layout:    layout,
		MaxArgs:   *maxArgs,
		MaxFrames: *maxFrames,
	})
	return m.Run(lines, nil)
}

func openSymbols() (symbol.Symbolizer, error) {
	if *symbols == "" {
		return symbol.Runtime{}, nil
	}
	return symbol.Open(*symbols)
}

func readLayout() (kernel.Layout, error) {
	if *exe != "" {
		return kernel.ReadLayout(*exe)
	}
	path, err := os.Executable()
	if err == nil {
		var l kernel.Layout
		if l, err = kernel.ReadLayout(path); err == nil {
			return l, nil
		}
	}
	// The running binary need not be ELF.
	log.Printf("kerninfo unavailable: %v", err)
	return kernel.Layout{}, nil
}
