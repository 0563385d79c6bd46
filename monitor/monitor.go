// SPDX-License-Identifier: Unlicense OR MIT

// Package monitor implements the kernel monitor, a command line for
// exploring the running kernel interactively.
package monitor

import (
	"errors"
	"fmt"
	"io"

	"eliasnaur.com/kmon/kernel"
	"eliasnaur.com/kmon/stack"
	"eliasnaur.com/kmon/symbol"
	"golang.org/x/exp/slices"
)

const (
	// MaxArgs is the default limit of arguments per command line.
	MaxArgs = 16
	// Prompt is the default prompt.
	Prompt = "K> "
)

// Status is returned by command handlers.
type Status int

const (
	// Continue keeps the monitor reading commands.
	Continue Status = 0
	// Exit makes Run return.
	Exit Status = -1
)

// Handler runs a command. argv[0] is the command name.
type Handler func(m *Monitor, argv []string, tf *TrapFrame) Status

// Command is one monitor command.
type Command struct {
	Name string
	Desc string
	Func Handler
}

// TrapFrame is the register state the monitor was entered with. It
// may be nil when the monitor was not entered from a trap.
type TrapFrame struct {
	IP    uint64
	SP    uint64
	FP    uint64
	Flags uint64
}

// PageAllocator is the physical page allocator as seen by the page
// commands.
type PageAllocator interface {
	Alloc() (*kernel.Page, error)
	PageAt(pa uint64) (*kernel.Page, error)
	Addr(p *kernel.Page) uint64
	Decref(p *kernel.Page) error
}

// Stack is a captured call stack.
type Stack struct {
	Mem stack.Memory
	// FP is the innermost frame pointer.
	FP uint64
	// PC is the instruction pointer at capture time.
	PC uint64
	// Origin is the address the stack grows down from, or 0.
	Origin uint64
}

// StackSource captures the call stack for backtrace.
type StackSource interface {
	Capture() (Stack, error)
}

// LineReader reads complete command lines. ReadLine returns io.EOF
// when input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Config describes the collaborators of a Monitor. Zero fields get
// defaults, and commands whose collaborator is missing report it.
type Config struct {
	Out     io.Writer
	Pages   PageAllocator
	Stack   StackSource
	Symbols symbol.Symbolizer
	Layout  kernel.Layout
	// MaxArgs limits the number of arguments per line.
	MaxArgs int
	// MaxFrames bounds backtraces.
	MaxFrames int
	Prompt    string
	// Commands replaces the default command table.
	Commands []Command
}

// Monitor is a command interpreter over a fixed command table.
type Monitor struct {
	out       io.Writer
	pages     PageAllocator
	stack     StackSource
	sym       symbol.Symbolizer
	layout    kernel.Layout
	maxArgs   int
	maxFrames int
	prompt    string
	commands  []Command
}

// New returns a monitor. The command table is fixed from then on.
func New(cfg Config) *Monitor {
	m := &Monitor{
		out:       cfg.Out,
		pages:     cfg.Pages,
		stack:     cfg.Stack,
		sym:       cfg.Symbols,
		layout:    cfg.Layout,
		maxArgs:   cfg.MaxArgs,
		maxFrames: cfg.MaxFrames,
		prompt:    cfg.Prompt,
		commands:  slices.Clone(cfg.Commands),
	}
	if m.out == nil {
		m.out = io.Discard
	}
	if m.maxArgs <= 0 {
		m.maxArgs = MaxArgs
	}
	if m.maxFrames <= 0 {
		m.maxFrames = stack.DefaultMaxFrames
	}
	if m.prompt == "" {
		m.prompt = Prompt
	}
	if m.commands == nil {
		m.commands = DefaultCommands()
	}
	return m
}

// Commands returns a copy of the command table.
func (m *Monitor) Commands() []Command {
	return slices.Clone(m.commands)
}

// Run reads and runs commands until a command returns Exit or the
// reader fails. End of input is not an error.
func (m *Monitor) Run(r LineReader, tf *TrapFrame) error {
	m.printf("Welcome to the kernel monitor!\n")
	m.printf("Type 'help' for a list of commands.\n")
	for {
		line, err := r.ReadLine(m.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("monitor: %w", err)
		}
		if m.RunCmd(line, tf) == Exit {
			return nil
		}
	}
}

// RunCmd tokenizes line and runs the command it names.
func (m *Monitor) RunCmd(line string, tf *TrapFrame) Status {
	argv, err := Tokenize([]byte(line), m.maxArgs)
	if err != nil {
		m.printf("Too many arguments (max %d)\n", m.maxArgs)
		return Continue
	}
	if len(argv) == 0 {
		return Continue
	}
	i := slices.IndexFunc(m.commands, func(c Command) bool {
		return c.Name == argv[0]
	})
	if i == -1 {
		m.printf("Unknown command '%s'\n", argv[0])
		return Continue
	}
	return m.commands[i].Func(m, argv, tf)
}

func (m *Monitor) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}
