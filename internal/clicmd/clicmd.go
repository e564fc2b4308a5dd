// Package clicmd wires cmd/cinder's command surface onto
// github.com/mna/mainer: a single Cmd struct binds flags via struct
// tags, and each subcommand is a method matched by name (the same
// reflection-based dispatch the pack's own mainer consumer uses) rather
// than the teacher's hand-rolled os.Args switch.
package clicmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "cinder"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

A bytecode compiler and virtual machine for the %[1]s scripting
language.

The <command> can be one of:
       run <file>                Compile and execute a source file.
       repl                       Start an interactive read-eval-print
                                  loop.
       compile <file>             Compile a source file and report
                                  success or the compile error.
       disassemble <file>         Compile a source file and print its
                                  bytecode listing.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --stress-gc                Collect garbage on every allocation.
`, binName)
)

// Cmd is the root command bound by mainer.Parser. One Cmd handles one
// process invocation.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help     bool `flag:"h,help"`
	Version  bool `flag:"v,version"`
	StressGC bool `flag:"stress-gc"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if (cmdName == "run" || cmdName == "compile" || cmdName == "disassemble") && len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: a source file must be provided", cmdName)
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds finds every method of v shaped like a subcommand: it takes
// a context.Context, a mainer.Stdio and a []string, and returns an
// error. The lowercased method name is the command users type.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

// stressOverride reports whether --stress-gc was passed, applied on top
// of whatever CINDER_GC_STRESS the environment already set.
func (c *Cmd) stressOverride() bool {
	return c.StressGC
}
