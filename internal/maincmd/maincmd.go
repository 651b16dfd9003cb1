// Package maincmd implements the lumen command line tool: running a
// script file, or a REPL when invoked with no arguments.
package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "lumen"

// Exit codes follow the sysexits.h convention the reference
// interpreter uses: a usage error is distinct from a compile error,
// which is distinct from a runtime failure, which is distinct from not
// being able to read the script at all.
const (
	ExitSuccess      = 0
	ExitUsage        = 64
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 74
)

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s programming language.

With no <path>, starts an interactive REPL. With one <path>, compiles
and runs that script.

Valid flag options are:
       -h --help                  Show this help and exit.
       -v --version                Print version and exit.
       --trace                     Disassemble every instruction before
                                   it executes.
`, binName)
)

// Cmd is the lumen CLI's argument and flag surface, parsed by
// mainer.Parser.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Trace   bool `flag:"trace"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("too many arguments: expected at most one script path")
	}
	return nil
}

// Main parses args and dispatches to the REPL or file runner. Every
// failure path is reported on stdio.Stderr and reflected only in the
// returned exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: "LUMEN_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.ExitCode(ExitUsage)
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

	if len(c.args) == 0 {
		return mainer.ExitCode(RunREPL(ctx, stdio, c.Trace))
	}
	return mainer.ExitCode(RunFile(ctx, stdio, c.Trace, c.args[0]))
}
