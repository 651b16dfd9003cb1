package maincmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/machine"
)

// RunFile compiles and runs the script at path in a fresh VM, printing
// its output to stdio.Stdout. It returns the process exit code the
// CLI's contract assigns to whatever happened: success, a compile
// error, a runtime error, or a failure to even read the file.
func RunFile(ctx context.Context, stdio mainer.Stdio, trace bool, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return ExitIOError
	}

	vm := machine.New(stdio.Stdout)
	vm.Trace = trace
	return interpret(stdio, vm, string(src))
}

// RunREPL reads lines from stdio.Stdin one at a time, compiling and
// running each against a single persistent VM so variables, functions
// and classes defined on one line remain visible on the next. It exits
// on EOF (Ctrl-D) or when ctx is canceled.
func RunREPL(ctx context.Context, stdio mainer.Stdio, trace bool) int {
	vm := machine.New(stdio.Stdout)
	vm.Trace = trace

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		select {
		case <-ctx.Done():
			return ExitSuccess
		default:
		}

		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return ExitSuccess
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		// a REPL line's errors are reported but never end the session:
		// only EOF does that.
		interpret(stdio, vm, line)
	}
}

func interpret(stdio mainer.Stdio, vm *machine.VM, src string) int {
	err := vm.Interpret(src)
	if err == nil {
		return ExitSuccess
	}

	var compileErrs compiler.Errors
	if errors.As(err, &compileErrs) {
		fmt.Fprintln(stdio.Stderr, compileErrs.Error())
		return ExitCompileError
	}

	var runtimeErr *machine.RuntimeError
	if errors.As(err, &runtimeErr) {
		fmt.Fprintln(stdio.Stderr, runtimeErr.Error())
		return ExitRuntimeError
	}

	fmt.Fprintln(stdio.Stderr, err)
	return ExitRuntimeError
}
