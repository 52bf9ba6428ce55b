// cmd/pyrt/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pyrt/internal/bytecode"
	"pyrt/internal/errtypes"
	"pyrt/internal/fixtures"
	"pyrt/internal/marshal"
	"pyrt/internal/object"
	"pyrt/internal/vm"
)

const version = "0.1.0"

// commandAliases mirrors the teacher's single-letter shortcuts, trimmed
// to the three commands this core actually supports.
var commandAliases = map[string]string{
	"r": "run",
	"d": "dump",
	"c": "conform",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("pyrt", version)
	case "run":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "run: missing compiled-file path")
			os.Exit(2)
		}
		runFile(args[1])
	case "dump":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "dump: missing compiled-file path")
			os.Exit(2)
		}
		dumpFile(args[1])
	case "conform":
		dsn := ""
		if len(args) >= 2 {
			dsn = args[1]
		}
		runConformance(dsn)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		showUsage()
		os.Exit(2)
	}
}

func showUsage() {
	fmt.Println(`pyrt - a bytecode runtime core

Usage:
  pyrt run <file>      execute a compiled module
  pyrt dump <file>     print a compiled module's header and top-level code object
  pyrt conform [dsn]   run the S1-S8 conformance scenarios against a golden-result store
  pyrt version          print the version
  pyrt help             show this message`)
}

func openModule(path string) (*marshal.Header, *bytecode.CodeObject) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pyrt: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	header, code, err := marshal.ReadModule(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pyrt: %v\n", err)
		os.Exit(1)
	}
	return header, code
}

func dumpFile(path string) {
	header, code := openModule(path)
	fmt.Printf("dialect=%#x flags=%d timestamp=%d source_size=%d\n",
		header.Dialect, header.Flags, header.Timestamp, header.SourceSize)
	fmt.Printf("code: name=%s argcount=%d nlocals=%d stacksize=%d\n",
		code.Name, code.ArgCount, code.NLocals, code.StackSize)
}

// runFile builds a module-level function bound to a fresh globals dict
// and runs it through a private Manager the way CallFunction does for a
// top-level, non-scheduled invocation (spec.md §5 "Acquisition").
func runFile(path string) {
	_, code := openModule(path)

	globals := object.NewDict()
	module := vm.MakeFunction("<module>", code, globals, nil, nil, nil, nil)

	manager := vm.NewManager(1)
	_, err := manager.Spawn(context.Background(), func(thread *vm.ThreadState) (interface{}, error) {
		return vm.CallFunction(thread, module, nil, nil)
	})
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, vm.Stats)
}

// runConformance opens the golden-result store named by dsn (empty for
// an in-memory sqlite database) and runs every S1-S8 scenario against
// it, printing one line per scenario and exiting non-zero on the first
// mismatch against spec.md §8's literal expectations.
func runConformance(dsn string) {
	ctx := context.Background()
	store, err := fixtures.Open(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pyrt: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	results, err := fixtures.RunConformance(ctx, store, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "pyrt: conformance failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range results {
		fmt.Printf("%s: ok (%s)\n", r.Scenario, r.ExpectRepr)
	}
}

func reportError(err error) {
	if ue, ok := err.(*errtypes.UserException); ok {
		fmt.Fprintf(os.Stderr, "Traceback (most recent call last):\n%s\n", ue.Error())
		return
	}
	if _, ok := err.(*errtypes.InterpreterError); ok {
		fmt.Fprintf(os.Stderr, "pyrt: fatal: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "pyrt: %v\n", err)
}
