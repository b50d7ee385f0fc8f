package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jcorbin/stackc/internal/logio"
)

func main() {
	ctx := context.Background()

	var log logio.Logger
	log.SetOutput(os.Stderr)

	var drv driver
	drv.log = &log
	drv.stdout = os.Stdout
	drv.stderr = os.Stderr

	flag.StringVar(&drv.outPath, "o", "", "write output to `path` instead of stdout")
	flag.StringVar(&drv.emit, "emit", "", "output `kind`: ir, obj, or none; defaults to ir, or none with -run")
	flag.StringVar(&drv.target, "target", "", "set the target `triple` of the generated module")
	flag.StringVar(&drv.llc.Path, "llc", "", "run `path` to compile object files (default \"llc\")")
	flag.BoolVar(&drv.run, "run", false, "evaluate main and print its results")
	flag.StringVar(&drv.dumpAST, "dump-ast", "", "dump the parsed program to stderr as a `format`: list or spew")
	flag.BoolVar(&drv.strictReturns, "strict-returns", false, "require a -- signature for procs that leave more than one value")
	flag.BoolVar(&drv.trace, "trace", false, "enable trace logging")
	flag.DurationVar(&drv.timeout, "timeout", 0, "specify a time limit for running main and llc")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] [FILE]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Compiles FILE, or starts an interactive session when no FILE is given.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	switch args := flag.Args(); len(args) {
	case 0:
		log.ErrorIf(runREPL(ctx, &drv))
	case 1:
		log.ErrorIf(drv.compileFile(ctx, args[0]))
	default:
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(log.ExitCode())
}
