package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/llir/llvm/ir"

	"github.com/jcorbin/stackc/internal/ast"
	"github.com/jcorbin/stackc/internal/codegen"
	"github.com/jcorbin/stackc/internal/flushio"
	"github.com/jcorbin/stackc/internal/irexec"
	"github.com/jcorbin/stackc/internal/llc"
	"github.com/jcorbin/stackc/internal/logio"
	"github.com/jcorbin/stackc/internal/parser"
)

const (
	emitIR   = "ir"
	emitObj  = "obj"
	emitNone = "none"

	dumpList = "list"
	dumpSpew = "spew"

	mainProc = "main"
)

// driver carries a source program through parsing, generation, and then
// output or evaluation, as configured by command line flags.
type driver struct {
	log    *logio.Logger
	stdout io.Writer
	stderr io.Writer

	outPath       string
	emit          string
	target        string
	llc           llc.Tool
	run           bool
	dumpAST       string
	strictReturns bool
	trace         bool
	timeout       time.Duration
}

func (drv *driver) compileFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return drv.compile(ctx, path, f)
}

// compile parses and generates the program read from r; nothing is written
// unless both succeed.
func (drv *driver) compile(ctx context.Context, name string, r io.Reader) error {
	emit, err := drv.emitKind()
	if err != nil {
		return err
	}

	prog, err := parser.Parse(name, r)
	if dumpErr := drv.dump(prog); dumpErr != nil {
		return dumpErr
	}
	if err != nil {
		return err
	}

	m, err := codegen.Compile(prog, drv.codegenOptions()...)
	if err != nil {
		return err
	}

	switch emit {
	case emitIR:
		err = drv.writeIR(m)
	case emitObj:
		err = drv.writeObj(ctx, name, m)
	}
	if err == nil && drv.run {
		err = drv.runMain(ctx, m)
	}
	return err
}

func (drv *driver) emitKind() (string, error) {
	switch drv.emit {
	case "":
		if drv.run {
			return emitNone, nil
		}
		return emitIR, nil
	case emitIR, emitObj, emitNone:
		return drv.emit, nil
	default:
		return "", fmt.Errorf("invalid -emit kind %q, expected %v, %v, or %v", drv.emit, emitIR, emitObj, emitNone)
	}
}

func (drv *driver) codegenOptions() []codegen.Option {
	opts := []codegen.Option{codegen.WithStrictReturns(drv.strictReturns)}
	if drv.target != "" {
		opts = append(opts, codegen.WithTargetTriple(drv.target))
	}
	if drv.trace {
		opts = append(opts, codegen.WithLogf(drv.log.Leveledf("TRACE")))
	}
	return opts
}

func (drv *driver) dump(prog *ast.Program) error {
	out := drv.stderr
	if out == nil {
		out = os.Stderr
	}
	switch drv.dumpAST {
	case "":
	case dumpList:
		progDumper{prog: prog, out: out}.dump()
	case dumpSpew:
		spew.Fdump(out, prog)
	default:
		return fmt.Errorf("invalid -dump-ast format %q, expected %v or %v", drv.dumpAST, dumpList, dumpSpew)
	}
	return nil
}

func (drv *driver) writeIR(m *ir.Module) error {
	if drv.outPath == "" {
		return llc.WriteIR(drv.stdout, m)
	}
	f, err := os.Create(drv.outPath)
	if err != nil {
		return err
	}
	err = llc.WriteIR(f, m)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(drv.outPath)
	}
	return err
}

func (drv *driver) writeObj(ctx context.Context, name string, m *ir.Module) error {
	out := drv.outPath
	if out == "" {
		out = strings.TrimSuffix(name, filepath.Ext(name)) + ".o"
	}
	ctx, cancel := drv.withTimeout(ctx)
	defer cancel()
	err := drv.llc.Compile(ctx, m, out)
	if err != nil {
		os.Remove(out)
	}
	return err
}

func (drv *driver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if drv.timeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, drv.timeout)
}

// runMain evaluates main, writing any print output and then its results.
func (drv *driver) runMain(ctx context.Context, m *ir.Module) error {
	return drv.call(ctx, m, mainProc)
}

func (drv *driver) call(ctx context.Context, m *ir.Module, name string) error {
	ctx, cancel := drv.withTimeout(ctx)
	defer cancel()

	opts := []irexec.Option{irexec.WithOutput(drv.stdout)}
	if drv.trace {
		opts = append(opts, irexec.WithLogf(drv.log.Leveledf("TRACE")))
	}
	results, err := irexec.New(m, opts...).Call(ctx, name)
	if err != nil || len(results) == 0 {
		return err
	}

	return flushio.WriteTo(drv.stdout, func(w io.Writer) error {
		var buf []byte
		for i, n := range results {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendUint(buf, n, 10)
		}
		buf = append(buf, '\n')
		_, err := w.Write(buf)
		return err
	})
}
