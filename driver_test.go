package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/stackc/internal/codegen"
	"github.com/jcorbin/stackc/internal/logio"
	"github.com/jcorbin/stackc/internal/parser"
)

type driverTest struct {
	drv    driver
	log    logio.Logger
	stdout strings.Builder
	stderr strings.Builder
}

func newDriverTest(t *testing.T) *driverTest {
	dt := &driverTest{}
	dt.log.SetOutput(&logio.Writer{Logf: t.Logf})
	dt.drv.log = &dt.log
	dt.drv.stdout = &dt.stdout
	dt.drv.stderr = &dt.stderr
	return dt
}

func (dt *driverTest) compile(src ...string) error {
	return dt.drv.compile(context.Background(), "test.stk", strings.NewReader(lines(src...)))
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func TestDriver_emitIR(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.target = "x86_64-unknown-linux-gnu"
	require.NoError(t, dt.compile(
		"proc double int -- int in dup + end",
		"proc main in 21 double end",
	))
	ir := dt.stdout.String()
	assert.Contains(t, ir, `source_filename = "test.stk"`)
	assert.Contains(t, ir, `target triple = "x86_64-unknown-linux-gnu"`)
	assert.Contains(t, ir, "define i64 @double(i64")
	assert.Contains(t, ir, "define i64 @main()")
	assert.Contains(t, ir, "call i64 @double(")
}

func TestDriver_run(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.run = true
	require.NoError(t, dt.compile("proc main in 5 print 10 3 divmod end"))
	assert.Equal(t, "5\n3 1\n", dt.stdout.String(), "expected print output, then results, and no IR")
}

func TestDriver_runVoid(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.run = true
	dt.drv.emit = emitIR
	require.NoError(t, dt.compile("proc main in 1 print end"))
	out := dt.stdout.String()
	assert.Contains(t, out, "define void @main()")
	assert.True(t, strings.HasSuffix(out, "\n1\n"), "expected IR then print output, got %q", out)
}

func TestDriver_runtimeError(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.run = true
	err := dt.compile("proc main in 1 0 divmod end")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestDriver_parseErrors(t *testing.T) {
	dt := newDriverTest(t)
	err := dt.compile(
		"proc a in 1 int end",
		"proc in end",
	)
	var errs parser.ErrorList
	if assert.True(t, errors.As(err, &errs), "expected parse errors, got %v", err) {
		assert.Len(t, errs, 2)
	}
	assert.Equal(t, "", dt.stdout.String(), "expected no output")
}

func TestDriver_noOutputOnFailure(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.outPath = filepath.Join(t.TempDir(), "out.ll")
	err := dt.compile("proc main in foo end")
	var ure *codegen.UnresolvedReferenceError
	if assert.True(t, errors.As(err, &ure), "expected an unresolved reference, got %v", err) {
		assert.Equal(t, "foo", ure.Name)
	}
	_, statErr := os.Stat(dt.drv.outPath)
	assert.True(t, os.IsNotExist(statErr), "expected no output file")
}

func TestDriver_outputFile(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.outPath = filepath.Join(t.TempDir(), "out.ll")
	require.NoError(t, dt.compile("proc main in 3 4 + end"))
	b, err := os.ReadFile(dt.drv.outPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "define i64 @main()")
	assert.Equal(t, "", dt.stdout.String())
}

func TestDriver_strictReturns(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.strictReturns = true
	var mre *codegen.MalformedReturnError
	assert.True(t, errors.As(dt.compile("proc main in 1 2 end"), &mre))
}

func TestDriver_flags(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.emit = "exe"
	assert.EqualError(t, dt.compile("proc main in end"), `invalid -emit kind "exe", expected ir, obj, or none`)

	dt = newDriverTest(t)
	dt.drv.dumpAST = "xml"
	assert.EqualError(t, dt.compile("proc main in end"), `invalid -dump-ast format "xml", expected list or spew`)
}

func TestDriver_dumpAST(t *testing.T) {
	dt := newDriverTest(t)
	dt.drv.dumpAST = dumpList
	dt.drv.emit = emitNone
	require.NoError(t, dt.compile(
		"proc double int -- int in dup + end",
		"const N in 21 end",
		"proc main in N double if 1 print end end",
	))
	assert.Equal(t, lines(
		"# Program test.stk",
		"  test.stk:1:1   proc double int -- int in",
		"  test.stk:1:27    dup",
		"  test.stk:1:31    +",
		"                 end",
		"  test.stk:2:1   const N in",
		"  test.stk:2:12    21",
		"                 end",
		"  test.stk:3:1   proc main in",
		"  test.stk:3:14    N # const",
		"  test.stk:3:16    double # proc 1 -- 1",
		"  test.stk:3:23    if",
		"  test.stk:3:26      1",
		"  test.stk:3:28      print",
		"                   end",
		"                 end",
	), dt.stderr.String())

	dt = newDriverTest(t)
	dt.drv.dumpAST = dumpSpew
	dt.drv.emit = emitNone
	require.NoError(t, dt.compile("proc main in 1 end"))
	assert.Contains(t, dt.stderr.String(), "ast.Program")
}

func TestDriver_emitObj(t *testing.T) {
	path, err := exec.LookPath("llc")
	if err != nil {
		t.Skip("no llc on PATH")
	}
	dt := newDriverTest(t)
	dt.drv.emit = emitObj
	dt.drv.llc.Path = path
	dt.drv.outPath = filepath.Join(t.TempDir(), "out.o")
	require.NoError(t, dt.compile("proc main in 3 4 + end"))
	info, err := os.Stat(dt.drv.outPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestDriver_emitObjFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh on PATH")
	}
	dir := t.TempDir()
	fakeLLC := filepath.Join(dir, "llc")
	require.NoError(t, os.WriteFile(fakeLLC, []byte(lines(
		"#!/bin/sh",
		`echo partial > "$3"`,
		"echo boom >&2",
		"exit 1",
	)), 0o755))

	dt := newDriverTest(t)
	dt.drv.emit = emitObj
	dt.drv.llc.Path = fakeLLC
	dt.drv.outPath = filepath.Join(dir, "out.o")
	err := dt.compile("proc main in 3 4 + end")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "boom")
	}
	_, statErr := os.Stat(dt.drv.outPath)
	assert.True(t, os.IsNotExist(statErr), "expected no partial object file")
}
