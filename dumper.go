package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcorbin/stackc/internal/ast"
)

type fmtBuf interface {
	Len() int
	Write(p []byte) (n int, err error)
	WriteByte(c byte) error
	WriteString(s string) (n int, err error)
}

// progDumper writes a listing of a parsed program, one operation per line
// under a location column; words are annotated with what they refer to.
type progDumper struct {
	prog *ast.Program
	out  io.Writer

	locWidth int
}

func (dump progDumper) dump() {
	fmt.Fprintf(dump.out, "# Program %v\n", dump.prog.Name)
	if dump.locWidth == 0 {
		dump.scanLocs()
	}
	var buf strings.Builder
	for _, def := range dump.prog.Defs {
		dump.dumpDef(&buf, def)
		io.WriteString(dump.out, buf.String())
		buf.Reset()
	}
}

func (dump *progDumper) scanLocs() {
	var scan func(ops []ast.Op)
	scan = func(ops []ast.Op) {
		for _, op := range ops {
			if n := len(op.Loc.String()); n > dump.locWidth {
				dump.locWidth = n
			}
			scan(op.Body)
		}
	}
	for _, def := range dump.prog.Defs {
		if n := len(def.DefLoc().String()); n > dump.locWidth {
			dump.locWidth = n
		}
		scan(def.DefBody())
	}
}

func (dump *progDumper) dumpDef(buf fmtBuf, def ast.Definition) {
	dump.line(buf, def.DefLoc(), 0)
	switch def := def.(type) {
	case *ast.Proc:
		buf.WriteString(def.Signature())
	case *ast.Const:
		buf.WriteString("const ")
		buf.WriteString(def.Name)
	default:
		fmt.Fprintf(buf, "%T", def)
	}
	buf.WriteString(" in\n")
	dump.dumpOps(buf, def.DefBody(), 1)
	dump.line(buf, ast.Location{}, 0)
	buf.WriteString("end\n")
}

func (dump *progDumper) dumpOps(buf fmtBuf, ops []ast.Op, depth int) {
	for _, op := range ops {
		dump.line(buf, op.Loc, depth)
		switch op.Code {
		case ast.If:
			buf.WriteString("if\n")
			dump.dumpOps(buf, op.Body, depth+1)
			dump.line(buf, ast.Location{}, depth)
			buf.WriteString("end\n")
			continue
		case ast.Word:
			dump.formatWord(buf, op.Name)
		default:
			buf.WriteString(op.String())
		}
		buf.WriteByte('\n')
	}
}

func (dump *progDumper) formatWord(buf fmtBuf, name string) {
	buf.WriteString(name)
	switch def := dump.prog.Lookup(name).(type) {
	case *ast.Proc:
		buf.WriteString(" # proc")
		if len(def.Inputs) > 0 || def.DeclaresOutputs() {
			buf.WriteString(" ")
			buf.WriteString(strconv.Itoa(len(def.Inputs)))
			buf.WriteString(" -- ")
			if def.DeclaresOutputs() {
				buf.WriteString(strconv.Itoa(len(def.Outputs)))
			} else {
				buf.WriteString("?")
			}
		}
	case *ast.Const:
		buf.WriteString(" # const")
	case nil:
		buf.WriteString(" # undefined")
	}
}

func (dump *progDumper) line(buf fmtBuf, loc ast.Location, depth int) {
	var s string
	if loc != (ast.Location{}) {
		s = loc.String()
	}
	buf.WriteString("  ")
	buf.WriteString(s)
	for n := dump.locWidth - len(s); n > 0; n-- {
		buf.WriteByte(' ')
	}
	for i := 0; i <= depth; i++ {
		buf.WriteString("  ")
	}
}
