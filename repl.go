package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/peterh/liner"

	"github.com/jcorbin/stackc/internal/ast"
	"github.com/jcorbin/stackc/internal/codegen"
	"github.com/jcorbin/stackc/internal/fileinput"
	"github.com/jcorbin/stackc/internal/llc"
	"github.com/jcorbin/stackc/internal/parser"
)

const (
	historyFile = ".stackc_history"
	promptMain  = "stackc> "
	promptCont  = "   ...> "

	// exprProc names the temporary proc that evaluates bare operations; it
	// contains a space so that no parsed definition can share it. Its body
	// is parsed under exprParseName.
	exprProc      = "<bare expression>"
	exprParseName = "_"
)

func runREPL(ctx context.Context, drv *driver) error {
	sess := session{drv: drv, out: drv.stdout}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(sess.complete)

	if home, err := os.UserHomeDir(); err == nil {
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintf(drv.stdout, "stackc: enter definitions or operations; :help lists commands\n")
	for {
		src, ok := readInput(ln, sess.incomplete)
		if !ok {
			fmt.Fprintln(drv.stdout)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if quit, err := sess.handle(ctx, src); err != nil {
			drv.log.PrintError("ERROR", err)
		} else if quit {
			return nil
		}
	}
}

// readInput prompts until the input collected so far is no longer
// incomplete. It returns false at the end of input.
func readInput(ln *liner.State, incomplete func(src string) bool) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// aborted by ^C, discarding any continued input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if src := b.String(); !incomplete(src) {
			return src, true
		}
	}
}

// session accumulates definitions across interactive inputs. A definition
// replaces any earlier one of the same name; bare operations are compiled as
// the body of a temporary proc, evaluated, and then discarded.
type session struct {
	drv    *driver
	out    io.Writer
	defs   []ast.Definition
	module *ir.Module
	inputs int
}

func (sess *session) handle(ctx context.Context, src string) (quit bool, err error) {
	if cmd := strings.TrimSpace(src); strings.HasPrefix(cmd, ":") {
		return sess.command(ctx, cmd)
	}
	return false, sess.eval(ctx, src)
}

func (sess *session) command(ctx context.Context, cmd string) (quit bool, err error) {
	switch cmd {
	case ":quit", ":q":
		return true, nil
	case ":help":
		_, err = io.WriteString(sess.out, ""+
			":defs   list session definitions\n"+
			":ir     print the generated module\n"+
			":run    evaluate main\n"+
			":reset  forget all definitions\n"+
			":quit   leave the session\n")
	case ":defs":
		progDumper{prog: sess.program(), out: sess.out}.dump()
	case ":ir":
		if sess.module == nil {
			if sess.module, err = codegen.Compile(sess.program(), sess.drv.codegenOptions()...); err != nil {
				return false, err
			}
		}
		err = llc.WriteIR(sess.out, sess.module)
	case ":run":
		if sess.module == nil || sess.program().Lookup(mainProc) == nil {
			return false, fmt.Errorf("no %v defined", mainProc)
		}
		err = sess.drv.call(ctx, sess.module, mainProc)
	case ":reset":
		sess.defs, sess.module = nil, nil
	default:
		err = fmt.Errorf("unknown command %q, try :help", cmd)
	}
	return false, err
}

func (sess *session) program() *ast.Program {
	return &ast.Program{Name: "session", Defs: sess.defs}
}

// isDefinition returns true if src starts with "proc" or "const".
func isDefinition(src string) bool {
	fields := strings.Fields(src)
	return len(fields) > 0 && (fields[0] == "proc" || fields[0] == "const")
}

func (sess *session) parse(src string) (*ast.Program, error) {
	name := fmt.Sprintf("<input %d>", sess.inputs+1)
	if isDefinition(src) {
		return parser.ParseInputs(name, fileinput.String(name, src))
	}
	return parser.ParseInputs(name,
		fileinput.String("<expr>", "proc "+exprParseName+" in\n"),
		fileinput.String(name, src),
		fileinput.String("<expr>", "\nend\n"))
}

func (sess *session) incomplete(src string) bool {
	if strings.HasPrefix(strings.TrimSpace(src), ":") {
		return false
	}
	_, err := sess.parse(src)
	return parser.IsIncomplete(err)
}

func (sess *session) eval(ctx context.Context, src string) error {
	input, err := sess.parse(src)
	sess.inputs++
	if err != nil {
		return err
	}

	if !isDefinition(src) {
		if expr, ok := input.Defs[0].(*ast.Proc); ok && expr.Name == exprParseName {
			expr.Name = exprProc
		}
		prog := sess.program()
		prog.Defs = append(prog.Defs[:len(prog.Defs):len(prog.Defs)], input.Defs...)
		m, err := codegen.Compile(prog, sess.drv.codegenOptions()...)
		if err != nil {
			return err
		}
		return sess.drv.call(ctx, m, exprProc)
	}

	defs := append([]ast.Definition(nil), sess.defs...)
	runMain := false
	for _, def := range input.Defs {
		defs = replaceDef(defs, def)
		if def.DefName() == mainProc {
			runMain = true
		}
	}
	m, err := codegen.Compile(&ast.Program{Name: "session", Defs: defs}, sess.drv.codegenOptions()...)
	if err != nil {
		return err
	}
	sess.defs, sess.module = defs, m
	if runMain {
		return sess.drv.call(ctx, m, mainProc)
	}
	return nil
}

func replaceDef(defs []ast.Definition, def ast.Definition) []ast.Definition {
	for i, prior := range defs {
		if prior.DefName() == def.DefName() {
			defs[i] = def
			return defs
		}
	}
	return append(defs, def)
}

// complete offers keywords, primitives, and session definition names that
// extend the last word of line.
func (sess *session) complete(line string) (candidates []string) {
	i := strings.LastIndexAny(line, " \t\n") + 1
	head, word := line[:i], line[i:]
	if word == "" {
		return nil
	}
	for _, name := range sess.words(strings.HasPrefix(word, ":")) {
		if strings.HasPrefix(name, word) {
			candidates = append(candidates, head+name)
		}
	}
	return candidates
}

func (sess *session) words(commands bool) []string {
	if commands {
		return []string{":defs", ":help", ":ir", ":quit", ":reset", ":run"}
	}
	words := []string{"proc", "const", "in", "end", "if", "int"}
	for code := ast.Code(0); code < ast.CodeMax; code++ {
		if code.IsPrimitive() {
			words = append(words, code.String())
		}
	}
	for _, def := range sess.defs {
		words = append(words, def.DefName())
	}
	return words
}
