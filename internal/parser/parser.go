// Package parser turns source text into an ast.Program.
//
// The grammar, over whitespace delimited tokens:
//
//	program    := definition*
//	definition := proc_def | const_def
//	proc_def   := "proc" IDENT type* ("--" type+)? "in" op* "end"
//	const_def  := "const" IDENT "in"? op* "end"
//	type       := "int"
//	op         := "+" | "-" | "*" | "divmod" | "idivmod" | "="
//	            | "drop" | "dup" | "print" | "swap"
//	            | "if" op* "end"
//	            | INTEGER_LITERAL | IDENT
//
// An INTEGER_LITERAL is any token that parses as an unsigned 64-bit decimal,
// optionally prefixed by "+".
//
// Parsing does not stop at the first error. A malformed operation is skipped
// up to the next "end", and a malformed definition header up to the next
// "proc" or "const", so one bad body does not hide problems in the rest of
// the program.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcorbin/stackc/internal/ast"
	"github.com/jcorbin/stackc/internal/fileinput"
)

// Parse parses all source text from r, reporting locations under name.
//
// The returned program holds every definition that got far enough to have a
// name, in source order, even when parsing failed; the error is then an
// ErrorList.
func Parse(name string, r io.Reader) (*ast.Program, error) {
	return ParseInputs(name, fileinput.Named(name, r))
}

// ParseString is a convenience for Parse on a string.
func ParseString(name, src string) (*ast.Program, error) {
	return Parse(name, strings.NewReader(src))
}

// ParseInputs parses the concatenation of several inputs into one program.
func ParseInputs(name string, inputs ...io.Reader) (*ast.Program, error) {
	toks, errs := Tokenize(inputs...)
	p := parser{name: name, toks: toks, errs: errs}
	p.program()
	return &ast.Program{Name: name, Defs: p.defs}, p.errs.Err()
}

const (
	kwProc   = "proc"
	kwConst  = "const"
	kwIn     = "in"
	kwEnd    = "end"
	kwIf     = "if"
	kwOutput = "--"
)

// IsKeyword returns true if token may not be used as a name.
func IsKeyword(token string) bool {
	switch token {
	case kwProc, kwConst, kwIn, kwEnd, kwIf, kwOutput:
		return true
	}
	if _, isType := ast.LookupType(token); isType {
		return true
	}
	_, isPrim := ast.LookupPrimitive(token)
	return isPrim
}

// isInteger returns true for decimal digits with an optional leading "+".
func isInteger(token string) bool {
	token = strings.TrimPrefix(token, "+")
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return len(token) > 0
}

type parser struct {
	name string
	toks []Token
	pos  int
	errs ErrorList
	defs []ast.Definition
}

func (p *parser) peek() (Token, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return Token{}, false
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	p.pos++
	return tok
}

func (p *parser) accept(text string) bool {
	if tok, ok := p.peek(); ok && tok.Text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) eofLoc() ast.Location {
	if i := len(p.toks) - 1; i >= 0 {
		return p.toks[i].Loc
	}
	return ast.Location{Name: p.name}
}

// unexpected records that the next token is not what was expected.
func (p *parser) unexpected(expected string) {
	err := &Error{Expected: expected}
	if tok, ok := p.peek(); ok {
		err.Loc, err.Token = tok.Loc, tok.Text
	} else {
		err.Loc, err.Err = p.eofLoc(), io.ErrUnexpectedEOF
	}
	if i := len(p.errs) - 1; i >= 0 {
		if last := p.errs[i]; last.Loc == err.Loc && last.Token == err.Token && last.Err == err.Err {
			return
		}
	}
	p.errs = append(p.errs, err)
}

func (p *parser) program() {
	for {
		tok, ok := p.peek()
		if !ok {
			return
		}
		switch tok.Text {
		case kwProc:
			p.procDef()
		case kwConst:
			p.constDef()
		default:
			p.unexpected(`"proc" or "const"`)
			p.skipTo(kwProc, kwConst)
		}
	}
}

// skipTo advances until the next token is one of stops, or input ends.
func (p *parser) skipTo(stops ...string) {
	for {
		tok, ok := p.peek()
		if !ok {
			return
		}
		for _, stop := range stops {
			if tok.Text == stop {
				return
			}
		}
		p.pos++
	}
}

func (p *parser) procDef() {
	start := p.next()
	name, ok := p.ident()
	if !ok {
		p.skipTo(kwProc, kwConst)
		return
	}

	proc := &ast.Proc{Name: name.Text, Loc: start.Loc}
	proc.Inputs = p.types()
	expected := `type, "--" or "in"`
	if p.accept(kwOutput) {
		if proc.Outputs = p.types(); len(proc.Outputs) == 0 {
			p.unexpected("type")
			p.skipTo(kwProc, kwConst)
			return
		}
		expected = `type or "in"`
	}
	if !p.accept(kwIn) {
		p.unexpected(expected)
		p.skipTo(kwProc, kwConst)
		return
	}

	proc.Body = p.body()
	p.end()
	p.defs = append(p.defs, proc)
}

func (p *parser) constDef() {
	start := p.next()
	name, ok := p.ident()
	if !ok {
		p.skipTo(kwProc, kwConst)
		return
	}

	def := &ast.Const{Name: name.Text, Loc: start.Loc}
	p.accept(kwIn)
	def.Body = p.body()
	p.end()
	p.defs = append(p.defs, def)
}

func (p *parser) ident() (Token, bool) {
	tok, ok := p.peek()
	if !ok || IsKeyword(tok.Text) || isInteger(tok.Text) {
		p.unexpected("name")
		return tok, false
	}
	p.pos++
	return tok, true
}

func (p *parser) types() (types []ast.Type) {
	for {
		tok, ok := p.peek()
		if !ok {
			return types
		}
		t, isType := ast.LookupType(tok.Text)
		if !isType {
			return types
		}
		types = append(types, t)
		p.pos++
	}
}

func (p *parser) end() {
	if !p.accept(kwEnd) {
		p.unexpected(`operation or "end"`)
	}
}

// body parses operations up to, but not including, the closing "end".
// A "proc" or "const" token also ends the body, since neither can start an
// operation; the caller then reports the missing "end".
func (p *parser) body() (ops []ast.Op) {
	for {
		tok, ok := p.peek()
		if !ok {
			return ops
		}
		switch tok.Text {
		case kwEnd, kwProc, kwConst:
			return ops
		}
		if op, ok := p.op(); ok {
			ops = append(ops, op)
		} else {
			p.skipTo(kwEnd, kwProc, kwConst)
		}
	}
}

func (p *parser) op() (ast.Op, bool) {
	tok := p.next()
	if code, ok := ast.LookupPrimitive(tok.Text); ok {
		return ast.Op{Code: code, Loc: tok.Loc}, true
	}

	if tok.Text == kwIf {
		op := ast.Op{Code: ast.If, Loc: tok.Loc}
		op.Body = p.body()
		p.end()
		return op, true
	}

	if IsKeyword(tok.Text) {
		p.errs = append(p.errs, &Error{Loc: tok.Loc, Token: tok.Text, Expected: "operation"})
		return ast.Op{}, false
	}

	if isInteger(tok.Text) {
		n, err := strconv.ParseUint(strings.TrimPrefix(tok.Text, "+"), 10, 64)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) {
				err = numErr.Err
			}
			p.errs = append(p.errs, &Error{
				Loc:   tok.Loc,
				Token: tok.Text,
				Err:   fmt.Errorf("%w: %v", errMalformedInteger, err),
			})
			return ast.Op{}, false
		}
		return ast.Op{Code: ast.Integer, Int: n, Loc: tok.Loc}, true
	}

	return ast.Op{Code: ast.Word, Name: tok.Text, Loc: tok.Loc}, true
}
