// Package ast defines the parsed form of a stack program: an ordered list of
// proc and const definitions whose bodies are ordered operation sequences.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcorbin/stackc/internal/fileinput"
)

// Location is a source position.
type Location = fileinput.Location

// Program is the result of parsing one or more source inputs.
type Program struct {
	Name string
	Defs []Definition
}

// Lookup returns the first definition named name, or nil.
func (prog *Program) Lookup(name string) Definition {
	for _, def := range prog.Defs {
		if def.DefName() == name {
			return def
		}
	}
	return nil
}

// Definition is either a *Proc or a *Const.
type Definition interface {
	DefName() string
	DefLoc() Location
	DefBody() []Op
	isDefinition()
}

// Proc is a callable definition with a stack signature.
// Outputs is empty unless the source declared them with "--".
type Proc struct {
	Name    string
	Inputs  []Type
	Outputs []Type
	Body    []Op
	Loc     Location
}

// Const is a named operation sequence, inlined wherever referenced.
type Const struct {
	Name string
	Body []Op
	Loc  Location
}

func (*Proc) isDefinition()  {}
func (*Const) isDefinition() {}

func (p *Proc) DefName() string   { return p.Name }
func (p *Proc) DefLoc() Location  { return p.Loc }
func (p *Proc) DefBody() []Op     { return p.Body }
func (c *Const) DefName() string  { return c.Name }
func (c *Const) DefLoc() Location { return c.Loc }
func (c *Const) DefBody() []Op    { return c.Body }

// DeclaresOutputs returns true if the proc has a "--" clause.
func (p *Proc) DeclaresOutputs() bool { return len(p.Outputs) > 0 }

// Type is the closed set of value types.
type Type int

const (
	Int Type = iota

	typeMax
)

var typeNames = [typeMax]string{
	"int",
}

func (t Type) String() string {
	if t >= 0 && t < typeMax {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// LookupType returns the type spelled by token.
func LookupType(token string) (Type, bool) {
	for t, name := range typeNames {
		if name == token {
			return Type(t), true
		}
	}
	return 0, false
}

// Code identifies an operation.
type Code int

const (
	Integer Code = iota // INTEGER_LITERAL  push a constant
	Word                // IDENT            call a proc or inline a const
	If                  // if ... end       run the body when the popped condition is non-zero

	Add     // +        x y -- x+y
	Sub     // -        x y -- x-y
	Mul     // *        x y -- x*y
	DivMod  // divmod   x y -- x/y x%y   unsigned
	IDivMod // idivmod  x y -- x/y x%y   signed
	Equal   // =        x y -- x==y
	Drop    // drop     x --
	Dup     // dup      x -- x x
	Print   // print    x --
	Swap    // swap     x y -- y x

	CodeMax
	firstPrimitive = Add
)

var codeNames = [CodeMax]string{
	"integer",
	"word",
	"if",

	"+",
	"-",
	"*",
	"divmod",
	"idivmod",
	"=",
	"drop",
	"dup",
	"print",
	"swap",
}

func (code Code) String() string {
	if code >= 0 && code < CodeMax {
		return codeNames[code]
	}
	return fmt.Sprintf("Code(%d)", int(code))
}

// IsPrimitive returns true for codes spelled by a fixed token.
func (code Code) IsPrimitive() bool { return code >= firstPrimitive && code < CodeMax }

// LookupPrimitive returns the primitive operation spelled by token.
func LookupPrimitive(token string) (Code, bool) {
	for code := firstPrimitive; code < CodeMax; code++ {
		if codeNames[code] == token {
			return code, true
		}
	}
	return 0, false
}

// Op is one operation of a definition body.
// Int is set for Integer, Name for Word, Body for If.
type Op struct {
	Code Code
	Int  uint64
	Name string
	Body []Op
	Loc  Location
}

// String returns the source form of the operation.
func (op Op) String() string {
	switch op.Code {
	case Integer:
		return strconv.FormatUint(op.Int, 10)
	case Word:
		return op.Name
	case If:
		var sb strings.Builder
		sb.WriteString("if")
		for _, sub := range op.Body {
			sb.WriteByte(' ')
			sb.WriteString(sub.String())
		}
		sb.WriteString(" end")
		return sb.String()
	default:
		return op.Code.String()
	}
}

// Signature returns the source form of the proc header, like
// "proc name int int -- int".
func (p *Proc) Signature() string {
	var sb strings.Builder
	sb.WriteString("proc ")
	sb.WriteString(p.Name)
	for _, t := range p.Inputs {
		sb.WriteByte(' ')
		sb.WriteString(t.String())
	}
	if len(p.Outputs) > 0 {
		sb.WriteString(" --")
		for _, t := range p.Outputs {
			sb.WriteByte(' ')
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}
