package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	for code := firstPrimitive; code < CodeMax; code++ {
		assert.True(t, code.IsPrimitive(), "expected %v to be primitive", code)
		found, ok := LookupPrimitive(code.String())
		assert.True(t, ok, "expected to find %v", code)
		assert.Equal(t, code, found)
	}
	for _, code := range []Code{Integer, Word, If, CodeMax} {
		assert.False(t, code.IsPrimitive(), "expected %v to not be primitive", code)
	}
	_, ok := LookupPrimitive("if")
	assert.False(t, ok, "if is not a primitive")
	assert.Equal(t, "Code(13)", CodeMax.String())
	assert.Equal(t, "Code(-1)", Code(-1).String())
}

func TestType(t *testing.T) {
	typ, ok := LookupType("int")
	assert.True(t, ok)
	assert.Equal(t, Int, typ)
	assert.Equal(t, "int", typ.String())
	_, ok = LookupType("i64")
	assert.False(t, ok)
	assert.Equal(t, "Type(1)", typeMax.String())
}

func TestOp_String(t *testing.T) {
	op := Op{Code: If, Body: []Op{
		{Code: Integer, Int: 18446744073709551615},
		{Code: Word, Name: "foo"},
		{Code: If, Body: []Op{{Code: Print}}},
		{Code: DivMod},
	}}
	assert.Equal(t, "if 18446744073709551615 foo if print end divmod end", op.String())
}

func TestProc_Signature(t *testing.T) {
	for _, tc := range []struct {
		proc Proc
		sig  string
	}{
		{Proc{Name: "main"}, "proc main"},
		{Proc{Name: "take", Inputs: []Type{Int, Int}}, "proc take int int"},
		{Proc{Name: "two", Outputs: []Type{Int, Int}}, "proc two -- int int"},
		{Proc{Name: "double", Inputs: []Type{Int}, Outputs: []Type{Int}}, "proc double int -- int"},
	} {
		assert.Equal(t, tc.sig, tc.proc.Signature())
		assert.Equal(t, len(tc.proc.Outputs) > 0, tc.proc.DeclaresOutputs())
	}
}

func TestProgram_Lookup(t *testing.T) {
	prog := Program{Defs: []Definition{
		&Proc{Name: "a"},
		&Const{Name: "B"},
		&Proc{Name: "a", Inputs: []Type{Int}},
	}}
	assert.Same(t, prog.Defs[0], prog.Lookup("a"), "expected the first definition")
	assert.Same(t, prog.Defs[1], prog.Lookup("B"))
	assert.Nil(t, prog.Lookup("c"))
}
