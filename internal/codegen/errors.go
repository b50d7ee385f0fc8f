package codegen

import (
	"fmt"
	"strings"

	"github.com/jcorbin/stackc/internal/ast"
)

// GenError locates a code generation failure: the definition whose body was
// being compiled, the index of the top level operation in that body, and the
// location of the (possibly nested) failing operation.
type GenError struct {
	Def   string
	Index int
	Loc   ast.Location
	Err   error
}

func (err *GenError) Error() string {
	var sb strings.Builder
	if err.Loc != (ast.Location{}) {
		sb.WriteString(err.Loc.String())
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "%v[%d]: %v", err.Def, err.Index, err.Err)
	return sb.String()
}

func (err *GenError) Unwrap() error { return err.Err }

// UnresolvedReferenceError reports a word that names no proc or const.
type UnresolvedReferenceError struct {
	Name string
}

func (err *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q", err.Name)
}

// StackUnderflowError reports an operation that needs more values than the
// stack holds.
type StackUnderflowError struct {
	Op   string
	Need int
	Have int
}

func (err *StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow: %v needs %d value(s), have %d", err.Op, err.Need, err.Have)
}

// MalformedReturnError reports a proc whose residual stack does not fit its
// return signature.
type MalformedReturnError struct {
	Proc     string
	Declared int // number of declared outputs, 0 when undeclared
	Have     int
}

func (err *MalformedReturnError) Error() string {
	if err.Declared == 0 {
		return fmt.Sprintf("proc %v leaves %d values without a declared signature", err.Proc, err.Have)
	}
	return fmt.Sprintf("proc %v declares %d output(s) but leaves %d", err.Proc, err.Declared, err.Have)
}

// RecursionError reports a definition that refers back to itself, directly
// or through other definitions, before it has finished compiling.
type RecursionError struct {
	Chain []string
}

func (err *RecursionError) Error() string {
	return fmt.Sprintf("recursive definition: %v", strings.Join(err.Chain, " -> "))
}

// StackImbalanceError reports an if body that changes the stack depth; with
// no else arm, both paths must leave the stack the same depth.
type StackImbalanceError struct {
	Before int
	After  int
}

func (err *StackImbalanceError) Error() string {
	return fmt.Sprintf("if body changes stack depth from %d to %d", err.Before, err.After)
}

// DuplicateDefinitionError reports a name defined more than once.
type DuplicateDefinitionError struct {
	Name string
	Loc  ast.Location
	Prev ast.Location
}

func (err *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("%v: %q already defined at %v", err.Loc, err.Name, err.Prev)
}

// VerifyError reports a malformed generated function.
type VerifyError struct {
	Func   string
	Block  string
	Reason string
}

func (err *VerifyError) Error() string {
	if err.Block == "" {
		return fmt.Sprintf("invalid function @%v: %v", err.Func, err.Reason)
	}
	return fmt.Sprintf("invalid function @%v block %%%v: %v", err.Func, err.Block, err.Reason)
}

type codeError ast.Code
type typeError ast.Type

func (code codeError) Error() string { return fmt.Sprintf("invalid operation code %v", ast.Code(code)) }
func (t typeError) Error() string    { return fmt.Sprintf("invalid type %v", ast.Type(t)) }
