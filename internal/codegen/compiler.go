// Package codegen lowers an ast.Program to an LLVM IR module.
//
// Generation simulates the operand stack: each operation pops and pushes IR
// values instead of runtime stack slots, so a proc body becomes straight
// line SSA code. A proc named by a word is compiled the first time it is
// referenced, and consts are inlined in place. Every generated module also
// declares the external runtime function
//
//	declare i64 @print(i64)
//
// whose result is ignored.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/jcorbin/stackc/internal/ast"
	"github.com/jcorbin/stackc/internal/panicerr"
)

// PrintFunc names the runtime function called by the print operation.
const PrintFunc = "print"

// Compile generates a module from prog, which must not be modified
// afterwards. On any failure no module is returned; the error is a
// *DuplicateDefinitionError or a *GenError wrapping one of the other error
// types of this package.
func Compile(prog *ast.Program, opts ...Option) (*ir.Module, error) {
	c := newCompiler(prog, opts...)
	if err := panicerr.Recover("codegen", func() error {
		c.compile()
		return nil
	}); err != nil {
		return nil, err
	}
	return c.module, nil
}

type state int

const (
	notStarted state = iota
	inProgress
	done
)

type compiler struct {
	logging
	strictReturns bool

	prog   *ast.Program
	module *ir.Module
	print  *ir.Func

	states map[string]state
	funcs  map[string]*ir.Func
	active []string // definitions being compiled or inlined, outermost first

	frame
}

// frame is the generation context of one proc body; compiling a callee
// saves and later restores the caller's frame.
type frame struct {
	def   ast.Definition
	index int
	loc   ast.Location

	fn    *ir.Func
	block *ir.Block
	stack []value.Value
	ifs   int
}

func newCompiler(prog *ast.Program, opts ...Option) *compiler {
	c := &compiler{
		prog:   prog,
		module: ir.NewModule(),
		states: make(map[string]state),
		funcs:  make(map[string]*ir.Func),
	}
	c.module.SourceFilename = prog.Name
	Options(opts...).apply(c)
	return c
}

func (c *compiler) halt(err error) {
	c.logf("!", "halt: %v", err)
	panicerr.Halt(err)
}

// fail halts with err located at the current operation.
func (c *compiler) fail(err error) {
	ge := &GenError{Index: c.index, Loc: c.loc, Err: err}
	if c.def != nil {
		ge.Def = c.def.DefName()
	}
	c.halt(ge)
}

func (c *compiler) compile() {
	c.validate()

	c.print = c.module.NewFunc(PrintFunc, types.I64, ir.NewParam("", types.I64))

	for _, def := range c.prog.Defs {
		if proc, ok := def.(*ast.Proc); ok && c.states[proc.Name] == notStarted {
			c.compileProc(proc)
		}
	}
}

// validate rejects duplicate names, so that a name resolves to exactly one
// definition regardless of definition kind or order.
func (c *compiler) validate() {
	seen := make(map[string]ast.Location, len(c.prog.Defs))
	seen[PrintFunc] = ast.Location{Name: "<builtin>"}
	for _, def := range c.prog.Defs {
		name := def.DefName()
		if prev, defined := seen[name]; defined {
			c.halt(&DuplicateDefinitionError{Name: name, Loc: def.DefLoc(), Prev: prev})
		}
		seen[name] = def.DefLoc()
	}
}

func (c *compiler) compileProc(proc *ast.Proc) *ir.Func {
	c.logf(">", "%v", proc.Signature())
	defer c.withLogPrefix("\t")()

	saved := c.frame
	c.frame = frame{def: proc, loc: proc.Loc}
	c.states[proc.Name] = inProgress
	c.active = append(c.active, proc.Name)

	params := make([]*ir.Param, len(proc.Inputs))
	for i, t := range proc.Inputs {
		params[i] = ir.NewParam("", c.irType(t))
	}
	c.fn = c.module.NewFunc(proc.Name, c.declaredReturnType(proc), params...)
	c.block = c.fn.NewBlock("entry")
	for _, param := range params {
		c.push(param)
	}

	c.compileBody(proc)
	c.index, c.loc = len(proc.Body), proc.Loc
	c.ret(proc)
	if err := verifyFunc(c.fn); err != nil {
		c.fail(err)
	}

	fn := c.fn
	c.states[proc.Name] = done
	c.funcs[proc.Name] = fn
	c.active = c.active[:len(c.active)-1]
	c.frame = saved
	c.logf("<", "%v returns %v", proc.Name, fn.Sig.RetType)
	return fn
}

func (c *compiler) compileBody(def ast.Definition) {
	for i, op := range def.DefBody() {
		c.index = i
		c.compileOp(op)
	}
}

// inline compiles a const body into the current block, on the current
// stack.
func (c *compiler) inline(def *ast.Const) {
	for _, name := range c.active {
		if name == def.Name {
			c.fail(&RecursionError{Chain: c.chain(def.Name)})
		}
	}

	c.logf("+", "inline %v", def.Name)
	defer c.withLogPrefix("\t")()

	def0, index0, loc0 := c.def, c.index, c.loc
	c.def = def
	c.active = append(c.active, def.Name)
	c.compileBody(def)
	c.active = c.active[:len(c.active)-1]
	c.def, c.index, c.loc = def0, index0, loc0
}

// word resolves a reference: a compiled proc is called, a const is
// inlined, and a proc not yet compiled is compiled first, then called.
func (c *compiler) word(op ast.Op) {
	switch c.states[op.Name] {
	case done:
		c.call(op.Name, c.funcs[op.Name])
		return
	case inProgress:
		c.fail(&RecursionError{Chain: c.chain(op.Name)})
	}

	switch def := c.prog.Lookup(op.Name).(type) {
	case *ast.Const:
		c.inline(def)
	case *ast.Proc:
		c.call(op.Name, c.compileProc(def))
	case nil:
		c.fail(&UnresolvedReferenceError{Name: op.Name})
	default:
		c.fail(fmt.Errorf("unsupported definition %T", def))
	}
}

// chain returns the reference path that leads back to name.
func (c *compiler) chain(name string) []string {
	for i, active := range c.active {
		if active == name {
			chain := append([]string(nil), c.active[i:]...)
			return append(chain, name)
		}
	}
	return []string{name, name}
}

// call pops the callee's arguments, deepest value first, and pushes its
// results: nothing for void, the value for a scalar, or every field of an
// aggregate in declaration order.
func (c *compiler) call(name string, fn *ir.Func) {
	args := c.popN(name, len(fn.Params))
	result := c.block.NewCall(fn, args...)
	switch rt := fn.Sig.RetType.(type) {
	case *types.VoidType:
	case *types.StructType:
		for i := range rt.Fields {
			c.push(c.block.NewExtractValue(result, uint64(i)))
		}
	default:
		c.push(result)
	}
}

// ret finishes the current function with the residual stack as its result.
func (c *compiler) ret(proc *ast.Proc) {
	n := len(c.stack)
	if proc.DeclaresOutputs() {
		if n != len(proc.Outputs) {
			c.fail(&MalformedReturnError{Proc: proc.Name, Declared: len(proc.Outputs), Have: n})
		}
	} else if n > 1 && c.strictReturns {
		c.fail(&MalformedReturnError{Proc: proc.Name, Have: n})
	}

	switch n {
	case 0:
		c.fn.Sig.RetType = types.Void
		c.block.NewRet(nil)
	case 1:
		c.fn.Sig.RetType = c.stack[0].Type()
		c.block.NewRet(c.stack[0])
	default:
		rt, declared := c.fn.Sig.RetType.(*types.StructType)
		if !declared {
			fields := make([]types.Type, n)
			for i, v := range c.stack {
				fields[i] = v.Type()
			}
			rt = types.NewStruct(fields...)
			c.fn.Sig.RetType = rt
		}
		var agg value.Value = constant.NewUndef(rt)
		for i, v := range c.stack {
			agg = c.block.NewInsertValue(agg, v, uint64(i))
		}
		c.block.NewRet(agg)
	}
	c.stack = c.stack[:0]
}

func (c *compiler) declaredReturnType(proc *ast.Proc) types.Type {
	switch len(proc.Outputs) {
	case 0:
		return types.Void
	case 1:
		return c.irType(proc.Outputs[0])
	}
	fields := make([]types.Type, len(proc.Outputs))
	for i, t := range proc.Outputs {
		fields[i] = c.irType(t)
	}
	return types.NewStruct(fields...)
}

func (c *compiler) irType(t ast.Type) types.Type {
	switch t {
	case ast.Int:
		return types.I64
	default:
		c.fail(typeError(t))
		return nil
	}
}

func (c *compiler) push(v value.Value) {
	c.stack = append(c.stack, v)
}

func (c *compiler) pop(what string) value.Value {
	return c.popN(what, 1)[0]
}

// popN removes the top n values, returning them deepest first.
func (c *compiler) popN(what string, n int) []value.Value {
	if have := len(c.stack); have < n {
		c.fail(&StackUnderflowError{Op: what, Need: n, Have: have})
	}
	i := len(c.stack) - n
	vals := append([]value.Value(nil), c.stack[i:]...)
	c.stack = c.stack[:i]
	return vals
}
