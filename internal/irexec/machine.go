// Package irexec interprets the subset of LLVM IR that stackc generates.
//
// Every first class value is an i64 or an i1, so the machine holds scalars as
// uint64 and aggregates as slices of them. The external print function is
// provided natively.
package irexec

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/jcorbin/stackc/internal/flushio"
	"github.com/jcorbin/stackc/internal/panicerr"
)

// PrintFunc names the natively provided output function.
const PrintFunc = "print"

// Machine executes functions of one module.
type Machine struct {
	funcs     map[string]*ir.Func
	output    io.Writer
	logfn     func(mess string, args ...interface{})
	stepLimit int

	// per Call state
	ctx    context.Context
	out    flushio.WriteFlusher
	steps  int
	frames []*frame
}

type frame struct {
	fn    *ir.Func
	block *ir.Block
	inst  ir.Instruction
	vals  map[value.Value][]uint64
}

// New creates a machine for m, which must not be modified while the machine
// is in use.
func New(m *ir.Module, opts ...Option) *Machine {
	mach := &Machine{
		funcs:  make(map[string]*ir.Func, len(m.Funcs)),
		output: io.Discard,
	}
	for _, fn := range m.Funcs {
		mach.funcs[fn.Name()] = fn
	}
	for _, opt := range opts {
		opt.apply(mach)
	}
	return mach
}

// Call runs the named function with the given arguments and returns its
// results: none for void, one for a scalar, or every field of an aggregate.
// Any failure during execution is returned as a *RuntimeError.
func (m *Machine) Call(ctx context.Context, name string, args ...uint64) (results []uint64, err error) {
	fn, defined := m.funcs[name]
	if !defined || len(fn.Blocks) == 0 {
		return nil, &NoFunctionError{Name: name}
	}
	if len(args) != len(fn.Params) {
		return nil, &ArgumentError{Func: name, Need: len(fn.Params), Have: len(args)}
	}

	m.ctx = ctx
	m.out = flushio.NewWriteFlusher(m.output)
	m.steps = 0
	m.frames = m.frames[:0]
	defer func() {
		if ferr := m.out.Flush(); err == nil && ferr != nil {
			err = ferr
		}
		m.ctx, m.out = nil, nil
	}()

	err = panicerr.Recover("irexec", func() error {
		results = m.call(fn, args)
		return nil
	})
	return results, err
}

func (m *Machine) logf(mess string, args ...interface{}) {
	if m.logfn != nil {
		m.logfn(mess, args...)
	}
}

// halt aborts the current Call, locating err by the active frames.
func (m *Machine) halt(err error) {
	re := &RuntimeError{Err: err}
	for _, f := range m.frames {
		re.Stack = append(re.Stack, fmt.Sprintf("%v:%v", f.fn.Name(), f.block.Name()))
	}
	if n := len(m.frames); n > 0 && m.frames[n-1].inst != nil {
		re.Inst = m.frames[n-1].inst.LLString()
	}
	m.logf("! %v", re)
	panicerr.Halt(re)
}

func (m *Machine) call(fn *ir.Func, args []uint64) []uint64 {
	if fn.Name() == PrintFunc && len(fn.Blocks) == 0 {
		m.print(args)
		return []uint64{0}
	}
	if len(fn.Blocks) == 0 {
		m.halt(&NoFunctionError{Name: fn.Name()})
	}

	f := &frame{
		fn:    fn,
		block: fn.Blocks[0],
		vals:  make(map[value.Value][]uint64),
	}
	for i, param := range fn.Params {
		f.vals[param] = []uint64{args[i]}
	}
	m.frames = append(m.frames, f)
	defer func() { m.frames = m.frames[:len(m.frames)-1] }()
	m.logf("> @%v%v", fn.Name(), args)

	var prev *ir.Block
	for {
		m.phis(f, prev)
		for _, inst := range f.block.Insts {
			if _, isPhi := inst.(*ir.InstPhi); isPhi {
				continue
			}
			f.inst = inst
			m.step()
			m.exec(f, inst)
		}
		f.inst = nil

		next, ret, done := m.term(f)
		if done {
			m.logf("< @%v%v", fn.Name(), ret)
			return ret
		}
		prev, f.block = f.block, next
	}
}

func (m *Machine) step() {
	m.steps++
	if m.stepLimit > 0 && m.steps > m.stepLimit {
		m.halt(ErrStepLimit)
	}
	if err := m.ctx.Err(); err != nil {
		m.halt(err)
	}
}

func (m *Machine) print(args []uint64) {
	if len(args) != 1 {
		m.halt(&ArgumentError{Func: PrintFunc, Need: 1, Have: len(args)})
	}
	var buf [21]byte
	b := strconv.AppendUint(buf[:0], args[0], 10)
	b = append(b, '\n')
	if _, err := m.out.Write(b); err != nil {
		m.halt(err)
	}
}

// phis evaluates the leading phi instructions of the current block together,
// choosing the incoming values from the predecessor block prev.
func (m *Machine) phis(f *frame, prev *ir.Block) {
	var phis []*ir.InstPhi
	var vals [][]uint64
	for _, inst := range f.block.Insts {
		phi, ok := inst.(*ir.InstPhi)
		if !ok {
			break
		}
		f.inst = phi
		m.step()
		var val []uint64
		for _, inc := range phi.Incs {
			if pred, ok := interface{}(inc.Pred).(*ir.Block); ok && pred == prev {
				val = m.value(f, inc.X)
				break
			}
		}
		if val == nil {
			m.halt(fmt.Errorf("phi has no incoming value from %v", blockName(prev)))
		}
		phis = append(phis, phi)
		vals = append(vals, val)
	}
	for i, phi := range phis {
		f.vals[phi] = vals[i]
	}
}

func blockName(b *ir.Block) string {
	if b == nil {
		return "function entry"
	}
	return "%" + b.Name()
}

func (m *Machine) exec(f *frame, inst ir.Instruction) {
	var result []uint64
	switch inst := inst.(type) {
	case *ir.InstAdd:
		result = []uint64{m.scalar(f, inst.X) + m.scalar(f, inst.Y)}
	case *ir.InstSub:
		result = []uint64{m.scalar(f, inst.X) - m.scalar(f, inst.Y)}
	case *ir.InstMul:
		result = []uint64{m.scalar(f, inst.X) * m.scalar(f, inst.Y)}

	case *ir.InstUDiv:
		x, y := m.scalar(f, inst.X), m.divisor(f, inst.Y)
		result = []uint64{x / y}
	case *ir.InstURem:
		x, y := m.scalar(f, inst.X), m.divisor(f, inst.Y)
		result = []uint64{x % y}
	case *ir.InstSDiv:
		x, y := m.signed(f, inst.X, inst.Y)
		result = []uint64{uint64(x / y)}
	case *ir.InstSRem:
		x, y := m.signed(f, inst.X, inst.Y)
		result = []uint64{uint64(x % y)}

	case *ir.InstICmp:
		x, y := m.scalar(f, inst.X), m.scalar(f, inst.Y)
		switch inst.Pred {
		case enum.IPredEQ:
			result = []uint64{boolValue(x == y)}
		case enum.IPredNE:
			result = []uint64{boolValue(x != y)}
		default:
			m.halt(fmt.Errorf("%w: icmp %v", ErrUnsupported, inst.Pred))
		}

	case *ir.InstZExt:
		result = []uint64{m.scalar(f, inst.From)}

	case *ir.InstCall:
		callee, ok := inst.Callee.(*ir.Func)
		if !ok {
			m.halt(fmt.Errorf("%w: indirect call", ErrUnsupported))
		}
		args := make([]uint64, len(inst.Args))
		for i, arg := range inst.Args {
			args[i] = m.scalar(f, arg)
		}
		result = m.call(callee, args)

	case *ir.InstInsertValue:
		agg := m.value(f, inst.X)
		i := m.index(agg, inst.Indices)
		result = append([]uint64(nil), agg...)
		result[i] = m.scalar(f, inst.Elem)

	case *ir.InstExtractValue:
		agg := m.value(f, inst.X)
		result = []uint64{agg[m.index(agg, inst.Indices)]}

	default:
		m.halt(ErrUnsupported)
	}

	m.logf("@ %v = %v", inst.LLString(), result)
	if v, ok := inst.(value.Value); ok {
		f.vals[v] = result
	}
}

// term executes the block terminator, returning either the next block or the
// function results.
func (m *Machine) term(f *frame) (next *ir.Block, results []uint64, done bool) {
	switch term := f.block.Term.(type) {
	case *ir.TermRet:
		if term.X == nil {
			return nil, nil, true
		}
		return nil, m.value(f, term.X), true

	case *ir.TermBr:
		return m.target(term.Target), nil, false

	case *ir.TermCondBr:
		if m.scalar(f, term.Cond) != 0 {
			return m.target(term.TargetTrue), nil, false
		}
		return m.target(term.TargetFalse), nil, false

	case nil:
		m.halt(fmt.Errorf("block %%%v has no terminator", f.block.Name()))
	default:
		m.halt(fmt.Errorf("%w: %v", ErrUnsupported, term.LLString()))
	}
	return nil, nil, false
}

func (m *Machine) target(v interface{}) *ir.Block {
	block, ok := v.(*ir.Block)
	if !ok {
		m.halt(fmt.Errorf("%w: branch to %T", ErrUnsupported, v))
	}
	return block
}

func (m *Machine) divisor(f *frame, v value.Value) uint64 {
	y := m.scalar(f, v)
	if y == 0 {
		m.halt(ErrDivideByZero)
	}
	return y
}

func (m *Machine) signed(f *frame, xv, yv value.Value) (x, y int64) {
	x, y = int64(m.scalar(f, xv)), int64(m.divisor(f, yv))
	if x == math.MinInt64 && y == -1 {
		m.halt(ErrDivideOverflow)
	}
	return x, y
}

func (m *Machine) index(agg []uint64, indices []uint64) int {
	if len(indices) != 1 || indices[0] >= uint64(len(agg)) {
		m.halt(fmt.Errorf("%w: aggregate index %v into %d fields", ErrUnsupported, indices, len(agg)))
	}
	return int(indices[0])
}

func (m *Machine) scalar(f *frame, v value.Value) uint64 {
	val := m.value(f, v)
	if len(val) != 1 {
		m.halt(fmt.Errorf("%w: aggregate %v used as a scalar", ErrUnsupported, v.Ident()))
	}
	return val[0]
}

func (m *Machine) value(f *frame, v value.Value) []uint64 {
	switch v := v.(type) {
	case *constant.Int:
		if v.X.IsUint64() {
			return []uint64{v.X.Uint64()}
		}
		return []uint64{uint64(v.X.Int64())}
	case *constant.Undef:
		if st, ok := v.Typ.(*types.StructType); ok {
			return make([]uint64, len(st.Fields))
		}
		return []uint64{0}
	}
	if val, ok := f.vals[v]; ok {
		return val
	}
	m.halt(fmt.Errorf("%v used before definition", v.Ident()))
	return nil
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
