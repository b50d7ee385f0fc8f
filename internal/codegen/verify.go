package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// verifyFunc checks the structural rules of a generated function that the IR
// builder does not enforce itself.
func verifyFunc(fn *ir.Func) error {
	if len(fn.Blocks) == 0 {
		return &VerifyError{Func: fn.Name(), Reason: "no basic blocks"}
	}
	for _, block := range fn.Blocks {
		if err := verifyBlock(fn, block); err != nil {
			return err
		}
	}
	return nil
}

func verifyBlock(fn *ir.Func, block *ir.Block) error {
	fail := func(reason string, args ...interface{}) error {
		return &VerifyError{Func: fn.Name(), Block: block.Name(), Reason: fmt.Sprintf(reason, args...)}
	}

	if block.Term == nil {
		return fail("missing terminator")
	}

	leading := true
	for i, inst := range block.Insts {
		switch inst := inst.(type) {
		case *ir.InstPhi:
			if !leading {
				return fail("phi at instruction %d after non-phi", i)
			}
			if len(inst.Incs) == 0 {
				return fail("phi with no incoming values")
			}
		case *ir.InstCall:
			leading = false
			if callee, ok := inst.Callee.(*ir.Func); ok && len(inst.Args) != len(callee.Params) {
				return fail("call to @%v passes %d argument(s), want %d",
					callee.Name(), len(inst.Args), len(callee.Params))
			}
		default:
			leading = false
		}
	}

	if ret, ok := block.Term.(*ir.TermRet); ok {
		want := fn.Sig.RetType
		switch {
		case ret.X == nil:
			if !types.Equal(want, types.Void) {
				return fail("void return from function returning %v", want)
			}
		case !types.Equal(ret.X.Type(), want):
			return fail("returns %v, want %v", ret.X.Type(), want)
		}
	}
	return nil
}
