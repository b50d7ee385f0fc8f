package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/jcorbin/stackc/internal/ast"
)

// compileOp lowers one operation. Binary operations take y from the top of
// the stack and x from below it.
func (c *compiler) compileOp(op ast.Op) {
	c.loc = op.Loc
	c.logf("@", "%v -- depth:%v", op, len(c.stack))

	switch op.Code {
	case ast.Integer:
		// two's complement, so literals above MaxInt64 keep their bits
		c.push(constant.NewInt(types.I64, int64(op.Int)))

	case ast.Word:
		c.word(op)

	case ast.If:
		c.ifThen(op)

	case ast.Add:
		x, y := c.pop2(op)
		c.push(c.block.NewAdd(x, y))

	case ast.Sub:
		x, y := c.pop2(op)
		c.push(c.block.NewSub(x, y))

	case ast.Mul:
		x, y := c.pop2(op)
		c.push(c.block.NewMul(x, y))

	case ast.DivMod:
		x, y := c.pop2(op)
		c.push(c.block.NewUDiv(x, y))
		c.push(c.block.NewURem(x, y))

	case ast.IDivMod:
		x, y := c.pop2(op)
		c.push(c.block.NewSDiv(x, y))
		c.push(c.block.NewSRem(x, y))

	case ast.Equal:
		x, y := c.pop2(op)
		c.push(c.block.NewZExt(c.block.NewICmp(enum.IPredEQ, x, y), types.I64))

	case ast.Drop:
		c.pop(op.String())

	case ast.Dup:
		x := c.pop(op.String())
		c.push(x)
		c.push(x)

	case ast.Swap:
		x, y := c.pop2(op)
		c.push(y)
		c.push(x)

	case ast.Print:
		c.block.NewCall(c.print, c.pop(op.String()))

	default:
		c.fail(codeError(op.Code))
	}
}

func (c *compiler) pop2(op ast.Op) (x, y value.Value) {
	xy := c.popN(op.String(), 2)
	return xy[0], xy[1]
}

// ifThen lowers a conditional into then, else, and end blocks. The else
// block has no operations, so the then body must leave the stack at the same
// depth; slots it changed are merged with phi nodes in the end block.
func (c *compiler) ifThen(op ast.Op) {
	cond := c.branchCond(c.pop(ast.If.String()))

	n := c.ifs
	c.ifs++
	thenBlock := c.fn.NewBlock(fmt.Sprintf("if%d.then", n))
	elseBlock := c.fn.NewBlock(fmt.Sprintf("if%d.else", n))
	endBlock := c.fn.NewBlock(fmt.Sprintf("if%d.end", n))
	c.block.NewCondBr(cond, thenBlock, elseBlock)

	before := append([]value.Value(nil), c.stack...)
	c.block = thenBlock
	for _, sub := range op.Body {
		c.compileOp(sub)
	}
	c.loc = op.Loc
	thenEnd := c.block
	thenEnd.NewBr(endBlock)
	elseBlock.NewBr(endBlock)

	if len(c.stack) != len(before) {
		c.fail(&StackImbalanceError{Before: len(before), After: len(c.stack)})
	}
	for i, v := range c.stack {
		if v != before[i] {
			c.stack[i] = endBlock.NewPhi(
				ir.NewIncoming(v, thenEnd),
				ir.NewIncoming(before[i], elseBlock))
		}
	}
	c.block = endBlock
}

// branchCond returns an i1 that is true when v is non-zero, reusing the
// comparison behind a zero extended boolean.
func (c *compiler) branchCond(v value.Value) value.Value {
	if ext, ok := v.(*ir.InstZExt); ok && types.Equal(ext.From.Type(), types.I1) {
		return ext.From
	}
	return c.block.NewICmp(enum.IPredNE, v, constant.NewInt(types.I64, 0))
}
