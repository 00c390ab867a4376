package codegen

import (
	"github.com/ajsnow/llvm"
	"github.com/kaleidojit/kjit/ast"
)

// truthy lowers the common "compare against 0.0" test shared by If and
// For. Decision D3: the comparison is FCmpONE, so NaN is treated as
// false (an ordered-not-equal predicate, unlike '<' which uses an
// unordered one) — preserved exactly rather than special-cased.
func (g *Generator) truthy(v llvm.Value) llvm.Value {
	zero := llvm.ConstFloat(g.Ctx.DoubleType(), 0.0)
	return g.Builder.CreateFCmp(llvm.FloatONE, v, zero, "ifcond")
}

func (g *Generator) lowerIf(n *ast.If) (llvm.Value, error) {
	condV, err := g.GenExpr(n.Cond)
	if err != nil {
		return llvm.Value{}, err
	}
	condBool := g.truthy(condV)

	fn := g.Builder.GetInsertBlock().Parent()
	thenBB := g.Ctx.AddBasicBlock(fn, "then")
	elseBB := g.Ctx.AddBasicBlock(fn, "else")
	mergeBB := g.Ctx.AddBasicBlock(fn, "ifcont")

	g.Builder.CreateCondBr(condBool, thenBB, elseBB)

	g.Builder.SetInsertPointAtEnd(thenBB)
	thenV, err := g.GenExpr(n.Then)
	if err != nil {
		return llvm.Value{}, err
	}
	g.Builder.CreateBr(mergeBB)
	// re-read: emitting the then-arm may itself have opened new blocks
	thenEndBB := g.Builder.GetInsertBlock()

	g.Builder.SetInsertPointAtEnd(elseBB)
	elseV, err := g.GenExpr(n.Else)
	if err != nil {
		return llvm.Value{}, err
	}
	g.Builder.CreateBr(mergeBB)
	elseEndBB := g.Builder.GetInsertBlock()

	g.Builder.SetInsertPointAtEnd(mergeBB)
	phi := g.Builder.CreatePHI(g.Ctx.DoubleType(), "iftmp")
	phi.AddIncoming([]llvm.Value{thenV, elseV}, []llvm.BasicBlock{thenEndBB, elseEndBB})
	return phi, nil
}

// lowerFor lowers a for-loop to the classic preheader/loop/afterloop
// block shape: the induction variable's alloca lives in the entry
// block, seeded before the branch into loop, mutated at the bottom of
// loop, and tested there to decide whether to repeat or fall through
// to afterloop. A for-loop always evaluates to 0.0.
func (g *Generator) lowerFor(n *ast.For) (llvm.Value, error) {
	fn := g.Builder.GetInsertBlock().Parent()
	alloca := g.createEntryBlockAlloca(fn, n.Var)

	startV, err := g.GenExpr(n.Start)
	if err != nil {
		return llvm.Value{}, err
	}
	g.Builder.CreateStore(startV, alloca)

	loopBB := g.Ctx.AddBasicBlock(fn, "loop")
	g.Builder.CreateBr(loopBB)
	g.Builder.SetInsertPointAtEnd(loopBB)

	outer := g.Env
	g.Env = NewEnv(outer)
	g.Env.Bind(n.Var, alloca)

	if _, err := g.GenExpr(n.Body); err != nil {
		g.Env = outer
		return llvm.Value{}, err
	}

	var stepV llvm.Value
	if n.Step != nil {
		stepV, err = g.GenExpr(n.Step)
		if err != nil {
			g.Env = outer
			return llvm.Value{}, err
		}
	} else {
		// Decision D2: an omitted step defaults to 1.0.
		stepV = llvm.ConstFloat(g.Ctx.DoubleType(), 1.0)
	}

	curV := g.Builder.CreateLoad(alloca, n.Var)
	nextV := g.Builder.CreateFAdd(curV, stepV, "nextvar")
	g.Builder.CreateStore(nextV, alloca)

	endV, err := g.GenExpr(n.End)
	if err != nil {
		g.Env = outer
		return llvm.Value{}, err
	}
	endCond := g.truthy(endV)

	afterBB := g.Ctx.AddBasicBlock(fn, "afterloop")
	g.Builder.CreateCondBr(endCond, loopBB, afterBB)
	g.Builder.SetInsertPointAtEnd(afterBB)

	g.Env = outer
	return llvm.ConstFloat(g.Ctx.DoubleType(), 0.0), nil
}

// lowerVar pushes a child Env, materializes each binding's init
// expression into its own stack slot (default 0.0 when Init is nil),
// evaluates the body with all bindings visible, then restores the
// outer Env. Because var-in allows an initializer to reference
// bindings introduced earlier in the same binding list, each slot is
// bound into the child Env before the next initializer is evaluated.
func (g *Generator) lowerVar(n *ast.Var) (llvm.Value, error) {
	fn := g.Builder.GetInsertBlock().Parent()
	outer := g.Env
	g.Env = NewEnv(outer)

	for _, b := range n.Bindings {
		var initV llvm.Value
		if b.Init != nil {
			v, err := g.GenExpr(b.Init)
			if err != nil {
				g.Env = outer
				return llvm.Value{}, err
			}
			initV = v
		} else {
			initV = llvm.ConstFloat(g.Ctx.DoubleType(), 0.0)
		}
		alloca := g.createEntryBlockAlloca(fn, b.Name)
		g.Builder.CreateStore(initV, alloca)
		g.Env.Bind(b.Name, alloca)
	}

	bodyV, err := g.GenExpr(n.Body)
	g.Env = outer
	if err != nil {
		return llvm.Value{}, err
	}
	return bodyV, nil
}
