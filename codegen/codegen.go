package codegen

import (
	"fmt"

	"github.com/ajsnow/llvm"
	"github.com/kaleidojit/kjit/ast"
)

// Generator lowers an *ast.Function into LLVM IR inside a single
// Module, the direct analogue of the source's CodeGenContext. Protos
// is the cross-module prototype registry: it is shared across every
// Generator a Session creates (one Generator per module, since each
// top-level expression gets its own throwaway module) so a function
// declared in one module is still callable — by re-declaration — from
// code emitted into a later module.
type Generator struct {
	Ctx     llvm.Context
	Module  llvm.Module
	Builder llvm.Builder
	Opt     *Optimizer
	Protos  map[string]*ast.Prototype

	// Env is the active named_values table; replaced per function and
	// temporarily shadowed by For/Var.
	Env *Env
}

// NewGenerator builds a Generator targeting module, sharing protos
// with whichever other Generators belong to the same session.
func NewGenerator(ctx llvm.Context, module llvm.Module, protos map[string]*ast.Prototype) *Generator {
	return &Generator{
		Ctx:     ctx,
		Module:  module,
		Builder: ctx.NewBuilder(),
		Opt:     NewOptimizer(module),
		Protos:  protos,
	}
}

// Dispose releases the Builder and per-function pass manager. The
// Module itself outlives a single Generator and is disposed by the
// owning session.
func (g *Generator) Dispose() {
	g.Builder.Dispose()
	g.Opt.Dispose()
}

// GenPrototype declares proto as an extern function in g.Module,
// re-declaring it if it was originally defined in a different module.
func (g *Generator) GenPrototype(proto *ast.Prototype) (llvm.Value, error) {
	doubles := make([]llvm.Type, len(proto.Args))
	for i := range doubles {
		doubles[i] = g.Ctx.DoubleType()
	}
	fnType := llvm.FunctionType(g.Ctx.DoubleType(), doubles, false)
	fn := llvm.AddFunction(g.Module, proto.Name, fnType)
	fn.SetLinkage(llvm.ExternalLinkage)
	for i, param := range fn.Params() {
		param.SetName(proto.Args[i])
	}
	return fn, nil
}

// getFunction resolves name to a callable llvm.Value: a function
// already declared in the current module, or else one materialized
// from the cross-module prototype registry. Used to resolve calls
// from expression bodies — it must never register anything into
// Protos itself, since a call site resolving a prototype is not the
// same event as that prototype's own definition succeeding.
func (g *Generator) getFunction(name string) (llvm.Value, error) {
	if fn := g.Module.NamedFunction(name); !fn.IsNil() {
		return fn, nil
	}
	proto, ok := g.Protos[name]
	if !ok {
		return llvm.Value{}, fmt.Errorf("unknown function referenced: %s", name)
	}
	return g.GenPrototype(proto)
}

// declareInModule returns proto's declaration in the current module,
// creating it if this is the first time proto.Name has been seen
// here. Unlike getFunction it never consults Protos, so declaring a
// brand-new function (which must be visible in the module before its
// own recursive calls can resolve) never depends on — or mutates —
// the cross-module registry.
func (g *Generator) declareInModule(proto *ast.Prototype) (llvm.Value, error) {
	if fn := g.Module.NamedFunction(proto.Name); !fn.IsNil() {
		return fn, nil
	}
	return g.GenPrototype(proto)
}

// createEntryBlockAlloca places a stack-slot alloca at the start of
// fn's entry block (rather than wherever the builder currently sits),
// the standard trick that lets mem2reg recognize and promote every
// such alloca back to SSA registers.
func (g *Generator) createEntryBlockAlloca(fn llvm.Value, name string) llvm.Value {
	entry := fn.EntryBasicBlock()
	tmp := g.Ctx.NewBuilder()
	defer tmp.Dispose()
	if first := entry.FirstInstruction(); !first.IsNil() {
		tmp.SetInsertPointBefore(first)
	} else {
		tmp.SetInsertPointAtEnd(entry)
	}
	return tmp.CreateAlloca(g.Ctx.DoubleType(), name)
}

// GenFunction emits fn's body, verifies the resulting IR, runs the
// per-function optimizer pipeline over it, and — only once all of
// that has succeeded — registers its prototype in the cross-module
// registry. A failed or rejected definition therefore never poisons
// what later modules believe is callable.
func (g *Generator) GenFunction(fn *ast.Function) (llvm.Value, error) {
	llvmFn, err := g.declareInModule(fn.Proto)
	if err != nil {
		return llvm.Value{}, err
	}
	if fn.Body == nil {
		g.Protos[fn.Proto.Name] = fn.Proto.Clone()
		return llvmFn, nil
	}
	if llvmFn.BasicBlocksCount() != 0 {
		return llvm.Value{}, fmt.Errorf("function cannot be redefined: %s", fn.Proto.Name)
	}

	entry := g.Ctx.AddBasicBlock(llvmFn, "entry")
	g.Builder.SetInsertPointAtEnd(entry)

	g.Env = NewEnv(nil)
	for i, param := range llvmFn.Params() {
		name := fn.Proto.Args[i]
		alloca := g.createEntryBlockAlloca(llvmFn, name)
		g.Builder.CreateStore(param, alloca)
		g.Env.Bind(name, alloca)
	}

	bodyVal, err := g.GenExpr(fn.Body)
	if err != nil {
		llvmFn.EraseFromParentAsFunction()
		return llvm.Value{}, err
	}
	g.Builder.CreateRet(bodyVal)

	if err := llvm.VerifyFunction(llvmFn, llvm.PrintMessageAction); err != nil {
		llvmFn.EraseFromParentAsFunction()
		return llvm.Value{}, fmt.Errorf("function verification failed for %s: %w", fn.Proto.Name, err)
	}

	g.Opt.Run(llvmFn)
	g.Protos[fn.Proto.Name] = fn.Proto.Clone()
	return llvmFn, nil
}

// GenExpr lowers a single expression node to an SSA value.
func (g *Generator) GenExpr(e ast.Expr) (llvm.Value, error) {
	switch n := e.(type) {
	case *ast.Number:
		return llvm.ConstFloat(g.Ctx.DoubleType(), n.Value), nil
	case *ast.Variable:
		slot, ok := g.Env.LookUp(n.Name)
		if !ok {
			return llvm.Value{}, fmt.Errorf("unknown variable name: %s", n.Name)
		}
		return g.Builder.CreateLoad(slot, n.Name), nil
	case *ast.Unary:
		return g.lowerUnary(n)
	case *ast.Binary:
		return g.lowerBinary(n)
	case *ast.Call:
		return g.lowerCall(n)
	case *ast.If:
		return g.lowerIf(n)
	case *ast.For:
		return g.lowerFor(n)
	case *ast.Var:
		return g.lowerVar(n)
	default:
		return llvm.Value{}, fmt.Errorf("codegen: unhandled expression node %T", n)
	}
}

func (g *Generator) lowerUnary(n *ast.Unary) (llvm.Value, error) {
	operand, err := g.GenExpr(n.Operand)
	if err != nil {
		return llvm.Value{}, err
	}
	fn, err := g.getFunction("unary" + string(n.Op))
	if err != nil {
		return llvm.Value{}, fmt.Errorf("unknown unary operator: %c", n.Op)
	}
	return g.Builder.CreateCall(fn, []llvm.Value{operand}, "unop"), nil
}

func (g *Generator) lowerBinary(n *ast.Binary) (llvm.Value, error) {
	if n.Op == '=' {
		variable, ok := n.Lhs.(*ast.Variable)
		if !ok {
			return llvm.Value{}, fmt.Errorf("destination of '=' must be a variable")
		}
		val, err := g.GenExpr(n.Rhs)
		if err != nil {
			return llvm.Value{}, err
		}
		slot, ok := g.Env.LookUp(variable.Name)
		if !ok {
			return llvm.Value{}, fmt.Errorf("unknown variable name: %s", variable.Name)
		}
		g.Builder.CreateStore(val, slot)
		return val, nil
	}

	lhs, err := g.GenExpr(n.Lhs)
	if err != nil {
		return llvm.Value{}, err
	}
	rhs, err := g.GenExpr(n.Rhs)
	if err != nil {
		return llvm.Value{}, err
	}

	switch n.Op {
	case '+':
		return g.Builder.CreateFAdd(lhs, rhs, "addtmp"), nil
	case '-':
		return g.Builder.CreateFSub(lhs, rhs, "subtmp"), nil
	case '*':
		return g.Builder.CreateFMul(lhs, rhs, "multmp"), nil
	case '<':
		// Decision D1: unordered-less-than, matching the later chapters
		// of the language this models rather than an ordered compare.
		cmp := g.Builder.CreateFCmp(llvm.FloatULT, lhs, rhs, "cmptmp")
		return g.Builder.CreateUIToFP(cmp, g.Ctx.DoubleType(), "booltmp"), nil
	default:
		fn, err := g.getFunction("binary" + string(n.Op))
		if err != nil {
			return llvm.Value{}, fmt.Errorf("unknown binary operator: %c", n.Op)
		}
		return g.Builder.CreateCall(fn, []llvm.Value{lhs, rhs}, "binop"), nil
	}
}

func (g *Generator) lowerCall(n *ast.Call) (llvm.Value, error) {
	fn, err := g.getFunction(n.Callee)
	if err != nil {
		return llvm.Value{}, err
	}
	if len(n.Args) != len(fn.Params()) {
		return llvm.Value{}, fmt.Errorf("incorrect number of arguments passed to %s", n.Callee)
	}
	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := g.GenExpr(a)
		if err != nil {
			return llvm.Value{}, err
		}
		args[i] = v
	}
	return g.Builder.CreateCall(fn, args, "calltmp"), nil
}
