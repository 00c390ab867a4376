// Package session drives one REPL or file run: a single llvm.Context
// shared across a sequence of short-lived modules (a new one after
// each top-level expression is run; definitions and externs go into
// the current one), plus the cross-module function-prototype registry that
// lets a function declared in an earlier, already-discarded module
// still be called from later code.
package session

import (
	"fmt"
	"sync"

	"github.com/ajsnow/llvm"
	"github.com/kaleidojit/kjit/ast"
	"github.com/kaleidojit/kjit/codegen"
	"github.com/kaleidojit/kjit/runtime"
)

var initNativeTarget sync.Once

// Session is the long-lived driver object; NewSession does the
// one-time native-target bring-up, and each Session owns its own
// llvm.Context until Dispose.
type Session struct {
	Ctx    llvm.Context
	Protos map[string]*ast.Prototype

	module llvm.Module
	gen    *codegen.Generator
	seq    int
}

// NewSession creates a driver ready to accept definitions and
// top-level expressions.
func NewSession() *Session {
	initNativeTarget.Do(func() {
		llvm.LinkInMCJIT()
		llvm.InitializeNativeTarget()
		llvm.InitializeNativeAsmPrinter()
	})

	s := &Session{
		Ctx:    llvm.NewContext(),
		Protos: map[string]*ast.Prototype{},
	}
	s.resetModule()
	return s
}

func (s *Session) resetModule() {
	if s.gen != nil {
		s.gen.Dispose()
	}
	s.seq++
	s.module = s.Ctx.NewModule(fmt.Sprintf("kjit_module_%d", s.seq))
	s.gen = codegen.NewGenerator(s.Ctx, s.module, s.Protos)
}

// DefineFunction lowers a "def" or "extern" into the current module
// without executing anything.
func (s *Session) DefineFunction(fn *ast.Function) error {
	_, err := s.gen.GenFunction(fn)
	return err
}

// EvalTopLevelExpr lowers and JITs fn — intended for the anonymous
// wrapper ParseTopLevelExpr produces — and returns its float64
// result. Every call gets its own throwaway ExecutionEngine over the
// current module; once the engine disposes of that module, the
// session rotates to a fresh one so the next statement starts clean.
func (s *Session) EvalTopLevelExpr(fn *ast.Function) (float64, error) {
	llvmFn, err := s.gen.GenFunction(fn)
	if err != nil {
		return 0, err
	}

	engine, err := llvm.NewExecutionEngine(s.module)
	if err != nil {
		return 0, fmt.Errorf("failed to create execution engine: %w", err)
	}
	defer engine.Dispose()

	runtime.BindGlobals(engine, s.module)

	result := engine.RunFunction(llvmFn, nil)
	value := result.Float(s.Ctx.DoubleType())

	s.resetModule()
	return value, nil
}

// DumpModule renders the current (not-yet-executed) module's IR as
// text.
func (s *Session) DumpModule() string {
	return s.module.String()
}

// Dispose releases the session's generator and LLVM context.
func (s *Session) Dispose() {
	s.gen.Dispose()
	s.Ctx.Dispose()
}
