package codegen

import "github.com/ajsnow/llvm"

// Optimizer owns the per-function legacy pass pipeline spec.md names:
// promote-memory-to-register, instruction combining, reassociation,
// global value numbering, and CFG simplification, run once over each
// function immediately after it verifies.
type Optimizer struct {
	fpm llvm.PassManager
}

// NewOptimizer builds and initializes the pass pipeline for module.
func NewOptimizer(module llvm.Module) *Optimizer {
	fpm := llvm.NewFunctionPassManagerForModule(module)
	fpm.AddPromoteMemoryToRegisterPass()
	fpm.AddInstructionCombiningPass()
	fpm.AddReassociatePass()
	fpm.AddGVNPass()
	fpm.AddCFGSimplificationPass()
	fpm.InitializeFunc()
	return &Optimizer{fpm: fpm}
}

// Run optimizes fn in place.
func (o *Optimizer) Run(fn llvm.Value) {
	o.fpm.RunFunc(fn)
}

// Dispose finalizes and frees the underlying pass manager.
func (o *Optimizer) Dispose() {
	o.fpm.FinalizeFunc()
	o.fpm.Dispose()
}
