// Package runtime provides the small set of host functions a running
// program can call out to: putchard and printd, the two I/O builtins
// spec.md's glossary names. They are ordinary Go functions exported to
// C via cgo so the JIT's execution engine can bind a program's extern
// declarations directly to this process's own code, instead of
// shelling out to a separate runtime library.
package runtime

/*
#include <stdio.h>

extern double putchard(double X);
extern double printd(double X);

static void *kjit_putchard_addr() { return (void*)putchard; }
static void *kjit_printd_addr()   { return (void*)printd; }
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/ajsnow/llvm"
)

//export putchard
func putchard(x C.double) C.double {
	os.Stdout.Write([]byte{byte(x)})
	return 0
}

//export printd
func printd(x C.double) C.double {
	fmt.Printf("%f\n", float64(x))
	return 0
}

// BindGlobals binds any "putchard" / "printd" extern declarations
// present in module to this process's own exported implementations,
// so a JIT'd call instruction resolves to Go code rather than an
// unresolved symbol. A program that never declares one of these
// externs simply has nothing to bind.
func BindGlobals(engine llvm.ExecutionEngine, module llvm.Module) {
	bindGlobal(engine, module, "putchard", unsafe.Pointer(C.kjit_putchard_addr()))
	bindGlobal(engine, module, "printd", unsafe.Pointer(C.kjit_printd_addr()))
}

func bindGlobal(engine llvm.ExecutionEngine, module llvm.Module, name string, addr unsafe.Pointer) {
	fn := module.NamedFunction(name)
	if fn.IsNil() {
		return
	}
	engine.AddGlobalMapping(fn, addr)
}
