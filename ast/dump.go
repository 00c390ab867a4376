package ast

import (
	"bytes"
	"fmt"
)

const dumpIndentSize = 2

// DumpVisitor renders an expression tree as indented text, adapted
// from the interpreter's original root-level PrintingVisitor for the
// trimmed-down Kaleidoscope node set. Used by "kjit --dump-ast".
type DumpVisitor struct {
	Indent int
	Buf    bytes.Buffer
}

func (d *DumpVisitor) indent() {
	for i := 0; i < d.Indent; i++ {
		d.Buf.WriteString(" ")
	}
}

func (d *DumpVisitor) line(format string, args ...interface{}) {
	d.indent()
	d.Buf.WriteString(fmt.Sprintf(format, args...))
	d.Buf.WriteString("\n")
}

// String returns the accumulated dump text.
func (d *DumpVisitor) String() string {
	return d.Buf.String()
}

// VisitFunction dumps a top-level function definition (or extern,
// when Body is nil).
func (d *DumpVisitor) VisitFunction(fn *Function) {
	if fn.Body == nil {
		d.line("Extern %s(%v)", fn.Proto.Name, fn.Proto.Args)
		return
	}
	d.line("Function %s(%v)", fn.Proto.Name, fn.Proto.Args)
	d.Indent += dumpIndentSize
	d.Visit(fn.Body)
	d.Indent -= dumpIndentSize
}

// Visit dumps a single expression node and recurses into its children.
func (d *DumpVisitor) Visit(e Expr) {
	switch n := e.(type) {
	case *Number:
		d.line("Number %g", n.Value)
	case *Variable:
		d.line("Variable %s", n.Name)
	case *Unary:
		d.line("Unary %c", n.Op)
		d.Indent += dumpIndentSize
		d.Visit(n.Operand)
		d.Indent -= dumpIndentSize
	case *Binary:
		d.line("Binary %c", n.Op)
		d.Indent += dumpIndentSize
		d.Visit(n.Lhs)
		d.Visit(n.Rhs)
		d.Indent -= dumpIndentSize
	case *Call:
		d.line("Call %s", n.Callee)
		d.Indent += dumpIndentSize
		for _, arg := range n.Args {
			d.Visit(arg)
		}
		d.Indent -= dumpIndentSize
	case *If:
		d.line("If")
		d.Indent += dumpIndentSize
		d.Visit(n.Cond)
		d.Visit(n.Then)
		d.Visit(n.Else)
		d.Indent -= dumpIndentSize
	case *For:
		d.line("For %s", n.Var)
		d.Indent += dumpIndentSize
		d.Visit(n.Start)
		d.Visit(n.End)
		if n.Step != nil {
			d.Visit(n.Step)
		}
		d.Visit(n.Body)
		d.Indent -= dumpIndentSize
	case *Var:
		d.line("Var")
		d.Indent += dumpIndentSize
		for _, b := range n.Bindings {
			d.line("Binding %s", b.Name)
			if b.Init != nil {
				d.Indent += dumpIndentSize
				d.Visit(b.Init)
				d.Indent -= dumpIndentSize
			}
		}
		d.Visit(n.Body)
		d.Indent -= dumpIndentSize
	default:
		d.line("<unknown node %T>", n)
	}
}
