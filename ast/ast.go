/*
File    : kjit/ast/ast.go

Package ast defines the Kaleidoscope abstract syntax tree. Every
Expr node evaluates to a single float64; the tree is owned
exclusively by its parent (never shared, never cyclic).
*/
package ast

// Expr is implemented by every expression node kind.
type Expr interface {
	exprNode()
}

// Number is a floating-point literal.
type Number struct {
	Value float64
}

// Variable is a reference to a named value.
type Variable struct {
	Name string
}

// Unary is a prefix application of a user-defined unary operator.
type Unary struct {
	Op      byte
	Operand Expr
}

// Binary is an infix operator application. Op == '=' is a distinct
// assignment form; Lhs must be a *Variable in that case.
type Binary struct {
	Op  byte
	Lhs Expr
	Rhs Expr
}

// Call invokes a named function (or user-defined operator) with an
// ordered argument list.
type Call struct {
	Callee string
	Args   []Expr
}

// If is a conditional expression; all three arms are mandatory.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// For is a counting loop. Step is nil when the source omitted it —
// codegen substitutes 1.0 in that case (see DESIGN.md, decision D2).
type For struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr // nil means "not specified"
	Body  Expr
}

// VarBinding is one name/initializer pair inside a Var expression.
// Init is nil when the source omitted an initializer, meaning 0.0.
type VarBinding struct {
	Name string
	Init Expr // nil means "default to 0.0"
}

// Var introduces one or more mutable local bindings, scoped to Body.
type Var struct {
	Bindings []VarBinding
	Body     Expr
}

func (*Number) exprNode()   {}
func (*Variable) exprNode() {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Call) exprNode()     {}
func (*If) exprNode()       {}
func (*For) exprNode()      {}
func (*Var) exprNode()      {}

// Prototype is a function signature without a body: a name, ordered
// parameter names, and (for user-defined operators) operator
// metadata. It is cloned by value into the session's cross-module
// function registry so later modules can re-declare it.
type Prototype struct {
	Name       string
	Args       []string
	IsOperator bool
	Precedence int // meaningful only when IsOperator && binary
}

// IsUnaryOp reports whether this prototype declares a unary operator
// (name is "unaryX" for some operator character X).
func (p *Prototype) IsUnaryOp() bool {
	return p.IsOperator && len(p.Args) == 1
}

// IsBinaryOp reports whether this prototype declares a binary
// operator (name is "binaryX" for some operator character X).
func (p *Prototype) IsBinaryOp() bool {
	return p.IsOperator && len(p.Args) == 2
}

// OperatorChar returns the operator character an operator prototype
// defines. Only valid when IsOperator is true.
func (p *Prototype) OperatorChar() byte {
	return p.Name[len(p.Name)-1]
}

// Clone makes an independent copy, safe to retain in the function
// registry after the defining module is discarded.
func (p *Prototype) Clone() *Prototype {
	args := make([]string, len(p.Args))
	copy(args, p.Args)
	return &Prototype{
		Name:       p.Name,
		Args:       args,
		IsOperator: p.IsOperator,
		Precedence: p.Precedence,
	}
}

// Function pairs a Prototype with its body expression. Body is never
// itself a Prototype or a nested Function.
type Function struct {
	Proto *Prototype
	Body  Expr
}
