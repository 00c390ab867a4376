package parser

import (
	"testing"

	"github.com/kaleidojit/kjit/ast"
	"github.com/kaleidojit/kjit/lexer"
	"github.com/stretchr/testify/assert"
)

func TestParseExpression_LeftAssociativeEqualPrecedence(t *testing.T) {
	p := NewParser("1 - 2 - 3")
	e, err := p.ParseExpression()
	assert.NoError(t, err)

	// (1 - 2) - 3
	bin, ok := e.(*ast.Binary)
	assert.True(t, ok)
	assert.Equal(t, byte('-'), bin.Op)
	lhs, ok := bin.Lhs.(*ast.Binary)
	assert.True(t, ok)
	assert.Equal(t, byte('-'), lhs.Op)
	assert.Equal(t, 3.0, bin.Rhs.(*ast.Number).Value)
}

func TestParseExpression_HigherPrecedenceBindsTighter(t *testing.T) {
	p := NewParser("1 + 2 * 3")
	e, err := p.ParseExpression()
	assert.NoError(t, err)

	// 1 + (2 * 3)
	bin := e.(*ast.Binary)
	assert.Equal(t, byte('+'), bin.Op)
	assert.Equal(t, 1.0, bin.Lhs.(*ast.Number).Value)
	rhs := bin.Rhs.(*ast.Binary)
	assert.Equal(t, byte('*'), rhs.Op)
}

func TestParseExpression_Parens(t *testing.T) {
	p := NewParser("(1 + 2) * 3")
	e, err := p.ParseExpression()
	assert.NoError(t, err)
	bin := e.(*ast.Binary)
	assert.Equal(t, byte('*'), bin.Op)
	_, ok := bin.Lhs.(*ast.Binary)
	assert.True(t, ok)
}

func TestParseExpression_Call(t *testing.T) {
	p := NewParser("foo(1, 2 + 3)")
	e, err := p.ParseExpression()
	assert.NoError(t, err)
	call := e.(*ast.Call)
	assert.Equal(t, "foo", call.Callee)
	assert.Len(t, call.Args, 2)
}

func TestParseExpression_Assignment(t *testing.T) {
	p := NewParser("x = 5")
	e, err := p.ParseExpression()
	assert.NoError(t, err)
	bin := e.(*ast.Binary)
	assert.Equal(t, byte('='), bin.Op)
	assert.Equal(t, "x", bin.Lhs.(*ast.Variable).Name)
}

func TestParseIf(t *testing.T) {
	p := NewParser("if x then 1 else 2")
	e, err := p.ParseExpression()
	assert.NoError(t, err)
	ifE := e.(*ast.If)
	assert.Equal(t, "x", ifE.Cond.(*ast.Variable).Name)
}

func TestParseFor_WithStep(t *testing.T) {
	p := NewParser("for i = 1, i < 10, 2 in i")
	e, err := p.ParseExpression()
	assert.NoError(t, err)
	forE := e.(*ast.For)
	assert.Equal(t, "i", forE.Var)
	assert.NotNil(t, forE.Step)
}

func TestParseFor_WithoutStep(t *testing.T) {
	p := NewParser("for i = 1, i < 10 in i")
	e, err := p.ParseExpression()
	assert.NoError(t, err)
	forE := e.(*ast.For)
	assert.Nil(t, forE.Step)
}

func TestParseVar_MultipleBindings(t *testing.T) {
	p := NewParser("var x = 1, y in x + y")
	e, err := p.ParseExpression()
	assert.NoError(t, err)
	varE := e.(*ast.Var)
	assert.Len(t, varE.Bindings, 2)
	assert.NotNil(t, varE.Bindings[0].Init)
	assert.Nil(t, varE.Bindings[1].Init)
}

func TestParsePrototype_PlainFunction(t *testing.T) {
	p := NewParser("foo(a b)")
	proto, err := p.ParsePrototype()
	assert.NoError(t, err)
	assert.Equal(t, "foo", proto.Name)
	assert.Equal(t, []string{"a", "b"}, proto.Args)
	assert.False(t, proto.IsOperator)
}

func TestParsePrototype_BinaryOperatorDefaultPrecedence(t *testing.T) {
	p := NewParser("binary: (x y)")
	proto, err := p.ParsePrototype()
	assert.NoError(t, err)
	assert.Equal(t, "binary:", proto.Name)
	assert.True(t, proto.IsBinaryOp())
	assert.Equal(t, 30, proto.Precedence)
}

func TestParsePrototype_BinaryOperatorExplicitPrecedence(t *testing.T) {
	p := NewParser("binary: 1 (x y)")
	proto, err := p.ParsePrototype()
	assert.NoError(t, err)
	assert.Equal(t, 1, proto.Precedence)
}

func TestParsePrototype_BinaryOperatorBadPrecedence(t *testing.T) {
	p := NewParser("binary: 101 (x y)")
	_, err := p.ParsePrototype()
	assert.Error(t, err)
}

func TestParsePrototype_UnaryOperator(t *testing.T) {
	p := NewParser("unary! (x)")
	proto, err := p.ParsePrototype()
	assert.NoError(t, err)
	assert.Equal(t, "unary!", proto.Name)
	assert.True(t, proto.IsUnaryOp())
}

func TestParseDefinition_InstallsUserOperatorPrecedence(t *testing.T) {
	p := NewParser("def binary: 1 (x y) y")
	fn, err := p.ParseDefinition()
	assert.NoError(t, err)
	assert.Equal(t, "binary:", fn.Proto.Name)
	assert.Equal(t, 1, p.Prec.Get(':'))
}

func TestParseDefinition_UserOperatorUsableInSameSession(t *testing.T) {
	p := NewParser("def binary: 1 (x y) y; def mut(a) var x = 0 in (x = a : x)")
	_, err := p.ParseDefinition()
	assert.NoError(t, err)
	p.SkipSemicolon()
	fn, err := p.ParseDefinition()
	assert.NoError(t, err)
	assert.Equal(t, "mut", fn.Proto.Name)
}

func TestParseExtern(t *testing.T) {
	p := NewParser("extern sin(x)")
	assert.Equal(t, lexer.EXTERN, p.Curr.Type)
	proto, err := p.ParseExtern()
	assert.NoError(t, err)
	assert.Equal(t, "sin", proto.Name)
}

func TestParseTopLevelExpr_WrapsInAnonFunction(t *testing.T) {
	p := NewParser("4 + 5")
	fn, err := p.ParseTopLevelExpr()
	assert.NoError(t, err)
	assert.Equal(t, AnonExprName, fn.Proto.Name)
	assert.Empty(t, fn.Proto.Args)
}

func TestParseError_UnknownTokenInExpression(t *testing.T) {
	p := NewParser(")")
	_, err := p.ParseExpression()
	assert.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}
