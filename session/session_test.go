package session

import (
	"testing"

	"github.com/kaleidojit/kjit/ast"
	"github.com/kaleidojit/kjit/lexer"
	"github.com/kaleidojit/kjit/parser"
	"github.com/stretchr/testify/assert"
)

// runStatements feeds src through the parser one top-level statement
// at a time, the same way the REPL and file driver do, and returns
// the float64 result of the final top-level expression evaluated.
func runStatements(t *testing.T, s *Session, src string) float64 {
	t.Helper()
	p := parser.NewParser(src)
	var last float64
	for {
		p.SkipSemicolon()
		if p.AtEOF() {
			break
		}
		switch p.Curr.Type {
		case lexer.DEF:
			fn, err := p.ParseDefinition()
			assert.NoError(t, err)
			assert.NoError(t, s.DefineFunction(fn))
		case lexer.EXTERN:
			proto, err := p.ParseExtern()
			assert.NoError(t, err)
			assert.NoError(t, s.DefineFunction(&ast.Function{Proto: proto, Body: nil}))
		default:
			fn, err := p.ParseTopLevelExpr()
			assert.NoError(t, err)
			v, err := s.EvalTopLevelExpr(fn)
			assert.NoError(t, err)
			last = v
		}
	}
	return last
}

func TestScenario1_SimpleArithmetic(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	assert.Equal(t, 9.0, runStatements(t, s, "4 + 5;"))
}

func TestScenario2_DefineAndCall(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	got := runStatements(t, s, "def foo(a b) a*a + 2*a*b + b*b; foo(3, 4);")
	assert.Equal(t, 49.0, got)
}

func TestScenario3_ExternHostFunction(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	got := runStatements(t, s, "extern sin(x); sin(1.0);")
	assert.InDelta(t, 0.8414709848078965, got, 1e-12)
}

func TestScenario4_RecursiveFib(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	got := runStatements(t, s, "def fib(n) if n < 3 then 1 else fib(n-1) + fib(n-2); fib(10);")
	assert.Equal(t, 55.0, got)
}

func TestScenario5_ForLoopAlwaysReturnsZero(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	got := runStatements(t, s, "def loop(n) for i = 1, i < n, 1.0 in i; loop(5);")
	assert.Equal(t, 0.0, got)
}

func TestScenario6_UserOperatorAndVarAssignment(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	got := runStatements(t, s, "def binary : 1 (x y) y; def mut(a) var x = 0 in (x = a : x); mut(7);")
	assert.Equal(t, 7.0, got)
}

func TestDefineFunction_ErrorPropagatesFromCodegen(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	err := s.DefineFunction(&ast.Function{
		Proto: &ast.Prototype{Name: "bad", Args: []string{}},
		Body:  &ast.Variable{Name: "ghost"},
	})
	assert.Error(t, err)
}
