/*
File    : kjit/parser/parser.go

Package parser implements a Pratt-style, precedence-climbing
recursive-descent parser for Kaleidoscope. It turns a token stream
from lexer.Lexer into the ast package's typed tree, owning the single
mutable operator-precedence table that lets user code register new
binary/unary operators mid-parse.
*/
package parser

import (
	"fmt"
	"strconv"

	"github.com/kaleidojit/kjit/ast"
	"github.com/kaleidojit/kjit/lexer"
)

// AnonExprName is the name codegen/session give to a top-level
// expression's wrapping zero-arity function.
const AnonExprName = "__anon_expr"

const minPrecedence = 0

// ParseError is returned (never panicked) for every "expected X"
// grammar violation, naming the expectation and the offending token.
// Keeping this a distinct type — rather than letting a nil AST node
// silently reach codegen — is the one deliberate departure this
// module takes from the upstream tutorial's Null-sentinel pattern.
type ParseError struct {
	Line, Column int
	Message      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%d:%d] parse error: %s", e.Line, e.Column, e.Message)
}

// Parser holds the token lookahead, the lexer it is pulling from, and
// the live operator-precedence table.
type Parser struct {
	Lex  lexer.Lexer
	Curr lexer.Token
	Next lexer.Token

	Prec *Precedence
}

// NewParser creates a parser over src, primed with two tokens of
// lookahead and the canonical operator table.
func NewParser(src string) *Parser {
	p := &Parser{
		Lex:  lexer.NewLexer(src),
		Prec: NewPrecedence(),
	}
	p.advance()
	p.advance()
	return p
}

// advance shifts the lookahead window forward by one token.
func (p *Parser) advance() {
	p.Curr = p.Next
	p.Next = p.Lex.NextToken()
}

// AtEOF reports whether the parser has consumed the entire input.
func (p *Parser) AtEOF() bool {
	return p.Curr.Type == lexer.EOF
}

// SkipSemicolon consumes a single bare ';' separator, the toplevel
// grammar's no-op production.
func (p *Parser) SkipSemicolon() bool {
	if p.isChar(";") {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.Curr.Line, Column: p.Curr.Column, Message: fmt.Sprintf(format, args...)}
}

// isChar reports whether the current token is the single-byte
// operator/punctuation token matching lit (e.g. "(", ")", ",", "=").
func (p *Parser) isChar(lit string) bool {
	return p.Curr.Type == lexer.CHAR && p.Curr.Literal == lit
}

func (p *Parser) expectChar(lit string) error {
	if !p.isChar(lit) {
		return p.errorf("expected %q, got %s", lit, p.Curr)
	}
	p.advance()
	return nil
}

// ParsePrototype parses the function-name/binary-operator/unary-
// operator prototype head shared by "def" and "extern".
func (p *Parser) ParsePrototype() (*ast.Prototype, error) {
	var name string
	isOperator := false
	precedence := 30 // default binary operator precedence

	switch p.Curr.Type {
	case lexer.IDENTIFIER:
		name = p.Curr.Literal
		p.advance()

	case lexer.UNARY:
		p.advance()
		if p.Curr.Type != lexer.CHAR {
			return nil, p.errorf("expected operator character after 'unary'")
		}
		name = "unary" + p.Curr.Literal
		isOperator = true
		p.advance()

	case lexer.BINARY:
		p.advance()
		if p.Curr.Type != lexer.CHAR {
			return nil, p.errorf("expected operator character after 'binary'")
		}
		name = "binary" + p.Curr.Literal
		isOperator = true
		p.advance()
		if p.Curr.Type == lexer.NUMBER {
			n, err := strconv.ParseFloat(p.Curr.Literal, 64)
			if err != nil || n != float64(int(n)) || n < 1 || n > 100 {
				return nil, p.errorf("invalid precedence: must be 1..100")
			}
			precedence = int(n)
			p.advance()
		}

	default:
		return nil, p.errorf("expected function name in prototype")
	}

	if err := p.expectChar("("); err != nil {
		return nil, p.errorf("expected '(' in prototype")
	}

	args := []string{}
	for p.Curr.Type == lexer.IDENTIFIER {
		args = append(args, p.Curr.Literal)
		p.advance()
	}

	if err := p.expectChar(")"); err != nil {
		return nil, p.errorf("expected ')' in prototype")
	}

	if isOperator {
		want := 2
		if len(name) > 0 && name[0] == 'u' { // "unary"
			want = 1
		}
		if len(args) != want {
			return nil, p.errorf("invalid number of operands for operator %s: want %d, got %d", name, want, len(args))
		}
	}

	return &ast.Prototype{Name: name, Args: args, IsOperator: isOperator, Precedence: precedence}, nil
}

// ParseDefinition parses "def" prototype expression. Curr must be
// the DEF token on entry; on a user-defined binary operator the
// parser's precedence table is updated before the body is parsed, so
// the new operator is usable inside its own definition's body.
func (p *Parser) ParseDefinition() (*ast.Function, error) {
	p.advance() // consume 'def'

	proto, err := p.ParsePrototype()
	if err != nil {
		return nil, err
	}
	if proto.IsBinaryOp() {
		p.Prec.Set(proto.OperatorChar(), proto.Precedence)
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Proto: proto, Body: body}, nil
}

// ParseExtern parses "extern" prototype. Curr must be the EXTERN
// token on entry.
func (p *Parser) ParseExtern() (*ast.Prototype, error) {
	p.advance() // consume 'extern'
	return p.ParsePrototype()
}

// ParseTopLevelExpr parses a bare expression and wraps it in an
// anonymous, zero-arity function so it can be code-generated and
// JIT-invoked like any other function.
func (p *Parser) ParseTopLevelExpr() (*ast.Function, error) {
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	proto := &ast.Prototype{Name: AnonExprName, Args: []string{}}
	return &ast.Function{Proto: proto, Body: body}, nil
}

// ParseExpression parses a full precedence-climbed expression:
// a unary term followed by zero or more (operator, unary term) pairs.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(minPrecedence, lhs)
}

// currentOpPrecedence returns the precedence of Curr if it is an
// operator character, or -1 otherwise (including for ')' ',' which
// have no table entry and thus correctly terminate recursion).
func (p *Parser) currentOpPrecedence() (byte, int) {
	if p.Curr.Type != lexer.CHAR || len(p.Curr.Literal) != 1 {
		return 0, -1
	}
	op := p.Curr.Literal[0]
	return op, p.Prec.Get(op)
}

// parseBinOpRHS implements precedence climbing: it loops while the
// current operator's priority is at least minPrec, folding in each
// right-hand unary term, recursing with a raised floor whenever the
// next operator binds tighter than the one just consumed.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) (ast.Expr, error) {
	for {
		op, prec := p.currentOpPrecedence()
		if prec < minPrec {
			return lhs, nil
		}
		p.advance() // consume the operator

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		_, nextPrec := p.currentOpPrecedence()
		if prec < nextPrec {
			rhs, err = p.parseBinOpRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.Binary{Op: op, Lhs: lhs, Rhs: rhs}
	}
}

// parseUnary parses either a prefix unary-operator application or a
// primary expression. Any single operator character other than '('
// and ')' is eligible to start a unary application — codegen rejects
// it later if no matching "unaryX" function was ever defined.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.Curr.Type != lexer.CHAR || p.isChar("(") || p.isChar(")") {
		return p.parsePrimary()
	}
	op := p.Curr.Literal[0]
	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Op: op, Operand: operand}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.Curr.Type {
	case lexer.NUMBER:
		return p.parseNumber()
	case lexer.IDENTIFIER:
		return p.parseIdentifier()
	case lexer.IF:
		return p.parseIf()
	case lexer.FOR:
		return p.parseFor()
	case lexer.VAR:
		return p.parseVar()
	case lexer.CHAR:
		if p.isChar("(") {
			return p.parseParen()
		}
	}
	return nil, p.errorf("unknown token when expecting an expression: %s", p.Curr)
}

func (p *Parser) parseNumber() (ast.Expr, error) {
	val, err := strconv.ParseFloat(p.Curr.Literal, 64)
	if err != nil {
		return nil, p.errorf("invalid number literal %q", p.Curr.Literal)
	}
	p.advance()
	return &ast.Number{Value: val}, nil
}

func (p *Parser) parseParen() (ast.Expr, error) {
	p.advance() // consume '('
	e, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectChar(")"); err != nil {
		return nil, p.errorf("expected ')'")
	}
	return e, nil
}

func (p *Parser) parseIdentifier() (ast.Expr, error) {
	name := p.Curr.Literal
	p.advance()

	if !p.isChar("(") {
		return &ast.Variable{Name: name}, nil
	}
	p.advance() // consume '('

	args := []ast.Expr{}
	if !p.isChar(")") {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.isChar(")") {
				break
			}
			if !p.isChar(",") {
				return nil, p.errorf("expected ')' or ',' in argument list")
			}
			p.advance()
		}
	}
	p.advance() // consume ')'
	return &ast.Call{Callee: name, Args: args}, nil
}

func (p *Parser) parseIf() (ast.Expr, error) {
	p.advance() // consume 'if'
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.Curr.Type != lexer.THEN {
		return nil, p.errorf("expected 'then' in if")
	}
	p.advance()
	thenE, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.Curr.Type != lexer.ELSE {
		return nil, p.errorf("expected 'else' in if")
	}
	p.advance()
	elseE, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.If{Cond: cond, Then: thenE, Else: elseE}, nil
}

func (p *Parser) parseFor() (ast.Expr, error) {
	p.advance() // consume 'for'
	if p.Curr.Type != lexer.IDENTIFIER {
		return nil, p.errorf("expected identifier after for")
	}
	varName := p.Curr.Literal
	p.advance()

	if err := p.expectChar("="); err != nil {
		return nil, p.errorf("expected '=' after for")
	}
	start, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectChar(","); err != nil {
		return nil, p.errorf("expected ',' after for start value")
	}
	end, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	var step ast.Expr
	if p.isChar(",") {
		p.advance()
		step, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}

	if p.Curr.Type != lexer.IN {
		return nil, p.errorf("expected 'in' keyword after 'for'")
	}
	p.advance()

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: varName, Start: start, End: end, Step: step, Body: body}, nil
}

func (p *Parser) parseVar() (ast.Expr, error) {
	p.advance() // consume 'var'

	var bindings []ast.VarBinding
	for {
		if p.Curr.Type != lexer.IDENTIFIER {
			return nil, p.errorf("expected identifier after var")
		}
		name := p.Curr.Literal
		p.advance()

		var init ast.Expr
		if p.isChar("=") {
			p.advance()
			var err error
			init, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
		}
		bindings = append(bindings, ast.VarBinding{Name: name, Init: init})

		if p.isChar(",") {
			p.advance()
			continue
		}
		break
	}

	if p.Curr.Type != lexer.IN {
		return nil, p.errorf("expected 'in' keyword after 'var'")
	}
	p.advance()

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Var{Bindings: bindings, Body: body}, nil
}
