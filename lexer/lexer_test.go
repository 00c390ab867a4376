package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextToken_Operators(t *testing.T) {
	lex := NewLexer("+-*/<")
	tokens := lex.ConsumeTokens()
	assert.Equal(t, []Token{
		NewToken(CHAR, "+"),
		NewToken(CHAR, "-"),
		NewToken(CHAR, "*"),
		NewToken(CHAR, "/"),
		NewToken(CHAR, "<"),
	}, stripPos(tokens))
}

func TestNextToken_KeywordsAndIdentifiers(t *testing.T) {
	lex := NewLexer("def foo extern binary unary var if then else for in bar")
	tokens := stripPos(lex.ConsumeTokens())
	assert.Equal(t, []Token{
		NewToken(DEF, "def"),
		NewToken(IDENTIFIER, "foo"),
		NewToken(EXTERN, "extern"),
		NewToken(BINARY, "binary"),
		NewToken(UNARY, "unary"),
		NewToken(VAR, "var"),
		NewToken(IF, "if"),
		NewToken(THEN, "then"),
		NewToken(ELSE, "else"),
		NewToken(FOR, "for"),
		NewToken(IN, "in"),
		NewToken(IDENTIFIER, "bar"),
	}, tokens)
}

func TestNextToken_Numbers(t *testing.T) {
	lex := NewLexer("42 3.14 0.5")
	tokens := stripPos(lex.ConsumeTokens())
	assert.Equal(t, []Token{
		NewToken(NUMBER, "42"),
		NewToken(NUMBER, "3.14"),
		NewToken(NUMBER, "0.5"),
	}, tokens)
}

func TestNextToken_CommentsAreSkipped(t *testing.T) {
	lex := NewLexer("1 + 2 # this is a comment\n+ 3")
	tokens := stripPos(lex.ConsumeTokens())
	assert.Equal(t, []Token{
		NewToken(NUMBER, "1"),
		NewToken(CHAR, "+"),
		NewToken(NUMBER, "2"),
		NewToken(CHAR, "+"),
		NewToken(NUMBER, "3"),
	}, tokens)
}

func TestNextToken_ExitKeywordLexesAsEOF(t *testing.T) {
	lex := NewLexer("exit")
	tok := lex.NextToken()
	assert.Equal(t, EOF, tok.Type)
}

func TestNextToken_EmptyInputIsEOF(t *testing.T) {
	lex := NewLexer("")
	tok := lex.NextToken()
	assert.Equal(t, EOF, tok.Type)
}

func TestNextToken_UserOperatorCharacters(t *testing.T) {
	// Any non-paren, non-comma single byte is a valid CHAR token so
	// that the parser can later bind it as a user-defined operator.
	lex := NewLexer(": | ^")
	tokens := stripPos(lex.ConsumeTokens())
	assert.Equal(t, []Token{
		NewToken(CHAR, ":"),
		NewToken(CHAR, "|"),
		NewToken(CHAR, "^"),
	}, tokens)
}

func stripPos(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		out[i] = NewToken(tok.Type, tok.Literal)
	}
	return out
}
