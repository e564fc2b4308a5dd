package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinderlang/cinder/internal/token"
)

func allTokens(src string) []token.Token {
	s := New(src)
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestScannerPunctuationAndOperators(t *testing.T) {
	toks := allTokens("( ) { } , . - + ; / * % ! != = == < <= > >=")
	want := []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Slash, token.Star, token.Percent, token.Bang, token.BangEqual,
		token.Equal, token.EqualEqual, token.Less, token.LessEqual,
		token.Greater, token.GreaterEqual, token.EOF,
	}
	assert.Equal(t, len(want), len(toks))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type, "token %d", i)
	}
}

func TestScannerKeywordsVsIdentifiers(t *testing.T) {
	toks := allTokens("class fun clss")
	assert.Equal(t, token.Class, toks[0].Type)
	assert.Equal(t, token.Fun, toks[1].Type)
	assert.Equal(t, token.Identifier, toks[2].Type)
}

func TestScannerStringLiteral(t *testing.T) {
	toks := allTokens(`"hello world"`)
	assert.Equal(t, token.String, toks[0].Type)
	assert.Equal(t, `"hello world"`, toks[0].Lexeme)
}

func TestScannerUnterminatedString(t *testing.T) {
	toks := allTokens(`"hello`)
	assert.Equal(t, token.Error, toks[0].Type)
	assert.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestScannerNumbers(t *testing.T) {
	toks := allTokens("123 1.5 7.")
	assert.Equal(t, token.Number, toks[0].Type)
	assert.Equal(t, "123", toks[0].Lexeme)
	assert.Equal(t, token.Number, toks[1].Type)
	assert.Equal(t, "1.5", toks[1].Lexeme)
	// "7." — trailing dot with no following digit is not part of the
	// number; it is a separate Dot token (so "7." followed by nothing
	// valid surfaces as a later parse error, not a scan error).
	assert.Equal(t, token.Number, toks[2].Type)
	assert.Equal(t, "7", toks[2].Lexeme)
	assert.Equal(t, token.Dot, toks[3].Type)
}

func TestScannerLineTracking(t *testing.T) {
	toks := allTokens("var x\n= 1;")
	assert.Equal(t, 1, toks[0].Line)
	lastLine := toks[len(toks)-1].Line
	assert.Equal(t, 2, lastLine)
}

func TestScannerLineComment(t *testing.T) {
	toks := allTokens("// comment\nvar")
	assert.Equal(t, token.Var, toks[0].Type)
	assert.Equal(t, 2, toks[0].Line)
}

func TestScannerUnexpectedCharacter(t *testing.T) {
	toks := allTokens("@")
	assert.Equal(t, token.Error, toks[0].Type)
}
