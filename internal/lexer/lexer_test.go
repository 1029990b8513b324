package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(src string) []Token {
	l := New(src, "test.nfu")
	var toks []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func types(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestOperators(t *testing.T) {
	toks := lexAll(`+ - * / % ^ == != < > <= >= && || ! -> |> ... = . ;`)
	assert.Equal(t, []TokenType{
		PLUS, MINUS, STAR, SLASH, PERCENT, CARET,
		EQ, NEQ, LT, GT, LTE, GTE, AND, OR, BANG,
		ARROW, PIPE, ELLIPSIS, ASSIGN, DOT, SEMICOLON,
	}, types(toks))
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := lexAll(`let in if then else import from export del true false foo _ _bar`)
	assert.Equal(t, []TokenType{
		LET, IN, IF, THEN, ELSE, IMPORT, FROM, EXPORT, DEL, TRUE, FALSE,
		IDENT, IDENT, IDENT,
	}, types(toks))
	assert.Equal(t, "_", toks[12].Lit)
}

func TestNumbers(t *testing.T) {
	tests := []struct{ src, lit string }{
		{"42", "42"},
		{"3.14", "3.14"},
		{"1_000", "1000"},
		{"1e9", "1e9"},
		{"2.5e-3", "2.5e-3"},
	}
	for _, tt := range tests {
		toks := lexAll(tt.src)
		require.Len(t, toks, 1, "source %q", tt.src)
		assert.Equal(t, NUMBER, toks[0].Type)
		assert.Equal(t, tt.lit, toks[0].Lit)
	}
}

func TestNumberDoesNotEatRangeDot(t *testing.T) {
	// `1.` with no following digit stays NUMBER DOT.
	toks := lexAll("1.x")
	assert.Equal(t, []TokenType{NUMBER, DOT, IDENT}, types(toks))
}

func TestStrings(t *testing.T) {
	toks := lexAll(`"hello" "a\nb" "say \"hi\""`)
	require.Len(t, toks, 3)
	assert.Equal(t, "hello", toks[0].Lit)
	assert.Equal(t, "a\nb", toks[1].Lit)
	assert.Equal(t, `say "hi"`, toks[2].Lit)
}

func TestUnterminatedString(t *testing.T) {
	toks := lexAll(`"abc`)
	require.Len(t, toks, 1)
	assert.Equal(t, ILLEGAL, toks[0].Type)
}

func TestComments(t *testing.T) {
	toks := lexAll("1 // line comment\n2 /* block\ncomment */ 3")
	assert.Equal(t, []TokenType{NUMBER, NUMBER, NUMBER}, types(toks))
}

func TestByteOffsets(t *testing.T) {
	src := `ab + cd`
	toks := lexAll(src)
	require.Len(t, toks, 3)
	for _, tok := range []Token{toks[0], toks[2]} {
		assert.Equal(t, tok.Lit, src[tok.Start:tok.End])
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := lexAll("a\nbb")
	require.Len(t, toks, 2)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
}

func TestNormalizeStripsBOMAndNFC(t *testing.T) {
	bom := string([]byte{0xEF, 0xBB, 0xBF})
	toks := lexAll(bom + "x")
	require.Len(t, toks, 1)
	assert.Equal(t, IDENT, toks[0].Type)

	// NFD (e + combining acute) normalizes to the NFC form.
	nfd := "cafe\u0301"
	toks = lexAll(nfd)
	require.Len(t, toks, 1)
	assert.Equal(t, "caf\u00e9", toks[0].Lit)
}
