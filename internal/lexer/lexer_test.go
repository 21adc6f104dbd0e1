package lexer

import "testing"

func TestNextTokenBasic(t *testing.T) {
	input := `let x = 1 + 2.5
fn add(a, b) { return a + b }
// comment
class Point { pub x, y }
"""doc"""
a ?? b |> c
`
	want := []TokenType{
		LET, IDENT, ASSIGN, INT, PLUS, FLOAT,
		FN, IDENT, LPAREN, IDENT, COMMA, IDENT, RPAREN, LBRACE, RETURN, IDENT, PLUS, IDENT, RBRACE,
		CLASS, IDENT, LBRACE, PUB, IDENT, COMMA, IDENT, RBRACE,
		DOCSTRING,
		IDENT, QQUESTION, IDENT, PIPE, IDENT,
		EOF,
	}

	l := New(input)
	for i, wantType := range want {
		tok := l.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, wantType)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\"c"`)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "a\nb\"c" {
		t.Fatalf("got %q", tok.Literal)
	}
}

func TestUnicodeColumns(t *testing.T) {
	l := New("let café = 1")
	var last Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		last = tok
	}
	if last.Type != INT {
		t.Fatalf("expected trailing INT token, got %s", last.Type)
	}
}

func TestBOMStripped(t *testing.T) {
	l := New(string(rune(0xFEFF)) + "let x = 1")
	tok := l.NextToken()
	if tok.Type != LET {
		t.Fatalf("expected LET, got %s", tok.Type)
	}
}
