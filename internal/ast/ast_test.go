package ast

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/lexer"
)

func TestProgramString(t *testing.T) {
	prog := &Program{
		Statements: []Statement{
			&LetStatement{
				Token: lexer.Token{Type: lexer.LET, Literal: "let"},
				Name:  &Identifier{Token: lexer.Token{Literal: "x"}, Value: "x"},
				Value: &NumberLiteral{Token: lexer.Token{Literal: "1"}, Value: 1},
			},
		},
	}
	want := "let x = 1\n"
	if got := prog.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBinaryExpressionString(t *testing.T) {
	expr := &BinaryExpression{
		Token:    lexer.Token{Literal: "+"},
		Left:     &NumberLiteral{Token: lexer.Token{Literal: "1"}, Value: 1},
		Operator: "+",
		Right:    &NumberLiteral{Token: lexer.Token{Literal: "2"}, Value: 2},
	}
	if got, want := expr.String(), "(1 + 2)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
