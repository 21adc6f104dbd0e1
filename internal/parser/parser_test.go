package parser

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			t.Errorf("parse error: %v", e)
		}
		t.FailNow()
	}
	return prog
}

func TestParseLetAndArithmetic(t *testing.T) {
	prog := parseProgram(t, `let x = 1 + 2 * 3`)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	ls, ok := prog.Statements[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("expected *ast.LetStatement, got %T", prog.Statements[0])
	}
	if got, want := ls.Value.String(), "(1 + (2 * 3))"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParsePowerRightAssociative(t *testing.T) {
	prog := parseProgram(t, `let x = 2 ** 3 ** 2`)
	ls := prog.Statements[0].(*ast.LetStatement)
	if got, want := ls.Value.String(), "(2 ** (3 ** 2))"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	prog := parseProgram(t, `pub fn add(a, b = 1) { return a + b }`)
	fd, ok := prog.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected *ast.FunctionDeclaration, got %T", prog.Statements[0])
	}
	if !fd.Public {
		t.Fatalf("expected public function")
	}
	if len(fd.Function.Parameters) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fd.Function.Parameters))
	}
	if fd.Function.Parameters[1].Default == nil {
		t.Fatalf("expected default for second param")
	}
}

func TestParseValidatorAnnotation(t *testing.T) {
	prog := parseProgram(t, `fn f(@string(min_len: 1) name) { return name }`)
	fd := prog.Statements[0].(*ast.FunctionDeclaration)
	param := fd.Function.Parameters[0]
	if len(param.Validators) != 1 || param.Validators[0].Kind != "string" {
		t.Fatalf("expected @string validator, got %+v", param.Validators)
	}
}

func TestParseClassDeclaration(t *testing.T) {
	prog := parseProgram(t, `
class Animal {
  pub name
  fn speak() { return name }
}`)
	cd := prog.Statements[0].(*ast.ClassDeclaration)
	if cd.Name.Value != "Animal" {
		t.Fatalf("got name %q", cd.Name.Value)
	}
	if len(cd.Fields) != 1 || len(cd.Methods) != 1 {
		t.Fatalf("expected 1 field and 1 method, got %d/%d", len(cd.Fields), len(cd.Methods))
	}
}

func TestParseEnumDeclaration(t *testing.T) {
	prog := parseProgram(t, `
enum Direction {
  North, South, East, West
}`)
	ed := prog.Statements[0].(*ast.EnumDeclaration)
	if len(ed.Variants) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(ed.Variants))
	}
}

func TestParseMatchExpression(t *testing.T) {
	prog := parseProgram(t, `
let y = match x {
  1 => "one",
  _ => "other"
}`)
	ls := prog.Statements[0].(*ast.LetStatement)
	me, ok := ls.Value.(*ast.MatchExpression)
	if !ok {
		t.Fatalf("expected *ast.MatchExpression, got %T", ls.Value)
	}
	if len(me.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(me.Arms))
	}
}

func TestParseTryAndHandler(t *testing.T) {
	prog := parseProgram(t, `
let v = risky()? { |err| return err }`)
	ls := prog.Statements[0].(*ast.LetStatement)
	if _, ok := ls.Value.(*ast.TryExpression); !ok {
		t.Fatalf("expected *ast.TryExpression, got %T", ls.Value)
	}
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	l := lexer.New(`break`)
	p := New(l)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected an error for break outside a loop")
	}
}
