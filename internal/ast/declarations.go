package ast

import (
	"bytes"
	"strings"

	"github.com/aiscriptdev/aiscript/internal/lexer"
)

// ValidatorAnnotation is a single `@kind(args...)` parameter validator
// attached to a Parameter. The compiler resolves Kind against the
// registered validator constructors in internal/validator.
type ValidatorAnnotation struct {
	Token lexer.Token // the '@' token
	Kind  string       // e.g. "string", "number", "in", "not", "any"
	Args  []Expression
}

func (v *ValidatorAnnotation) String() string {
	var parts []string
	for _, a := range v.Args {
		parts = append(parts, a.String())
	}
	return "@" + v.Kind + "(" + strings.Join(parts, ", ") + ")"
}

// NamedArgExpression is a `name: value` argument inside a validator
// annotation's argument list, e.g. `@string(min_len: 3)`.
type NamedArgExpression struct {
	Token lexer.Token // the name identifier token
	Name  string
	Value Expression
}

func (n *NamedArgExpression) expressionNode()      {}
func (n *NamedArgExpression) TokenLiteral() string { return n.Token.Literal }
func (n *NamedArgExpression) Pos() lexer.Position  { return n.Token.Pos }
func (n *NamedArgExpression) String() string       { return n.Name + ": " + n.Value.String() }

// Parameter is a single function/method parameter, optionally defaulted,
// optionally validated, optionally keyword-only.
type Parameter struct {
	Name        *Identifier
	Default     Expression // nil if required
	Validators  []*ValidatorAnnotation
	KeywordOnly bool
}

func (p *Parameter) String() string {
	var sb strings.Builder
	for _, v := range p.Validators {
		sb.WriteString(v.String())
		sb.WriteString(" ")
	}
	sb.WriteString(p.Name.Value)
	if p.Default != nil {
		sb.WriteString(" = ")
		sb.WriteString(p.Default.String())
	}
	return sb.String()
}

// FunctionLiteral is a function value: `fn(params) { body }`, also used
// for the body of named function/method declarations below. Kind
// distinguishes plain functions from `ai fn` (agent-callable) functions,
// which are the only context `prompt` is legal in.
type FunctionLiteral struct {
	Token      lexer.Token
	Name       string // "" for anonymous function literals
	Parameters []*Parameter
	Body       *BlockStatement
	IsAI       bool
	Doc        string
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Pos() lexer.Position  { return fl.Token.Pos }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer
	if fl.IsAI {
		out.WriteString("ai ")
	}
	out.WriteString("fn ")
	out.WriteString(fl.Name)
	out.WriteString("(")
	for i, p := range fl.Parameters {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	out.WriteString(") ")
	out.WriteString(fl.Body.String())
	return out.String()
}

// FunctionDeclaration is a top-level or module-level named function,
// e.g. `pub fn add(a, b) { return a + b }`.
type FunctionDeclaration struct {
	Token     lexer.Token
	Public    bool
	Function  *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) Pos() lexer.Position  { return fd.Token.Pos }
func (fd *FunctionDeclaration) String() string {
	prefix := ""
	if fd.Public {
		prefix = "pub "
	}
	return prefix + fd.Function.String()
}

// FieldDeclaration is a class or agent field, optionally validated.
type FieldDeclaration struct {
	Token      lexer.Token
	Name       *Identifier
	Public     bool
	Default    Expression
	Validators []*ValidatorAnnotation
}

func (fd *FieldDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FieldDeclaration) Pos() lexer.Position  { return fd.Token.Pos }
func (fd *FieldDeclaration) String() string {
	prefix := ""
	if fd.Public {
		prefix = "pub "
	}
	s := prefix + fd.Name.Value
	if fd.Default != nil {
		s += " = " + fd.Default.String()
	}
	return s
}

// ClassDeclaration declares a class, its fields, and its methods.
type ClassDeclaration struct {
	Token      lexer.Token
	Name       *Identifier
	Public     bool
	Superclass *Identifier // nil if none
	Fields     []*FieldDeclaration
	Methods    []*FunctionDeclaration
	Doc        string
}

func (cd *ClassDeclaration) statementNode()       {}
func (cd *ClassDeclaration) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDeclaration) Pos() lexer.Position  { return cd.Token.Pos }
func (cd *ClassDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("class ")
	out.WriteString(cd.Name.Value)
	if cd.Superclass != nil {
		out.WriteString(" : ")
		out.WriteString(cd.Superclass.Value)
	}
	out.WriteString(" {\n")
	for _, f := range cd.Fields {
		out.WriteString("  " + f.String() + "\n")
	}
	for _, m := range cd.Methods {
		out.WriteString("  " + m.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// EnumVariant is a single enum member, optionally carrying associated
// values (e.g. `Some(value)`).
type EnumVariant struct {
	Name   *Identifier
	Fields []*Identifier // associated-value field names, empty for plain variants
}

// EnumDeclaration declares an enum type with its variants.
type EnumDeclaration struct {
	Token    lexer.Token
	Name     *Identifier
	Public   bool
	Variants []*EnumVariant
	Methods  []*FunctionDeclaration
	Doc      string
}

func (ed *EnumDeclaration) statementNode()       {}
func (ed *EnumDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *EnumDeclaration) Pos() lexer.Position  { return ed.Token.Pos }
func (ed *EnumDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("enum ")
	out.WriteString(ed.Name.Value)
	out.WriteString(" {\n")
	for _, v := range ed.Variants {
		out.WriteString("  " + v.Name.Value + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// AgentDeclaration declares an AI agent: fields (with validators) plus
// `ai fn` methods that may issue `prompt` statements.
type AgentDeclaration struct {
	Token   lexer.Token
	Name    *Identifier
	Public  bool
	Fields  []*FieldDeclaration
	Methods []*FunctionDeclaration
	Doc     string
}

func (ad *AgentDeclaration) statementNode()       {}
func (ad *AgentDeclaration) TokenLiteral() string { return ad.Token.Literal }
func (ad *AgentDeclaration) Pos() lexer.Position  { return ad.Token.Pos }
func (ad *AgentDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("agent ")
	out.WriteString(ad.Name.Value)
	out.WriteString(" {\n")
	for _, f := range ad.Fields {
		out.WriteString("  " + f.String() + "\n")
	}
	for _, m := range ad.Methods {
		out.WriteString("  " + m.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// LetStatement declares a new mutable binding: `let x = expr`.
type LetStatement struct {
	Token lexer.Token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) Pos() lexer.Position  { return ls.Token.Pos }
func (ls *LetStatement) String() string {
	s := "let " + ls.Name.Value
	if ls.Value != nil {
		s += " = " + ls.Value.String()
	}
	return s
}

// ConstStatement declares an immutable binding: `const x = expr`.
type ConstStatement struct {
	Token lexer.Token
	Name  *Identifier
	Value Expression
}

func (cs *ConstStatement) statementNode()       {}
func (cs *ConstStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ConstStatement) Pos() lexer.Position  { return cs.Token.Pos }
func (cs *ConstStatement) String() string {
	return "const " + cs.Name.Value + " = " + cs.Value.String()
}

// ModuleUseStatement imports a module by path, e.g. `use "std/json"` or
// `use "./helpers" as helpers`.
type ModuleUseStatement struct {
	Token lexer.Token
	Path  string
	Alias string // "" if not aliased
}

func (mu *ModuleUseStatement) statementNode()       {}
func (mu *ModuleUseStatement) TokenLiteral() string { return mu.Token.Literal }
func (mu *ModuleUseStatement) Pos() lexer.Position  { return mu.Token.Pos }
func (mu *ModuleUseStatement) String() string {
	s := "use \"" + mu.Path + "\""
	if mu.Alias != "" {
		s += " as " + mu.Alias
	}
	return s
}
