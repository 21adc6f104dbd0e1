package ast

import (
	"bytes"

	"github.com/aiscriptdev/aiscript/internal/lexer"
)

// IfStatement is `if cond { ... } else { ... }`; Else may itself be an
// *IfStatement (for `else if`) wrapped in an ExpressionStatement-free
// BlockStatement, or nil.
type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *IfStatement or *BlockStatement, nil if absent
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() lexer.Position  { return is.Token.Pos }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if " + is.Condition.String() + " " + is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else " + is.Alternative.String())
	}
	return out.String()
}

// WhileStatement is `while cond { ... }`.
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() lexer.Position  { return ws.Token.Pos }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// ForStatement is `for x in iterable { ... }`.
type ForStatement struct {
	Token    lexer.Token
	Name     *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() lexer.Position  { return fs.Token.Pos }
func (fs *ForStatement) String() string {
	return "for " + fs.Name.Value + " in " + fs.Iterable.String() + " " + fs.Body.String()
}

// ReturnStatement is `return expr` (or bare `return`).
type ReturnStatement struct {
	Token       lexer.Token
	ReturnValue Expression // nil for bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() lexer.Position  { return rs.Token.Pos }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue != nil {
		return "return " + rs.ReturnValue.String()
	}
	return "return"
}

// BreakStatement is `break`, only legal inside a loop body.
type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Pos() lexer.Position  { return bs.Token.Pos }
func (bs *BreakStatement) String() string       { return "break" }

// ContinueStatement is `continue`, only legal inside a loop body.
type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Pos() lexer.Position  { return cs.Token.Pos }
func (cs *ContinueStatement) String() string       { return "continue" }

// AssignmentStatement assigns to an existing lvalue: identifier,
// property access, or index expression. Compound operators (`+=` etc.)
// are desugared by the parser into Operator != "=".
type AssignmentStatement struct {
	Token    lexer.Token
	Target   Expression
	Operator string
	Value    Expression
}

func (as *AssignmentStatement) statementNode()       {}
func (as *AssignmentStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignmentStatement) Pos() lexer.Position  { return as.Token.Pos }
func (as *AssignmentStatement) String() string {
	return as.Target.String() + " " + as.Operator + " " + as.Value.String()
}

// PromptStatement issues `prompt expr` from inside an `ai fn` body,
// suspending for the agent runtime to produce a response. The compiler
// rejects this statement outside an AI-callable function (spec'd as a
// compile-time, not runtime, error).
type PromptStatement struct {
	Token lexer.Token
	Value Expression
}

func (ps *PromptStatement) statementNode()       {}
func (ps *PromptStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PromptStatement) Pos() lexer.Position  { return ps.Token.Pos }
func (ps *PromptStatement) String() string       { return "prompt " + ps.Value.String() }
