// Package parser builds an AST from a token stream using Pratt
// (operator-precedence) parsing for expressions and recursive descent
// for statements and declarations.
package parser

import (
	"fmt"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/lexer"
)

// Precedence levels, lowest to highest, per the AIScript grammar:
// Assignment < Or < And < Equality < Comparison < Range < Term < Factor
// < Power (right-assoc) < Unary < Call/Index/Dot < Primary.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT
	COALESCE
	OR
	AND
	EQUALITY
	COMPARISON
	RANGE
	TERM
	FACTOR
	POWER
	UNARY
	CALL
)

var precedences = map[lexer.TokenType]int{
	lexer.QQUESTION: COALESCE,
	lexer.OR:        OR,
	lexer.AND:       AND,
	lexer.EQ:        EQUALITY,
	lexer.NEQ:       EQUALITY,
	lexer.LT:        COMPARISON,
	lexer.LTE:       COMPARISON,
	lexer.GT:        COMPARISON,
	lexer.GTE:       COMPARISON,
	lexer.DOTDOT:    RANGE,
	lexer.PLUS:      TERM,
	lexer.MINUS:     TERM,
	lexer.STAR:      FACTOR,
	lexer.SLASH:     FACTOR,
	lexer.PERCENT:   FACTOR,
	lexer.POWER:     POWER,
	lexer.LPAREN:    CALL,
	lexer.LBRACKET:  CALL,
	lexer.DOT:       CALL,
	lexer.QDOT:      CALL,
	lexer.DCOLON:    CALL,
	lexer.PIPE:      CALL,
	lexer.QUESTION:  CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// ParseError is a single parser diagnostic.
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

// Parser turns a token stream into an *ast.Program, collecting errors
// along the way instead of stopping at the first one (panic-mode
// recovery resynchronizes on statement boundaries).
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []*ParseError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	// loopDepth/aiDepth track contextual legality of break/continue and
	// prompt, enforced at parse time (they are compile errors, but the
	// parser is the simplest place to carry the nesting counters from).
	loopDepth int
}

// New constructs a Parser and primes the first two tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseNumberLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NIL, p.parseNilLiteral)
	p.registerPrefix(lexer.SELF, p.parseSelfExpression)
	p.registerPrefix(lexer.SUPER, p.parseSuperExpression)
	p.registerPrefix(lexer.BANG, p.parseUnaryExpression)
	p.registerPrefix(lexer.NOT, p.parseUnaryExpression)
	p.registerPrefix(lexer.MINUS, p.parseUnaryExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.FN, p.parseFunctionLiteral)
	p.registerPrefix(lexer.AI, p.parseFunctionLiteral)
	p.registerPrefix(lexer.MATCH, p.parseMatchExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT, lexer.POWER,
		lexer.EQ, lexer.NEQ, lexer.LT, lexer.LTE, lexer.GT, lexer.GTE,
		lexer.AND, lexer.OR, lexer.DOTDOT,
	} {
		p.registerInfix(tt, p.parseBinaryExpression)
	}
	p.registerInfix(lexer.QQUESTION, p.parseCoalesceExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseDotExpression)
	p.registerInfix(lexer.QDOT, p.parseDotExpression)
	p.registerInfix(lexer.DCOLON, p.parseEnumAccessExpression)
	p.registerInfix(lexer.PIPE, p.parsePipelineExpression)
	p.registerInfix(lexer.QUESTION, p.parseTryExpression)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(tt lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[tt] = fn }
func (p *Parser) registerInfix(tt lexer.TokenType, fn infixParseFn)   { p.infixParseFns[tt] = fn }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(tt lexer.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekTokenIs(tt lexer.TokenType) bool { return p.peekToken.Type == tt }

func (p *Parser) expectPeek(tt lexer.TokenType) bool {
	if p.peekTokenIs(tt) {
		p.nextToken()
		return true
	}
	p.peekError(tt)
	return false
}

func (p *Parser) peekError(tt lexer.TokenType) {
	p.errorf(p.peekToken.Pos, "expected next token to be %s, got %s (%q) instead",
		tt, p.peekToken.Type, p.peekToken.Literal)
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Errors returns all parse errors collected so far.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the whole token stream into an *ast.Program,
// recovering from statement-level errors via synchronize so that a
// single mistake doesn't suppress every later diagnostic.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// synchronize skips tokens until a likely statement boundary, so
// parsing can continue after an error instead of aborting.
func (p *Parser) synchronize() {
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			return
		}
		switch p.peekToken.Type {
		case lexer.FN, lexer.LET, lexer.CONST, lexer.CLASS, lexer.ENUM,
			lexer.AGENT, lexer.USE, lexer.IF, lexer.WHILE, lexer.FOR, lexer.RETURN:
			return
		}
		p.nextToken()
	}
}
