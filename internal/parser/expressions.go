package parser

import (
	"strconv"
	"strings"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/lexer"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(p.curToken.Pos, "no prefix parse function for %s (%q)", p.curToken.Type, p.curToken.Literal)
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	isFloat := tok.Type == lexer.FLOAT
	val, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf(tok.Pos, "invalid numeric literal %q", tok.Literal)
		return nil
	}
	return &ast.NumberLiteral{Token: tok, Value: val, IsFloat: isFloat}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parseSelfExpression() ast.Expression {
	return &ast.SelfExpression{Token: p.curToken}
}

func (p *Parser) parseSuperExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.DOT) {
		return nil
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	method := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return &ast.SuperExpression{Token: tok, Method: method}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	op := tok.Literal
	p.nextToken()
	right := p.parseExpression(UNARY)
	return &ast.UnaryExpression{Token: tok, Operator: op, Right: right}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := tok.Literal
	precedence := p.curPrecedence()
	rightPrec := precedence
	if tok.Type == lexer.POWER {
		// Right-associative: parse the right operand at one precedence
		// level lower than this operator's own level.
		rightPrec = precedence - 1
	}
	if tok.Type == lexer.DOTDOT {
		p.nextToken()
		end := p.parseExpression(rightPrec)
		return &ast.RangeExpression{Token: tok, Start: left, End: end}
	}
	p.nextToken()
	right := p.parseExpression(rightPrec)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: op, Right: right}
}

func (p *Parser) parseCoalesceExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(COALESCE)
	return &ast.CoalesceExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parsePipelineExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(CALL)
	return &ast.PipelineExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseTryExpression(left ast.Expression) ast.Expression {
	te := &ast.TryExpression{Token: p.curToken, Value: left}
	if p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		te.Handler = p.parseErrorHandlerBlock()
	}
	return te
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return &ast.GroupedExpression{Expression: exp}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	elems := p.parseExpressionList(lexer.RBRACKET)
	return &ast.ArrayLiteral{Token: tok, Elements: elems}
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

// parseObjectLiteral parses either `{ key: value, ... }` object
// literals or, when immediately followed by a `|`, an ErrorHandlerBlock
// is instead parsed by parseCallExpression — this prefix fn only
// handles the standalone object-literal expression form.
func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.curToken
	ol := &ast.ObjectLiteral{Token: tok}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		var key string
		switch p.curToken.Type {
		case lexer.IDENT:
			key = p.curToken.Literal
		case lexer.STRING:
			key = p.curToken.Literal
		default:
			p.errorf(p.curToken.Pos, "expected object key, got %s", p.curToken.Type)
			return nil
		}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		ol.Keys = append(ol.Keys, key)
		ol.Values = append(ol.Values, val)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return ol
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseArgumentList()
	ce := &ast.CallExpression{Token: tok, Callee: callee, Arguments: args}
	if p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		ce.Handler = p.parseErrorHandlerBlock()
	}
	return ce
}

func (p *Parser) parseArgumentList() []*ast.Argument {
	var args []*ast.Argument
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseArgument())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseArgument())
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parseArgument() *ast.Argument {
	if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.COLON) {
		name := p.curToken.Literal
		p.nextToken() // ':'
		p.nextToken()
		return &ast.Argument{Name: name, Value: p.parseExpression(LOWEST)}
	}
	return &ast.Argument{Value: p.parseExpression(LOWEST)}
}

// parseErrorHandlerBlock parses `{ |err| stmt... }`, the inline error
// handler attached to a call site or a `?` propagation.
func (p *Parser) parseErrorHandlerBlock() *ast.ErrorHandlerBlock {
	tok := p.curToken // '{'
	if !p.expectPeek(lexer.PIPECHAR) {
		return nil
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(lexer.PIPECHAR) {
		return nil
	}
	body := &ast.BlockStatement{Token: p.curToken}
	for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		p.nextToken()
		stmt := p.parseStatement()
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return &ast.ErrorHandlerBlock{Token: tok, ErrName: name, Body: body}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return &ast.IndexExpression{Token: tok, Left: left, Index: idx}
}

func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	optional := tok.Type == lexer.QDOT
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	prop := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return &ast.DotExpression{Token: tok, Object: left, Property: prop, Optional: optional}
}

func (p *Parser) parseEnumAccessExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf(tok.Pos, "left side of :: must be an enum name")
		return nil
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	variant := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	ea := &ast.EnumAccessExpression{Token: tok, Enum: &ast.Identifier{Value: ident.Value}, Variant: variant}
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		ea.Arguments = p.parseArgumentList()
	}
	return ea
}

func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	subject := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	me := &ast.MatchExpression{Token: tok, Subject: subject}
	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		arm := &ast.MatchArm{}
		if p.curTokenIs(lexer.IDENT) && p.curToken.Literal == "_" {
			arm.Pattern = nil
		} else {
			arm.Pattern = p.parseExpression(LOWEST)
		}
		if !p.expectPeek(lexer.FATARROW) {
			return nil
		}
		p.nextToken()
		arm.Body = p.parseExpression(LOWEST)
		me.Arms = append(me.Arms, arm)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return me
}

func joinArgs(args []*ast.Argument) string {
	var parts []string
	for _, a := range args {
		parts = append(parts, a.Value.String())
	}
	return strings.Join(parts, ", ")
}
