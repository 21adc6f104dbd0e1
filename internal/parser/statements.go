package parser

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	var stmt ast.Statement

	switch p.curToken.Type {
	case lexer.LET:
		stmt = p.parseLetStatement()
	case lexer.CONST:
		stmt = p.parseConstStatement()
	case lexer.USE:
		stmt = p.parseModuleUseStatement()
	case lexer.PUB:
		stmt = p.parsePublicDeclaration()
	case lexer.FN, lexer.AI:
		stmt = p.parseFunctionDeclaration()
	case lexer.CLASS:
		stmt = p.parseClassDeclaration(false)
	case lexer.ENUM:
		stmt = p.parseEnumDeclaration(false)
	case lexer.AGENT:
		stmt = p.parseAgentDeclaration(false)
	case lexer.IF:
		stmt = p.parseIfStatement()
	case lexer.WHILE:
		stmt = p.parseWhileStatement()
	case lexer.FOR:
		stmt = p.parseForStatement()
	case lexer.RETURN:
		stmt = p.parseReturnStatement()
	case lexer.BREAK:
		stmt = p.parseBreakStatement()
	case lexer.CONTINUE:
		stmt = p.parseContinueStatement()
	case lexer.PROMPT:
		stmt = p.parsePromptStatement()
	case lexer.LBRACE:
		stmt = p.parseBlockStatement()
	default:
		stmt = p.parseExpressionOrAssignmentStatement()
	}

	if stmt == nil {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseLetStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	ls := &ast.LetStatement{Token: tok, Name: name}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		ls.Value = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return ls
}

func (p *Parser) parseConstStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ConstStatement{Token: tok, Name: name, Value: val}
}

func (p *Parser) parseModuleUseStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.STRING) {
		return nil
	}
	path := p.curToken.Literal
	mu := &ast.ModuleUseStatement{Token: tok, Path: path}
	if p.peekTokenIs(lexer.IDENT) && p.peekToken.Literal == "as" {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		mu.Alias = p.curToken.Literal
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return mu
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	cons := p.parseBlockStatement()
	is := &ast.IfStatement{Token: tok, Condition: cond, Consequence: cons}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			is.Alternative = p.parseIfStatement()
		} else if p.expectPeek(lexer.LBRACE) {
			is.Alternative = p.parseBlockStatement()
		}
	}
	return is
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.loopDepth++
	body := p.parseBlockStatement()
	p.loopDepth--
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(lexer.IN) {
		return nil
	}
	p.nextToken()
	iterable := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.loopDepth++
	body := p.parseBlockStatement()
	p.loopDepth--
	return &ast.ForStatement{Token: tok, Name: name, Iterable: iterable, Body: body}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	rs := &ast.ReturnStatement{Token: tok}
	if !p.peekTokenIs(lexer.SEMICOLON) && !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		rs.ReturnValue = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return rs
}

func (p *Parser) parseBreakStatement() ast.Statement {
	tok := p.curToken
	if p.loopDepth == 0 {
		p.errorf(tok.Pos, "break outside of a loop")
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.BreakStatement{Token: tok}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	tok := p.curToken
	if p.loopDepth == 0 {
		p.errorf(tok.Pos, "continue outside of a loop")
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ContinueStatement{Token: tok}
}

func (p *Parser) parsePromptStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.PromptStatement{Token: tok, Value: val}
}

// parseExpressionOrAssignmentStatement parses a bare expression
// statement, or (when an assignment operator follows an lvalue-shaped
// expression) an AssignmentStatement.
func (p *Parser) parseExpressionOrAssignmentStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)

	if op, ok := assignOperator(p.peekToken.Type); ok {
		p.nextToken()
		opLit := p.curToken.Literal
		p.nextToken()
		val := p.parseExpression(LOWEST)
		if p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		_ = op
		return &ast.AssignmentStatement{Token: tok, Target: expr, Operator: opLit, Value: val}
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

func assignOperator(tt lexer.TokenType) (string, bool) {
	switch tt {
	case lexer.ASSIGN:
		return "=", true
	case lexer.PLUSEQ:
		return "+=", true
	case lexer.MINUSEQ:
		return "-=", true
	case lexer.STAREQ:
		return "*=", true
	case lexer.SLASHEQ:
		return "/=", true
	}
	return "", false
}
