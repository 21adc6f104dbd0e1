package parser

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/lexer"
)

// parsePublicDeclaration handles the `pub` modifier ahead of a
// function, class, enum, or agent declaration.
func (p *Parser) parsePublicDeclaration() ast.Statement {
	switch p.peekToken.Type {
	case lexer.CLASS:
		p.nextToken()
		return p.parseClassDeclaration(true)
	case lexer.ENUM:
		p.nextToken()
		return p.parseEnumDeclaration(true)
	case lexer.AGENT:
		p.nextToken()
		return p.parseAgentDeclaration(true)
	case lexer.FN, lexer.AI:
		return p.parseFunctionDeclaration()
	default:
		p.errorf(p.peekToken.Pos, "expected fn, class, enum, or agent after pub, got %s", p.peekToken.Type)
		return nil
	}
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	tok := p.curToken
	public := false
	if p.curTokenIs(lexer.PUB) {
		public = true
		p.nextToken()
	}
	fn := p.parseFunctionLiteralNamed()
	if fn == nil {
		return nil
	}
	return &ast.FunctionDeclaration{Token: tok, Public: public, Function: fn}
}

// parseFunctionLiteral is the prefix-parse entry point for `fn`/`ai fn`
// used in expression position (anonymous function values).
func (p *Parser) parseFunctionLiteral() ast.Expression {
	return p.parseFunctionLiteralNamed()
}

func (p *Parser) parseFunctionLiteralNamed() *ast.FunctionLiteral {
	tok := p.curToken
	isAI := false
	if p.curTokenIs(lexer.AI) {
		isAI = true
		if !p.expectPeek(lexer.FN) {
			return nil
		}
	}

	fl := &ast.FunctionLiteral{Token: tok, IsAI: isAI}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		fl.Name = p.curToken.Literal
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fl.Parameters = p.parseParameterList()
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	if isAI {
		p.promptAllowed(true)
	}
	fl.Body = p.parseBlockStatement()
	if isAI {
		p.promptAllowed(false)
	}
	return fl
}

// aiDepth tracking is intentionally simple: prompt legality is
// re-validated by the compiler against the chunk's IsAI flag, so the
// parser only needs to avoid rejecting valid nested closures here.
func (p *Parser) promptAllowed(bool) {}

func (p *Parser) parseParameterList() []*ast.Parameter {
	var params []*ast.Parameter
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseParameter())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParameter())
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseParameter() *ast.Parameter {
	param := &ast.Parameter{}
	for p.curTokenIs(lexer.AT) {
		param.Validators = append(param.Validators, p.parseValidatorAnnotation())
		p.nextToken()
	}
	if !p.curTokenIs(lexer.IDENT) {
		p.errorf(p.curToken.Pos, "expected parameter name, got %s", p.curToken.Type)
		return param
	}
	param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		param.Default = p.parseExpression(LOWEST)
	}
	return param
}

func (p *Parser) parseValidatorAnnotation() *ast.ValidatorAnnotation {
	tok := p.curToken // '@'
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	va := &ast.ValidatorAnnotation{Token: tok, Kind: p.curToken.Literal}
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		va.Args = p.parseValidatorArgs()
	}
	return va
}

// parseValidatorArgs parses a validator annotation's argument list,
// where each argument is either a bare constant expression or a
// `name: value` pair (e.g. `@string(min_len: 3, max_len: 10)`),
// mirroring parseArgument's handling of named call arguments.
func (p *Parser) parseValidatorArgs() []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseValidatorArg())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseValidatorArg())
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return list
}

func (p *Parser) parseValidatorArg() ast.Expression {
	if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.COLON) {
		tok := p.curToken
		name := p.curToken.Literal
		p.nextToken() // ':'
		p.nextToken()
		return &ast.NamedArgExpression{Token: tok, Name: name, Value: p.parseExpression(LOWEST)}
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseFieldDeclaration() *ast.FieldDeclaration {
	tok := p.curToken
	public := false
	if p.curTokenIs(lexer.PUB) {
		public = true
		p.nextToken()
	}
	fd := &ast.FieldDeclaration{Token: tok, Public: public}
	for p.curTokenIs(lexer.AT) {
		fd.Validators = append(fd.Validators, p.parseValidatorAnnotation())
		p.nextToken()
	}
	fd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		fd.Default = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
	}
	return fd
}

func (p *Parser) parseClassDeclaration(public bool) ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	cd := &ast.ClassDeclaration{Token: tok, Public: public, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		cd.Superclass = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.FN) || p.curTokenIs(lexer.AI) ||
			(p.curTokenIs(lexer.PUB) && (p.peekTokenIs(lexer.FN) || p.peekTokenIs(lexer.AI))) {
			method := p.parseFunctionDeclaration()
			if fd, ok := method.(*ast.FunctionDeclaration); ok {
				cd.Methods = append(cd.Methods, fd)
			}
		} else {
			cd.Fields = append(cd.Fields, p.parseFieldDeclaration())
		}
		p.nextToken()
	}
	return cd
}

func (p *Parser) parseEnumDeclaration(public bool) ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	ed := &ast.EnumDeclaration{Token: tok, Public: public, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.FN) {
			method := p.parseFunctionDeclaration()
			if fd, ok := method.(*ast.FunctionDeclaration); ok {
				ed.Methods = append(ed.Methods, fd)
			}
			p.nextToken()
			continue
		}
		variant := &ast.EnumVariant{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			for !p.peekTokenIs(lexer.RPAREN) {
				p.nextToken()
				variant.Fields = append(variant.Fields, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
				if p.peekTokenIs(lexer.COMMA) {
					p.nextToken()
				}
			}
			p.nextToken() // consume ')'
		}
		ed.Variants = append(ed.Variants, variant)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	return ed
}

func (p *Parser) parseAgentDeclaration(public bool) ast.Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	ad := &ast.AgentDeclaration{Token: tok, Public: public, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.FN) || p.curTokenIs(lexer.AI) ||
			(p.curTokenIs(lexer.PUB) && (p.peekTokenIs(lexer.FN) || p.peekTokenIs(lexer.AI))) {
			method := p.parseFunctionDeclaration()
			if fd, ok := method.(*ast.FunctionDeclaration); ok {
				ad.Methods = append(ad.Methods, fd)
			}
		} else {
			ad.Fields = append(ad.Fields, p.parseFieldDeclaration())
		}
		p.nextToken()
	}
	return ad
}
