// Copyright © 2026 clc
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package storn

type parser struct {
	lex *lexer
	tok token
}

var statementKeywords = map[string]bool{
	"set": true, "if": true, "loop": true, "break": true,
	"continue": true, "output": true, "return": true,
}

// Parse turns Storn source into a parse tree.
func Parse(source string) (*Program, error) {
	p := &parser{lex: newLexer(source)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *parser) next() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) isPunct(text string) bool {
	return p.tok.Kind == tokenPunct && p.tok.Text == text
}

func (p *parser) isIdent(text string) bool {
	return p.tok.Kind == tokenIdent && p.tok.Text == text
}

func (p *parser) acceptPunct(text string) (bool, error) {
	if !p.isPunct(text) {
		return false, nil
	}
	return true, p.next()
}

func (p *parser) expectPunct(text string) error {
	if !p.isPunct(text) {
		return compileErrorf(p.tok.Pos, "expected %q, found %q", text, p.tok.Text)
	}
	return p.next()
}

func (p *parser) expectIdent() (token, error) {
	if p.tok.Kind != tokenIdent {
		return token{}, compileErrorf(p.tok.Pos, "expected a name, found %q", p.tok.Text)
	}
	tok := p.tok
	return tok, p.next()
}

func (p *parser) expectNumber() (token, error) {
	if p.tok.Kind != tokenNumber {
		return token{}, compileErrorf(p.tok.Pos, "expected a number, found %q", p.tok.Text)
	}
	tok := p.tok
	return tok, p.next()
}

// openAngle consumes one deref bracket. A greedy << token is split so
// nested derefs like <<p>> parse.
func (p *parser) openAngle() error {
	switch {
	case p.isPunct("<"):
		return p.next()
	case p.isPunct("<<"):
		p.tok.Text = "<"
		return nil
	}
	return compileErrorf(p.tok.Pos, "expected %q, found %q", "<", p.tok.Text)
}

// closeAngle consumes one closing deref bracket, splitting greedy >>
// and >= tokens.
func (p *parser) closeAngle() error {
	switch {
	case p.isPunct(">"):
		return p.next()
	case p.isPunct(">>"):
		p.tok.Text = ">"
		return nil
	case p.isPunct(">="):
		p.tok.Text = "="
		return nil
	}
	return compileErrorf(p.tok.Pos, "expected %q, found %q", ">", p.tok.Text)
}

func (p *parser) parseProgram() (*Program, error) {
	program := &Program{}
	for p.tok.Kind != tokenEOF {
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		program.Decls = append(program.Decls, decl)
	}
	return program, nil
}

func (p *parser) parseDeclaration() (Decl, error) {
	if p.isIdent("data") {
		return p.parseData()
	}
	if p.isIdent("routine") {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.isPunct("(") {
		return p.parseRoutine(name)
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("."); err != nil {
		return nil, err
	}
	return &GlobalDecl{TypedVar{Pos: name.Pos, Name: name.Text, Type: ty}}, nil
}

func (p *parser) parseTypedVar() (TypedVar, error) {
	name, err := p.expectIdent()
	if err != nil {
		return TypedVar{}, err
	}
	if err := p.expectPunct(":"); err != nil {
		return TypedVar{}, err
	}
	ty, err := p.parseType()
	if err != nil {
		return TypedVar{}, err
	}
	return TypedVar{Pos: name.Pos, Name: name.Text, Type: ty}, nil
}

func (p *parser) parseData() (Decl, error) {
	pos := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	decl := &DataDecl{Pos: pos, Name: name.Text}
	for !p.isPunct("}") {
		field, err := p.parseTypedVar()
		if err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, field)
		more, err := p.acceptPunct(",")
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseRoutine(name token) (Decl, error) {
	decl := &RoutineDecl{Pos: name.Pos, Name: name.Text}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	for !p.isPunct(")") {
		param, err := p.parseTypedVar()
		if err != nil {
			return nil, err
		}
		decl.Params = append(decl.Params, param)
		more, err := p.acceptPunct(",")
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	decl.Return = ret

	locals, body, err := p.parseRoutineBlocks()
	if err != nil {
		return nil, err
	}
	decl.Locals = locals
	decl.Body = body
	return decl, nil
}

// parseRoutineBlocks reads the optional locals block followed by the
// statement block. A first brace block holding name: type declarations
// is the locals block; otherwise it is the body.
func (p *parser) parseRoutineBlocks() ([]TypedVar, []Stmt, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, nil, err
	}

	empty, err := p.acceptPunct("}")
	if err != nil {
		return nil, nil, err
	}
	if empty {
		if !p.isPunct("{") {
			return nil, nil, nil
		}
		body, err := p.parseBlock()
		return nil, body, err
	}

	if p.tok.Kind == tokenIdent && !statementKeywords[p.tok.Text] {
		name := p.tok
		if err := p.next(); err != nil {
			return nil, nil, err
		}
		if p.isPunct(":") {
			locals, err := p.parseLocals(name)
			if err != nil {
				return nil, nil, err
			}
			body, err := p.parseBlock()
			return locals, body, err
		}
		// A call statement opened the body block.
		if err := p.expectPunct("("); err != nil {
			return nil, nil, err
		}
		call, err := p.parseCallRest(name)
		if err != nil {
			return nil, nil, err
		}
		if err := p.expectPunct("."); err != nil {
			return nil, nil, err
		}
		body := []Stmt{&CallStmt{Pos: name.Pos, Call: call}}
		rest, err := p.parseStatements()
		if err != nil {
			return nil, nil, err
		}
		body = append(body, rest...)
		return nil, body, p.expectPunct("}")
	}

	body, err := p.parseStatements()
	if err != nil {
		return nil, nil, err
	}
	return nil, body, p.expectPunct("}")
}

// parseLocals finishes the locals block whose first declared name has
// already been consumed.
func (p *parser) parseLocals(first token) ([]TypedVar, error) {
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	locals := []TypedVar{{Pos: first.Pos, Name: first.Text, Type: ty}}
	for {
		more, err := p.acceptPunct(",")
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		local, err := p.parseTypedVar()
		if err != nil {
			return nil, err
		}
		locals = append(locals, local)
	}
	return locals, p.expectPunct("}")
}

// parseBlock reads { statements }.
func (p *parser) parseBlock() ([]Stmt, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	return stmts, p.expectPunct("}")
}

func (p *parser) parseStatements() ([]Stmt, error) {
	var stmts []Stmt
	for !p.isPunct("}") && p.tok.Kind != tokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	pos := p.tok.Pos
	if p.tok.Kind != tokenIdent {
		return nil, compileErrorf(pos, "expected a statement, found %q", p.tok.Text)
	}

	switch p.tok.Text {
	case "set":
		if err := p.next(); err != nil {
			return nil, err
		}
		target, err := p.parseLvalue()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &SetStmt{Pos: pos, Target: target, Value: value}, p.expectPunct(".")

	case "if":
		return p.parseIf()

	case "loop":
		if err := p.next(); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &LoopStmt{Pos: pos, Body: body}, p.expectPunct(".")

	case "break":
		if err := p.next(); err != nil {
			return nil, err
		}
		return &BreakStmt{Pos: pos}, p.expectPunct(".")

	case "continue":
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ContinueStmt{Pos: pos}, p.expectPunct(".")

	case "output":
		if err := p.next(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &OutputStmt{Pos: pos, Value: value}, p.expectPunct(".")

	case "return":
		if err := p.next(); err != nil {
			return nil, err
		}
		if done, err := p.acceptPunct("."); done || err != nil {
			return &ReturnStmt{Pos: pos}, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Pos: pos, Value: value}, p.expectPunct(".")
	}

	// A call in statement position.
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	call, err := p.parseCallRest(name)
	if err != nil {
		return nil, err
	}
	return &CallStmt{Pos: pos, Call: call}, p.expectPunct(".")
}

func (p *parser) parseIf() (Stmt, error) {
	pos := p.tok.Pos
	stmt := &IfStmt{Pos: pos}
	if err := p.next(); err != nil {
		return nil, err
	}
	for {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Arms = append(stmt.Arms, IfArm{Cond: cond, Body: body})
		if !p.isIdent("elif") {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if p.isIdent("else") {
		if err := p.next(); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}
	return stmt, p.expectPunct(".")
}

// parseCallRest finishes a call whose name and opening parenthesis are
// already consumed.
func (p *parser) parseCallRest(name token) (*CallExpr, error) {
	call := &CallExpr{Pos: name.Pos, Name: name.Text}
	for !p.isPunct(")") {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		more, err := p.acceptPunct(",")
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return call, p.expectPunct(")")
}

func (p *parser) parseType() (TypeNode, error) {
	pos := p.tok.Pos
	var ty TypeNode
	switch {
	case p.isPunct("["):
		if err := p.next(); err != nil {
			return nil, err
		}
		width, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		ty = &BaseTypeNode{Pos: pos, Width: width.Value}

	case p.isPunct("<") || p.isPunct("<<"):
		if err := p.openAngle(); err != nil {
			return nil, err
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.closeAngle(); err != nil {
			return nil, err
		}
		ty = &RefTypeNode{Pos: pos, Inner: inner}

	case p.tok.Kind == tokenIdent:
		ty = &NamedTypeNode{Pos: pos, Name: p.tok.Text}
		if err := p.next(); err != nil {
			return nil, err
		}

	default:
		return nil, compileErrorf(pos, "expected a type, found %q", p.tok.Text)
	}

	for p.isPunct("^") {
		if err := p.next(); err != nil {
			return nil, err
		}
		length, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		ty = &ArrayTypeNode{Pos: pos, Elem: ty, Length: length.Value}
	}
	return ty, nil
}

// Expression precedence, low to high: logical, bitwise, comparative,
// additive, shift, multiplicative, unary, primary.

func (p *parser) parseExpression() (Expr, error) {
	return p.parseLogical()
}

func (p *parser) parseLogical() (Expr, error) {
	left, err := p.parseBitwise()
	if err != nil {
		return nil, err
	}
	for p.isIdent("or") || p.isIdent("and") {
		op := p.tok.Text
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseBitwise()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseBitwise() (Expr, error) {
	left, err := p.parseComparative()
	if err != nil {
		return nil, err
	}
	for p.isPunct("|") || p.isPunct("&") || p.isPunct("^") {
		op := p.tok.Text
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseComparative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseComparative() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.isPunct("=") || p.isPunct("<") || p.isPunct(">") || p.isPunct("<=") || p.isPunct(">=") {
		op := p.tok.Text
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		op := p.tok.Text
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseShift() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isPunct("<<") || p.isPunct(">>") {
		op := p.tok.Text
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") {
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: "*", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	pos := p.tok.Pos
	if p.isPunct("-") || p.isIdent("not") {
		op := p.tok.Text
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Pos: pos, Op: op, Operand: operand}, nil
	}

	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isPunct(":") {
		if err := p.next(); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		expr = &CastExpr{Pos: pos, Operand: expr, Type: ty}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	pos := p.tok.Pos
	switch {
	case p.isPunct("("):
		if err := p.next(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return expr, p.expectPunct(")")

	case p.tok.Kind == tokenNumber:
		value := p.tok.Value
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		width, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		return &Literal{Pos: pos, Value: value, Width: width.Value}, nil

	case p.isIdent("sizeof"):
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &SizeofExpr{Pos: pos, Type: ty}, p.expectPunct(")")

	case p.isPunct("<") || p.isPunct("<<"):
		lv, err := p.parseLvalue()
		if err != nil {
			return nil, err
		}
		return &LvalueExpr{Pos: pos, Lvalue: lv}, nil

	case p.tok.Kind == tokenIdent:
		name := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		if ok, err := p.acceptPunct("("); err != nil {
			return nil, err
		} else if ok {
			return p.parseCallRest(name)
		}
		lv := &Lvalue{Pos: name.Pos, Kind: LvalueName, Name: name.Text}
		lv, err := p.parseLvalueSteps(lv)
		if err != nil {
			return nil, err
		}
		return &LvalueExpr{Pos: pos, Lvalue: lv}, nil
	}
	return nil, compileErrorf(pos, "expected an expression, found %q", p.tok.Text)
}

func (p *parser) parseLvalue() (*Lvalue, error) {
	pos := p.tok.Pos
	var lv *Lvalue
	switch {
	case p.isPunct("<") || p.isPunct("<<"):
		if err := p.openAngle(); err != nil {
			return nil, err
		}
		inner, err := p.parseLvalue()
		if err != nil {
			return nil, err
		}
		if err := p.closeAngle(); err != nil {
			return nil, err
		}
		lv = &Lvalue{Pos: pos, Kind: LvalueDeref, Inner: inner}

	case p.isPunct("("):
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseLvalue()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		lv = &Lvalue{Pos: pos, Kind: LvalueParen, Inner: inner}

	case p.tok.Kind == tokenIdent:
		lv = &Lvalue{Pos: pos, Kind: LvalueName, Name: p.tok.Text}
		if err := p.next(); err != nil {
			return nil, err
		}

	default:
		return nil, compileErrorf(pos, "expected an lvalue, found %q", p.tok.Text)
	}
	return p.parseLvalueSteps(lv)
}

// parseLvalueSteps reads the projection then index suffixes. Index
// expressions parse at additive precedence so the = of an enclosing
// set statement and the > of an enclosing deref stay unconsumed.
func (p *parser) parseLvalueSteps(lv *Lvalue) (*Lvalue, error) {
	for p.isPunct("/") {
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		field, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		lv.Steps = append(lv.Steps, LvalueStep{Pos: pos, Field: field.Text})
	}
	for p.isPunct("@") {
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		index, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		lv.Steps = append(lv.Steps, LvalueStep{Pos: pos, Index: index})
	}
	return lv, nil
}
