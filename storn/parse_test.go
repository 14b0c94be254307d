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

import (
	"testing"
)

func mustParse(t *testing.T, source string) *Program {
	t.Helper()
	program, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return program
}

func TestParseRoutineAndEntry(t *testing.T) {
	program := mustParse(t, `
add(x: [8], y: [8]) [8] {
    return x + y.
}

entry() [0] {
    output add(3:8, 4:8).
    return.
}
`)
	if len(program.Decls) != 2 {
		t.Fatalf("parsed %d declarations, want 2", len(program.Decls))
	}

	add, ok := program.Decls[0].(*RoutineDecl)
	if !ok {
		t.Fatalf("first declaration is %T, want routine", program.Decls[0])
	}
	if add.Name != "add" || len(add.Params) != 2 || len(add.Body) != 1 {
		t.Errorf("add = %+v", add)
	}
	if add.Params[1].Name != "y" {
		t.Errorf("second parameter = %s, want y", add.Params[1].Name)
	}
	ret, ok := add.Body[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("add body is %T, want return", add.Body[0])
	}
	sum, ok := ret.Value.(*BinaryExpr)
	if !ok || sum.Op != "+" {
		t.Errorf("return value = %#v, want addition", ret.Value)
	}

	entry, ok := program.Decls[1].(*RoutineDecl)
	if !ok || entry.Name != "entry" {
		t.Fatalf("second declaration = %+v, want entry routine", program.Decls[1])
	}
	out, ok := entry.Body[0].(*OutputStmt)
	if !ok {
		t.Fatalf("entry body starts with %T, want output", entry.Body[0])
	}
	call, ok := out.Value.(*CallExpr)
	if !ok || call.Name != "add" || len(call.Args) != 2 {
		t.Errorf("output value = %#v, want call of add", out.Value)
	}
	if _, ok := entry.Body[1].(*ReturnStmt); !ok {
		t.Errorf("entry body ends with %T, want return", entry.Body[1])
	}
}

func TestParseRoutineKeywordAndLocals(t *testing.T) {
	program := mustParse(t, `
routine count() [0] { i: [8], total: [16] } {
    set i = 0:8.
    loop {
        if i = 3:8 {
            break.
        }.
        set i = i + 1:8.
    }.
    return.
}
`)
	routine := program.Decls[0].(*RoutineDecl)
	if routine.Name != "count" {
		t.Fatalf("routine name = %s, want count", routine.Name)
	}
	if len(routine.Locals) != 2 || routine.Locals[0].Name != "i" || routine.Locals[1].Name != "total" {
		t.Errorf("locals = %+v", routine.Locals)
	}
	if len(routine.Body) != 3 {
		t.Fatalf("body has %d statements, want 3", len(routine.Body))
	}
	loop, ok := routine.Body[1].(*LoopStmt)
	if !ok {
		t.Fatalf("second statement is %T, want loop", routine.Body[1])
	}
	ifStmt, ok := loop.Body[0].(*IfStmt)
	if !ok || len(ifStmt.Arms) != 1 {
		t.Fatalf("loop body starts with %#v, want if", loop.Body[0])
	}
	if _, ok := ifStmt.Arms[0].Body[0].(*BreakStmt); !ok {
		t.Errorf("if body = %#v, want break", ifStmt.Arms[0].Body[0])
	}
}

func TestParseDataAndGlobal(t *testing.T) {
	program := mustParse(t, `
data pair {
    a: [8],
    b: [8]
}

p: pair.
xs: [8] ^ 3.
r: <pair>.
`)
	data, ok := program.Decls[0].(*DataDecl)
	if !ok || data.Name != "pair" || len(data.Fields) != 2 {
		t.Fatalf("first declaration = %+v, want data pair", program.Decls[0])
	}

	global := program.Decls[1].(*GlobalDecl)
	named, ok := global.Type.(*NamedTypeNode)
	if !ok || named.Name != "pair" {
		t.Errorf("global p type = %#v, want pair", global.Type)
	}

	array := program.Decls[2].(*GlobalDecl)
	arrayNode, ok := array.Type.(*ArrayTypeNode)
	if !ok || arrayNode.Length != 3 {
		t.Errorf("global xs type = %#v, want [8] ^ 3", array.Type)
	}

	ref := program.Decls[3].(*GlobalDecl)
	if _, ok := ref.Type.(*RefTypeNode); !ok {
		t.Errorf("global r type = %#v, want reference", ref.Type)
	}
}

func TestParseLvalueForms(t *testing.T) {
	program := mustParse(t, `
entry() [0] {
    set p / b = 9:8.
    set xs @ 2:8 = 77:8.
    set <r> / a = 1:8.
    set <<q>> = 2:8.
    return.
}
`)
	body := program.Decls[0].(*RoutineDecl).Body

	projection := body[0].(*SetStmt).Target
	if projection.Kind != LvalueName || projection.Name != "p" {
		t.Errorf("projection base = %+v, want p", projection)
	}
	if len(projection.Steps) != 1 || projection.Steps[0].Field != "b" {
		t.Errorf("projection steps = %+v, want field b", projection.Steps)
	}

	index := body[1].(*SetStmt).Target
	if len(index.Steps) != 1 || index.Steps[0].Index == nil {
		t.Fatalf("index steps = %+v, want one index", index.Steps)
	}
	literal, ok := index.Steps[0].Index.(*Literal)
	if !ok || literal.Value != 2 || literal.Width != 8 {
		t.Errorf("index expression = %#v, want 2:8", index.Steps[0].Index)
	}

	deref := body[2].(*SetStmt).Target
	if deref.Kind != LvalueDeref || deref.Inner.Name != "r" {
		t.Errorf("deref = %+v, want <r>", deref)
	}
	if len(deref.Steps) != 1 || deref.Steps[0].Field != "a" {
		t.Errorf("deref steps = %+v, want field a", deref.Steps)
	}

	nested := body[3].(*SetStmt).Target
	if nested.Kind != LvalueDeref || nested.Inner.Kind != LvalueDeref || nested.Inner.Inner.Name != "q" {
		t.Errorf("nested deref = %+v, want <<q>>", nested)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	program := mustParse(t, `
entry() [0] {
    set x = 1:8 + 2:8 * 3:8.
    return.
}
`)
	set := program.Decls[0].(*RoutineDecl).Body[0].(*SetStmt)
	sum, ok := set.Value.(*BinaryExpr)
	if !ok || sum.Op != "+" {
		t.Fatalf("expression = %#v, want addition at the root", set.Value)
	}
	product, ok := sum.Right.(*BinaryExpr)
	if !ok || product.Op != "*" {
		t.Errorf("right operand = %#v, want multiplication", sum.Right)
	}
}

func TestParseCastAndSizeof(t *testing.T) {
	program := mustParse(t, `
entry() [0] {
    set w = x : [16].
    set n = sizeof([8] ^ 4).
    return.
}
`)
	body := program.Decls[0].(*RoutineDecl).Body

	cast, ok := body[0].(*SetStmt).Value.(*CastExpr)
	if !ok {
		t.Fatalf("first value = %#v, want cast", body[0].(*SetStmt).Value)
	}
	if base, ok := cast.Type.(*BaseTypeNode); !ok || base.Width != 16 {
		t.Errorf("cast target = %#v, want [16]", cast.Type)
	}

	sizeof, ok := body[1].(*SetStmt).Value.(*SizeofExpr)
	if !ok {
		t.Fatalf("second value = %#v, want sizeof", body[1].(*SetStmt).Value)
	}
	if _, ok := sizeof.Type.(*ArrayTypeNode); !ok {
		t.Errorf("sizeof target = %#v, want array type", sizeof.Type)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("entry() [0] { set = 1:8. }")
	if err == nil {
		t.Fatal("Parse() accepted a malformed set statement")
	}
	if _, ok := err.(*CompileError); !ok {
		t.Errorf("Parse() error is %T, want *CompileError", err)
	}
}
