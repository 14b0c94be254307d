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

// Package storn compiles the Storn language to Vertex assembly.
package storn

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// Program is the parse tree root: an ordered list of top-level
// declarations.
type Program struct {
	Decls []Decl
}

// Decl is a top-level declaration: a record, a global variable or a
// routine.
type Decl interface {
	declNode()
}

// TypedVar is a name: Type pair, used for record fields, globals,
// parameters and locals.
type TypedVar struct {
	Pos
	Name string
	Type TypeNode
}

// DataDecl declares a record type.
type DataDecl struct {
	Pos
	Name   string
	Fields []TypedVar
}

// GlobalDecl declares a module-wide variable in the global region.
type GlobalDecl struct {
	TypedVar
}

// RoutineDecl declares a routine. The routine named entry is the
// program's designated entry point.
type RoutineDecl struct {
	Pos
	Name   string
	Params []TypedVar
	Return TypeNode
	Locals []TypedVar
	Body   []Stmt
}

func (*DataDecl) declNode()    {}
func (*GlobalDecl) declNode()  {}
func (*RoutineDecl) declNode() {}

// TypeNode is an unresolved syntactic type form.
type TypeNode interface {
	typeNode()
	NodePos() Pos
}

// BaseTypeNode is [0], [8] or [16].
type BaseTypeNode struct {
	Pos
	Width int
}

// NamedTypeNode is a data type referenced by name.
type NamedTypeNode struct {
	Pos
	Name string
}

// RefTypeNode is <Type>.
type RefTypeNode struct {
	Pos
	Inner TypeNode
}

// ArrayTypeNode is Type ^ N.
type ArrayTypeNode struct {
	Pos
	Elem   TypeNode
	Length int
}

func (*BaseTypeNode) typeNode()  {}
func (*NamedTypeNode) typeNode() {}
func (*RefTypeNode) typeNode()   {}
func (*ArrayTypeNode) typeNode() {}

func (n *BaseTypeNode) NodePos() Pos  { return n.Pos }
func (n *NamedTypeNode) NodePos() Pos { return n.Pos }
func (n *RefTypeNode) NodePos() Pos   { return n.Pos }
func (n *ArrayTypeNode) NodePos() Pos { return n.Pos }

// Stmt is one statement node.
type Stmt interface {
	stmtNode()
}

// SetStmt is set lvalue = expression.
type SetStmt struct {
	Pos
	Target *Lvalue
	Value  Expr
}

// IfArm is one guarded arm of an if/elif chain.
type IfArm struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is if/elif/else.
type IfStmt struct {
	Pos
	Arms []IfArm
	Else []Stmt
}

// LoopStmt loops its body until a break.
type LoopStmt struct {
	Pos
	Body []Stmt
}

// BreakStmt jumps past the innermost loop.
type BreakStmt struct {
	Pos
}

// ContinueStmt jumps to the start of the innermost loop.
type ContinueStmt struct {
	Pos
}

// OutputStmt writes an expression to the output port byte by byte.
type OutputStmt struct {
	Pos
	Value Expr
}

// ReturnStmt leaves the routine; Value is nil for a bare return.
type ReturnStmt struct {
	Pos
	Value Expr
}

// CallStmt is a routine call in statement position; the return value
// is discarded.
type CallStmt struct {
	Pos
	Call *CallExpr
}

func (*SetStmt) stmtNode()      {}
func (*IfStmt) stmtNode()       {}
func (*LoopStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*OutputStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()   {}
func (*CallStmt) stmtNode()     {}

// Expr is one expression node.
type Expr interface {
	exprNode()
	ExprPos() Pos
}

// Literal is value:width.
type Literal struct {
	Pos
	Value int
	Width int
}

// SizeofExpr is sizeof(Type), the byte size of a type.
type SizeofExpr struct {
	Pos
	Type TypeNode
}

// CallExpr calls a routine, leaving its return value on the stack.
type CallExpr struct {
	Pos
	Name string
	Args []Expr
}

// LvalueExpr reads the value a lvalue denotes onto the stack.
type LvalueExpr struct {
	Pos
	Lvalue *Lvalue
}

// BinaryExpr applies Op to Left and Right. Op is the source operator:
// or and | & ^ = < > <= >= + - << >> *
type BinaryExpr struct {
	Pos
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr is unary minus or not.
type UnaryExpr struct {
	Pos
	Op      string
	Operand Expr
}

// CastExpr is expression : Type.
type CastExpr struct {
	Pos
	Operand Expr
	Type    TypeNode
}

func (*Literal) exprNode()    {}
func (*SizeofExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*LvalueExpr) exprNode() {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*CastExpr) exprNode()   {}

func (e *Literal) ExprPos() Pos    { return e.Pos }
func (e *SizeofExpr) ExprPos() Pos { return e.Pos }
func (e *CallExpr) ExprPos() Pos   { return e.Pos }
func (e *LvalueExpr) ExprPos() Pos { return e.Pos }
func (e *BinaryExpr) ExprPos() Pos { return e.Pos }
func (e *UnaryExpr) ExprPos() Pos  { return e.Pos }
func (e *CastExpr) ExprPos() Pos   { return e.Pos }

// LvalueKind tags the innermost form of a lvalue chain.
type LvalueKind int

const (
	// LvalueName is a bare variable.
	LvalueName LvalueKind = iota
	// LvalueDeref is <lvalue>, following a reference.
	LvalueDeref
	// LvalueParen is a parenthesised lvalue.
	LvalueParen
)

// LvalueStep is one projection (/ field) or index (@ expression)
// applied to a lvalue. Exactly one of Field and Index is set.
type LvalueStep struct {
	Pos
	Field string
	Index Expr
}

// Lvalue is a syntactic form denoting an address. Evaluating it leaves
// the address in the register pair HL.
type Lvalue struct {
	Pos
	Kind  LvalueKind
	Name  string
	Inner *Lvalue
	Steps []LvalueStep
}
