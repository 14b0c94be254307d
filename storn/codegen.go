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
	"fmt"
	"strings"
)

// GlobalBase is the fixed address of the module-wide global variable
// region. Globals are laid out upward from here in declaration order.
const GlobalBase = 0x0100

// Parameter offsets from BP start past the saved base pointer and the
// two return address bytes:
//
//	PARAM_0    <- BP+4
//	RETURN_HI  <- BP+3
//	RETURN_LO  <- BP+2
//	BPH saved  <- BP+1
//	BPL saved  <- BP points here
//	LOCAL_0    <- BP-size(LOCAL_0)
const firstParamOffset = 4

// Routine is the compile-time record of a routine's frame layout.
type Routine struct {
	ParamNames []string
	Params     map[string]Type
	Return     Type
	LocalNames []string
	Locals     map[string]Type
	LocalsSize int
	IsEntry    bool
}

// Module is the output of code generation: the assembly text plus the
// routine names to export.
type Module struct {
	Assembly string
	Routines []string
	HasEntry bool
}

// Generator walks the parse tree and emits assembly. It owns the data,
// global and routine tables, the label counter and the loop stack.
type Generator struct {
	lines        []string
	dataTable    map[string]*Data
	globals      map[string]Type
	globalCursor int
	routines     map[string]*Routine
	routineNames []string
	current      *Routine
	labelCount   int
	loopStack    [][2]string
}

// Generate compiles a parsed program to assembly.
func Generate(program *Program) (*Module, error) {
	g := &Generator{
		dataTable: make(map[string]*Data),
		globals:   make(map[string]Type),
		routines:  make(map[string]*Routine),
	}
	return g.run(program)
}

func (g *Generator) run(program *Program) (*Module, error) {
	// Register every declaration before compiling any body, so
	// routines can call each other regardless of source order.
	for _, decl := range program.Decls {
		var err error
		switch d := decl.(type) {
		case *DataDecl:
			err = g.declareData(d)
		case *GlobalDecl:
			err = g.declareGlobal(d)
		case *RoutineDecl:
			err = g.declareRoutine(d)
		}
		if err != nil {
			return nil, err
		}
	}

	module := &Module{Routines: append([]string{}, g.routineNames...)}
	if _, ok := g.routines["entry"]; ok {
		module.HasEntry = true
		g.emit("jmp ENTRY")
	}

	for _, decl := range program.Decls {
		routine, ok := decl.(*RoutineDecl)
		if !ok {
			continue
		}
		if err := g.compileRoutine(routine); err != nil {
			return nil, err
		}
	}

	module.Assembly = strings.Join(g.lines, "\n") + "\n"
	return module, nil
}

func (g *Generator) emit(lines ...string) {
	g.lines = append(g.lines, lines...)
}

func (g *Generator) newLabel() string {
	label := fmt.Sprintf("L%d", g.labelCount)
	g.labelCount++
	return label
}

// buildType maps a syntactic type form to a Type variant.
func buildType(node TypeNode) (Type, error) {
	switch n := node.(type) {
	case *BaseTypeNode:
		if n.Width != 0 && n.Width != 8 && n.Width != 16 {
			return nil, compileErrorf(n.Pos, "width must be 0, 8 or 16, not %d", n.Width)
		}
		return &Base{Width: n.Width}, nil
	case *NamedTypeNode:
		return &Unresolved{Name: n.Name}, nil
	case *RefTypeNode:
		inner, err := buildType(n.Inner)
		if err != nil {
			return nil, err
		}
		return &Reference{Inner: inner}, nil
	case *ArrayTypeNode:
		elem, err := buildType(n.Elem)
		if err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Length: n.Length}, nil
	}
	return nil, compileErrorf(node.NodePos(), "unknown type form")
}

// sizedType builds a type and fills in its size.
func (g *Generator) sizedType(node TypeNode) (Type, error) {
	t, err := buildType(node)
	if err != nil {
		return nil, err
	}
	if err := computeSize(t, g.dataTable, node.NodePos()); err != nil {
		return nil, err
	}
	return t, nil
}

func (g *Generator) declareData(decl *DataDecl) error {
	fieldNames := make([]string, 0, len(decl.Fields))
	fields := make(map[string]Type, len(decl.Fields))
	for _, field := range decl.Fields {
		fieldType, err := buildType(field.Type)
		if err != nil {
			return err
		}
		fieldNames = append(fieldNames, field.Name)
		fields[field.Name] = fieldType
	}
	data, err := newData(decl.Pos, decl.Name, fieldNames, fields)
	if err != nil {
		return err
	}
	if err := computeSize(data, g.dataTable, decl.Pos); err != nil {
		return err
	}
	computeOffset(data, 0)
	g.dataTable[decl.Name] = data
	return nil
}

func (g *Generator) declareGlobal(decl *GlobalDecl) error {
	t, err := g.sizedType(decl.Type)
	if err != nil {
		return err
	}
	computeOffset(t, g.globalCursor)
	g.globalCursor += t.Size()
	g.globals[decl.Name] = t
	return nil
}

// declareRoutine lays out the call frame: parameter offsets grow
// upward from BP+4 in declaration order, local offsets grow downward
// from BP so the first-declared local sits directly below it.
func (g *Generator) declareRoutine(decl *RoutineDecl) error {
	if _, exists := g.routines[decl.Name]; exists {
		return compileErrorf(decl.Pos, "redeclaring routine %s", decl.Name)
	}

	routine := &Routine{
		Params:  make(map[string]Type),
		Locals:  make(map[string]Type),
		IsEntry: decl.Name == "entry",
	}

	offset := firstParamOffset
	for _, param := range decl.Params {
		t, err := g.sizedType(param.Type)
		if err != nil {
			return err
		}
		computeOffset(t, offset)
		offset += t.Size()
		routine.ParamNames = append(routine.ParamNames, param.Name)
		routine.Params[param.Name] = t
	}

	ret, err := g.sizedType(decl.Return)
	if err != nil {
		return err
	}
	routine.Return = ret

	cumulative := 0
	for _, local := range decl.Locals {
		t, err := g.sizedType(local.Type)
		if err != nil {
			return err
		}
		cumulative += t.Size()
		computeOffset(t, cumulative)
		routine.LocalNames = append(routine.LocalNames, local.Name)
		routine.Locals[local.Name] = t
	}
	routine.LocalsSize = cumulative

	g.routines[decl.Name] = routine
	g.routineNames = append(g.routineNames, decl.Name)
	return nil
}

func (g *Generator) compileRoutine(decl *RoutineDecl) error {
	routine := g.routines[decl.Name]
	g.current = routine

	// Prologue: save the caller's BP, point BP at the new frame, then
	// open room for the locals below it. The routine label is its
	// upper-cased name.
	g.emit(
		strings.ToUpper(decl.Name)+":",
		"psh bph",
		"psh bpl",
		"ldr bph sph",
		"ldr bpl spl",
		"ldr a spl",
		fmt.Sprintf("sub %d", routine.LocalsSize&0xFF),
		"ldr spl a",
		"ldr a sph",
		fmt.Sprintf("sub cc %d", routine.LocalsSize>>8),
		"ldr sph a",
	)

	return g.genStatements(decl.Body)
}

func (g *Generator) genStatements(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genStatement(stmt Stmt) error {
	switch s := stmt.(type) {
	case *SetStmt:
		return g.genSet(s)
	case *IfStmt:
		return g.genIf(s)
	case *LoopStmt:
		return g.genLoop(s)
	case *BreakStmt:
		if len(g.loopStack) == 0 {
			return compileErrorf(s.Pos, "break outside loop")
		}
		g.emit("jmp " + g.loopStack[len(g.loopStack)-1][1])
		return nil
	case *ContinueStmt:
		if len(g.loopStack) == 0 {
			return compileErrorf(s.Pos, "continue outside loop")
		}
		g.emit("jmp " + g.loopStack[len(g.loopStack)-1][0])
		return nil
	case *OutputStmt:
		return g.genOutput(s)
	case *ReturnStmt:
		return g.genReturn(s)
	case *CallStmt:
		returnType, err := g.genCall(s.Call)
		if err != nil {
			return err
		}
		// The discarded return value is popped off the stack.
		g.adjustStackPointer("add", returnType.Size())
		return nil
	}
	return fmt.Errorf("unknown statement node %T", stmt)
}

// genSet compiles the expression before the lvalue so the lvalue
// emission is free to clobber HL, then drains the stack into the
// target bytes.
func (g *Generator) genSet(s *SetStmt) error {
	expressionType, err := g.genExpression(s.Value)
	if err != nil {
		return err
	}
	lvalueType, err := g.genLvalue(s.Target)
	if err != nil {
		return err
	}
	if !typesEqual(lvalueType, expressionType, g.dataTable) {
		return compileErrorf(s.Pos, "cannot set %s from expression of type %s", lvalueType, expressionType)
	}
	g.copyStackToMemory(lvalueType.Size())
	return nil
}

// copyStackToMemory pops size bytes into [HL..HL+size). The stack
// pushes values low byte on top, so popping while HL walks upward
// lands the bytes in little-endian order.
func (g *Generator) copyStackToMemory(size int) {
	start := g.newLabel()
	end := g.newLabel()
	g.emit(
		fmt.Sprintf("ldr c %d", size),
		start+":",
		"ldr a c",
		"jmp zf "+end,
		"dec",
		"ldr c a",
		"pop a",
		"str m a",
		"ldr a l",
		"inc",
		"ldr l a",
		"ldr a h",
		"inc cc",
		"ldr h a",
		"jmp "+start,
		end+":",
	)
}

// copyMemoryToStack pushes the size bytes at [HL..HL+size) onto the
// stack. HL is first advanced to the last byte, then the bytes load
// high to low so the lowest lands on top of the stack.
func (g *Generator) copyMemoryToStack(size int) {
	if size > 1 {
		g.adjustAddressPair("add", size-1)
	}
	start := g.newLabel()
	end := g.newLabel()
	g.emit(
		fmt.Sprintf("ldr c %d", size),
		start+":",
		"ldr a c",
		"jmp zf "+end,
		"dec",
		"ldr c a",
		"ldr a m",
		"psh a",
		"ldr a l",
		"dec",
		"ldr l a",
		"ldr a h",
		"dec cc",
		"ldr h a",
		"jmp "+start,
		end+":",
	)
}

// adjustAddressPair adds or subtracts a constant on HL with carry into
// the high byte.
func (g *Generator) adjustAddressPair(op string, amount int) {
	g.emit(
		"ldr a l",
		fmt.Sprintf("%s %d", op, amount&0xFF),
		"ldr l a",
		"ldr a h",
		fmt.Sprintf("%s cc %d", op, amount>>8),
		"ldr h a",
	)
}

// adjustStackPointer adds or subtracts a constant on SP with carry
// into the high byte.
func (g *Generator) adjustStackPointer(op string, amount int) {
	g.emit(
		"ldr a spl",
		fmt.Sprintf("%s %d", op, amount&0xFF),
		"ldr spl a",
		"ldr a sph",
		fmt.Sprintf("%s cc %d", op, amount>>8),
		"ldr sph a",
	)
}

// frameAddress leaves BP+offset (parameters) or BP-offset (locals)
// in HL.
func (g *Generator) frameAddress(op string, offset int) {
	g.emit(
		"ldr a bpl",
		fmt.Sprintf("%s %d", op, offset&0xFF),
		"ldr l a",
		"ldr a bph",
		fmt.Sprintf("%s cc %d", op, offset>>8),
		"ldr h a",
	)
}

// genLvalue leaves the address of the target in HL and returns its
// static type. Index expressions are evaluated first, in reverse, so
// their code cannot clobber HL once the address walk begins.
func (g *Generator) genLvalue(lv *Lvalue) (Type, error) {
	for i := len(lv.Steps) - 1; i >= 0; i-- {
		step := lv.Steps[i]
		if step.Index == nil {
			continue
		}
		indexType, err := g.genExpression(step.Index)
		if err != nil {
			return nil, err
		}
		if !isBase(indexType, 8) {
			return nil, compileErrorf(step.Pos, "index expression must be [8], not %s", indexType)
		}
	}

	current, err := g.genLvalueBase(lv)
	if err != nil {
		return nil, err
	}

	for _, step := range lv.Steps {
		if step.Index == nil {
			current, err = g.genProjection(current, step)
		} else {
			current, err = g.genIndex(current, step)
		}
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

func (g *Generator) genLvalueBase(lv *Lvalue) (Type, error) {
	switch lv.Kind {
	case LvalueParen:
		return g.genLvalue(lv.Inner)
	case LvalueDeref:
		inner, err := g.genLvalue(lv.Inner)
		if err != nil {
			return nil, err
		}
		return g.genDeref(inner, lv.Pos)
	case LvalueName:
		return g.genVariable(lv.Name, lv.Pos)
	}
	return nil, compileErrorf(lv.Pos, "unknown lvalue form")
}

// genVariable resolves a bare name against locals, then parameters,
// then globals, and emits the address computation.
func (g *Generator) genVariable(name string, pos Pos) (Type, error) {
	if t, ok := g.current.Locals[name]; ok {
		g.frameAddress("sub", t.Offset())
		return resolve(t, g.dataTable), nil
	}
	if t, ok := g.current.Params[name]; ok {
		g.frameAddress("add", t.Offset())
		return resolve(t, g.dataTable), nil
	}
	if t, ok := g.globals[name]; ok {
		address := GlobalBase + t.Offset()
		g.emit(
			fmt.Sprintf("ldr h %d", address>>8),
			fmt.Sprintf("ldr l %d", address&0xFF),
		)
		return resolve(t, g.dataTable), nil
	}
	return nil, compileErrorf(pos, "reference to unknown variable %s", name)
}

// genDeref follows a reference: HL := mem16le(HL).
func (g *Generator) genDeref(t Type, pos Pos) (Type, error) {
	ref, ok := t.(*Reference)
	if !ok {
		return nil, compileErrorf(pos, "cannot dereference non-reference type %s", t)
	}
	g.emit(
		"ldr b m",
		"ldr a l",
		"inc",
		"ldr l a",
		"ldr a h",
		"inc cc",
		"ldr h a",
		"ldr h m",
		"ldr l b",
	)
	return resolve(ref.Inner, g.dataTable), nil
}

// genProjection steps into a record field: HL += offset(field).
func (g *Generator) genProjection(t Type, step LvalueStep) (Type, error) {
	data, ok := t.(*Data)
	if !ok {
		return nil, compileErrorf(step.Pos, "cannot project non-data type %s", t)
	}
	fieldType, ok := data.Fields[step.Field]
	if !ok {
		return nil, compileErrorf(step.Pos, "data %s has no field %s", data.Name, step.Field)
	}
	g.adjustAddressPair("add", fieldType.Offset())
	return resolve(fieldType, g.dataTable), nil
}

// genIndex steps into an array element. The index byte is on the
// stack; HL += size(elem) * index by repeated addition.
func (g *Generator) genIndex(t Type, step LvalueStep) (Type, error) {
	array, ok := t.(*Array)
	if !ok {
		return nil, compileErrorf(step.Pos, "cannot index non-array type %s", t)
	}
	elemSize := array.Elem.Size()
	start := g.newLabel()
	end := g.newLabel()
	g.emit(
		"pop a",
		"ldr c a",
		start+":",
		"ldr a c",
		"jmp zf "+end,
		"dec",
		"ldr c a",
		"ldr a l",
		fmt.Sprintf("add %d", elemSize&0xFF),
		"ldr l a",
		"ldr a h",
		fmt.Sprintf("add cc %d", elemSize>>8),
		"ldr h a",
		"jmp "+start,
		end+":",
	)
	return resolve(array.Elem, g.dataTable), nil
}

func (g *Generator) genIf(s *IfStmt) error {
	end := g.newLabel()
	for _, arm := range s.Arms {
		condType, err := g.genExpression(arm.Cond)
		if err != nil {
			return err
		}
		fail := g.newLabel()
		switch {
		case isBase(condType, 8):
			g.emit("pop a")
		case isBase(condType, 16):
			g.emit("pop a", "pop b", "or b")
		default:
			return compileErrorf(s.Pos, "condition must be numerical, not %s", condType)
		}
		g.emit("jmp zf " + fail)
		if err := g.genStatements(arm.Body); err != nil {
			return err
		}
		g.emit("jmp "+end, fail+":")
	}
	if err := g.genStatements(s.Else); err != nil {
		return err
	}
	g.emit(end + ":")
	return nil
}

func (g *Generator) genLoop(s *LoopStmt) error {
	start := g.newLabel()
	end := g.newLabel()
	g.loopStack = append(g.loopStack, [2]string{start, end})
	g.emit(start + ":")
	if err := g.genStatements(s.Body); err != nil {
		return err
	}
	g.emit("jmp "+start, end+":")
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	return nil
}

func (g *Generator) genOutput(s *OutputStmt) error {
	t, err := g.genExpression(s.Value)
	if err != nil {
		return err
	}
	start := g.newLabel()
	end := g.newLabel()
	g.emit(
		fmt.Sprintf("ldr c %d", t.Size()),
		start+":",
		"ldr a c",
		"jmp zf "+end,
		"dec",
		"ldr c a",
		"pop a",
		"out",
		"jmp "+start,
		end+":",
	)
	return nil
}

func (g *Generator) genReturn(s *ReturnStmt) error {
	if g.current.IsEntry {
		g.emit("hlt")
		return nil
	}

	if s.Value != nil {
		expressionType, err := g.genExpression(s.Value)
		if err != nil {
			return err
		}
		if !typesEqual(expressionType, g.current.Return, g.dataTable) {
			return compileErrorf(s.Pos, "return expression of type %s does not match routine type %s", expressionType, g.current.Return)
		}

		// Drain the result into the caller-allocated return space,
		// which sits just above the last parameter.
		offset := firstParamOffset
		for _, name := range g.current.ParamNames {
			offset += g.current.Params[name].Size()
		}
		g.frameAddress("add", offset)
		g.copyStackToMemory(g.current.Return.Size())
	} else if g.current.Return.Size() != 0 {
		return compileErrorf(s.Pos, "routine returns %s but the return carries no expression", g.current.Return)
	}

	// Epilogue: unwind to the caller's frame and jump to the return
	// address left in HL.
	g.emit(
		"ldr sph bph",
		"ldr spl bpl",
		"pop bpl",
		"pop bph",
		"pop l",
		"pop h",
		"jmp m",
	)
	return nil
}

// genCall allocates the return space, pushes the arguments in reverse
// source order so the first parameter lands at the lowest address,
// calls, and pops the parameters. The return value stays on top of the
// stack.
func (g *Generator) genCall(c *CallExpr) (Type, error) {
	routine, ok := g.routines[c.Name]
	if !ok {
		return nil, compileErrorf(c.Pos, "reference to unknown routine %s", c.Name)
	}
	if len(c.Args) != len(routine.ParamNames) {
		return nil, compileErrorf(c.Pos, "routine %s takes %d parameters, not %d", c.Name, len(routine.ParamNames), len(c.Args))
	}

	g.adjustStackPointer("sub", routine.Return.Size())

	totalParamSize := 0
	for i := len(c.Args) - 1; i >= 0; i-- {
		argType, err := g.genExpression(c.Args[i])
		if err != nil {
			return nil, err
		}
		expected := routine.Params[routine.ParamNames[i]]
		if !typesEqual(argType, expected, g.dataTable) {
			return nil, compileErrorf(c.Args[i].ExprPos(), "argument %d of %s is %s, want %s", i+1, c.Name, argType, expected)
		}
		totalParamSize += argType.Size()
	}

	g.emit("cal " + strings.ToUpper(c.Name))
	g.adjustStackPointer("add", totalParamSize)
	return routine.Return, nil
}

func (g *Generator) genExpression(e Expr) (Type, error) {
	switch v := e.(type) {
	case *Literal:
		return g.genLiteral(v)
	case *SizeofExpr:
		t, err := g.sizedType(v.Type)
		if err != nil {
			return nil, err
		}
		size := t.Size()
		g.emit(
			fmt.Sprintf("psh %d", size>>8),
			fmt.Sprintf("psh %d", size&0xFF),
		)
		return &Base{Width: 16}, nil
	case *CallExpr:
		return g.genCall(v)
	case *LvalueExpr:
		t, err := g.genLvalue(v.Lvalue)
		if err != nil {
			return nil, err
		}
		g.copyMemoryToStack(t.Size())
		return t, nil
	case *BinaryExpr:
		return g.genBinary(v)
	case *UnaryExpr:
		return g.genUnary(v)
	case *CastExpr:
		return g.genCast(v)
	}
	return nil, fmt.Errorf("unknown expression node %T", e)
}

// genLiteral pushes a constant. A 16-bit value pushes high byte first
// so the low byte ends up on top of the stack.
func (g *Generator) genLiteral(lit *Literal) (Type, error) {
	switch lit.Width {
	case 0:
		if lit.Value != 0 {
			return nil, compileErrorf(lit.Pos, "a [0] literal carries no value")
		}
	case 8:
		if lit.Value < 0 || lit.Value > 0xFF {
			return nil, compileErrorf(lit.Pos, "literal %d does not fit in 8 bits", lit.Value)
		}
		g.emit(fmt.Sprintf("psh %d", lit.Value))
	case 16:
		if lit.Value < 0 || lit.Value > 0xFFFF {
			return nil, compileErrorf(lit.Pos, "literal %d does not fit in 16 bits", lit.Value)
		}
		g.emit(
			fmt.Sprintf("psh %d", lit.Value>>8),
			fmt.Sprintf("psh %d", lit.Value&0xFF),
		)
	default:
		return nil, compileErrorf(lit.Pos, "width must be 0, 8 or 16, not %d", lit.Width)
	}
	return &Base{Width: lit.Width}, nil
}

// binaryOperands compiles both sides of a binary operator and checks
// they are scalars of equal width.
func (g *Generator) binaryOperands(e *BinaryExpr) (int, error) {
	left, err := g.genExpression(e.Left)
	if err != nil {
		return 0, err
	}
	leftBase, ok := left.(*Base)
	if !ok {
		return 0, compileErrorf(e.Pos, "operand of %q must be numerical, not %s", e.Op, left)
	}
	right, err := g.genExpression(e.Right)
	if err != nil {
		return 0, err
	}
	rightBase, ok := right.(*Base)
	if !ok {
		return 0, compileErrorf(e.Pos, "operand of %q must be numerical, not %s", e.Op, right)
	}
	if leftBase.Width != rightBase.Width {
		return 0, compileErrorf(e.Pos, "operands of %q have differing widths %d and %d", e.Op, leftBase.Width, rightBase.Width)
	}
	return leftBase.Width, nil
}

func (g *Generator) genBinary(e *BinaryExpr) (Type, error) {
	switch e.Op {
	case "or", "and":
		return g.genLogical(e)
	case "|", "&", "^":
		return g.genBitwise(e)
	case "=", "<", ">", "<=", ">=":
		return g.genComparison(e)
	case "+", "-":
		return g.genAdditive(e)
	case "<<", ">>":
		return g.genShift(e)
	case "*":
		return g.genMultiply(e)
	}
	return nil, compileErrorf(e.Pos, "unknown operator %q", e.Op)
}

// genLogical shorts both operands to 0/1 booleans, then combines them
// with AND or OR.
func (g *Generator) genLogical(e *BinaryExpr) (Type, error) {
	width, err := g.binaryOperands(e)
	if err != nil {
		return nil, err
	}
	if width != 8 {
		return nil, compileErrorf(e.Pos, "%d-bit logical operation is not implemented", width)
	}

	combine := "or c"
	if e.Op == "and" {
		combine = "and c"
	}
	firstTrue := g.newLabel()
	secondTrue := g.newLabel()
	g.emit(
		"pop b",
		"pop a",
		"or 0",
		"jmp zf "+firstTrue,
		"ldr a 1",
		firstTrue+":",
		"ldr c a",
		"ldr a b",
		"or 0",
		"jmp zf "+secondTrue,
		"ldr a 1",
		secondTrue+":",
		combine,
		"psh a",
	)
	return &Base{Width: 8}, nil
}

func (g *Generator) genBitwise(e *BinaryExpr) (Type, error) {
	width, err := g.binaryOperands(e)
	if err != nil {
		return nil, err
	}
	op := map[string]string{"|": "or", "&": "and", "^": "xor"}[e.Op]
	switch width {
	case 8:
		g.emit(
			"pop b",
			"pop a",
			op+" b",
			"psh a",
		)
	case 16:
		g.emit(
			"pop b",
			"pop c",
			"pop a",
			op+" b",
			"ldr b a",
			"pop a",
			op+" c",
			"psh a",
			"psh b",
		)
	default:
		return nil, compileErrorf(e.Pos, "cannot apply %q to width %d", e.Op, width)
	}
	return &Base{Width: width}, nil
}

// genComparison synthesises the five comparisons from subtraction and
// a flag test:
//
//	x = y  holds when y - x triggers zf
//	x < y  holds when x - y triggers sf
//	x > y  holds when y - x triggers sf
//	x <= y holds when y - x triggers nsf
//	x >= y holds when x - y triggers nsf
func (g *Generator) genComparison(e *BinaryExpr) (Type, error) {
	width, err := g.binaryOperands(e)
	if err != nil {
		return nil, err
	}

	// The stack holds y on top. pop b, pop a computes x - y; the
	// swapped order computes y - x.
	popOps := []string{"pop b", "pop a"}
	if e.Op == "=" || e.Op == ">" || e.Op == "<=" {
		popOps = []string{"pop a", "pop b"}
	}
	flag := "zf"
	if e.Op == "<" || e.Op == ">" {
		flag = "sf"
	}
	if e.Op == "<=" || e.Op == ">=" {
		flag = "nsf"
	}

	switch {
	case width == 8:
		match := g.newLabel()
		done := g.newLabel()
		g.emit(popOps[0], popOps[1],
			"sub b",
			"jmp "+flag+" "+match,
			"psh 0",
			"jmp "+done,
			match+":",
			"psh 1",
			done+":",
		)
	case width == 16 && e.Op == "=":
		// Two 8-bit subtractions; equal when the ORed differences
		// are zero.
		match := g.newLabel()
		done := g.newLabel()
		g.emit(
			"pop b",
			"pop c",
			"pop a",
			"sub b",
			"ldr b a",
			"pop a",
			"sub c",
			"or b",
			"jmp zf "+match,
			"psh 0",
			"jmp "+done,
			match+":",
			"psh 1",
			done+":",
		)
	default:
		return nil, compileErrorf(e.Pos, "16-bit ordered comparison is not implemented")
	}
	return &Base{Width: 8}, nil
}

func (g *Generator) genAdditive(e *BinaryExpr) (Type, error) {
	width, err := g.binaryOperands(e)
	if err != nil {
		return nil, err
	}
	op := "add"
	if e.Op == "-" {
		op = "sub"
	}
	switch width {
	case 8:
		g.emit(
			"pop b",
			"pop a",
			op+" b",
			"psh a",
		)
	case 16:
		g.emit(
			"pop b",
			"pop c",
			"pop a",
			op+" b",
			"ldr b a",
			"pop a",
			op+" cc c",
			"psh a",
			"psh b",
		)
	default:
		return nil, compileErrorf(e.Pos, "cannot apply %q to width %d", e.Op, width)
	}
	return &Base{Width: width}, nil
}

// genShift shifts an 8-bit value by an 8-bit amount through a counted
// loop of single-bit shifts.
func (g *Generator) genShift(e *BinaryExpr) (Type, error) {
	left, err := g.genExpression(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.genExpression(e.Right)
	if err != nil {
		return nil, err
	}
	if !isBase(right, 8) {
		return nil, compileErrorf(e.Pos, "shift amount must be [8], not %s", right)
	}
	if isBase(left, 16) {
		return nil, compileErrorf(e.Pos, "16-bit shift is not implemented")
	}
	if !isBase(left, 8) {
		return nil, compileErrorf(e.Pos, "cannot shift %s", left)
	}

	op := "shl"
	if e.Op == ">>" {
		op = "shr"
	}
	start := g.newLabel()
	end := g.newLabel()
	g.emit(
		"pop c",
		"pop b",
		start+":",
		"ldr a c",
		"jmp zf "+end,
		"dec",
		"ldr c a",
		"ldr a b",
		op,
		"ldr b a",
		"jmp "+start,
		end+":",
		"psh b",
	)
	return &Base{Width: 8}, nil
}

// genMultiply multiplies two 8-bit operands into a 16-bit product with
// an 8-step add-and-shift, accumulating in H:L with C as the bit
// counter.
func (g *Generator) genMultiply(e *BinaryExpr) (Type, error) {
	width, err := g.binaryOperands(e)
	if err != nil {
		return nil, err
	}
	if width != 8 {
		return nil, compileErrorf(e.Pos, "multiplication operands must be [8]")
	}
	step := g.newLabel()
	skip := g.newLabel()
	g.emit(
		"pop l",
		"pop b",
		"ldr h 0",
		"ldr c 8",
		step+":",
		"ldr a l",
		"and 1",
		"jmp zf "+skip,
		"ldr a h",
		"add b",
		"ldr h a",
		skip+":",
		"ldr a h",
		"shr",
		"ldr h a",
		"ldr a l",
		"shr cc",
		"ldr l a",
		"ldr a c",
		"dec",
		"ldr c a",
		"jmp nzf "+step,
		"psh h",
		"psh l",
	)
	return &Base{Width: 16}, nil
}

func (g *Generator) genUnary(e *UnaryExpr) (Type, error) {
	t, err := g.genExpression(e.Operand)
	if err != nil {
		return nil, err
	}
	base, ok := t.(*Base)
	if !ok {
		return nil, compileErrorf(e.Pos, "operand of unary %q must be numerical, not %s", e.Op, t)
	}

	if e.Op == "-" {
		switch base.Width {
		case 8:
			g.emit(
				"ldr a 0",
				"pop b",
				"sub b",
				"psh a",
			)
		case 16:
			g.emit(
				"pop b",
				"pop c",
				"ldr a 0",
				"sub b",
				"ldr b a",
				"ldr a 0",
				"sub cc c",
				"psh a",
				"psh b",
			)
		default:
			return nil, compileErrorf(e.Pos, "cannot negate width %d", base.Width)
		}
		return base, nil
	}

	switch base.Width {
	case 8:
		g.emit(
			"pop a",
			"not",
			"psh a",
		)
	case 16:
		g.emit(
			"pop a",
			"not",
			"ldr b a",
			"pop a",
			"not",
			"psh a",
			"psh b",
		)
	default:
		return nil, compileErrorf(e.Pos, "cannot complement width %d", base.Width)
	}
	return base, nil
}

// genCast converts between scalar widths, or relabels a value as
// another type of the identical size. Widening zero-extends; narrowing
// discards the high byte.
func (g *Generator) genCast(e *CastExpr) (Type, error) {
	from, err := g.genExpression(e.Operand)
	if err != nil {
		return nil, err
	}
	to, err := g.sizedType(e.Type)
	if err != nil {
		return nil, err
	}

	fromBase, fromIsBase := resolve(from, g.dataTable).(*Base)
	toBase, toIsBase := resolve(to, g.dataTable).(*Base)
	if fromIsBase && toIsBase {
		switch {
		case fromBase.Width == toBase.Width:
		case fromBase.Width == 16 && toBase.Width == 8:
			g.emit(
				"pop a",
				"pop b",
				"psh a",
			)
		case fromBase.Width == 8 && toBase.Width == 16:
			g.emit(
				"pop a",
				"psh 0",
				"psh a",
			)
		default:
			return nil, compileErrorf(e.Pos, "cannot cast %s to %s", from, to)
		}
		return to, nil
	}

	if from.Size() != to.Size() {
		return nil, compileErrorf(e.Pos, "cannot cast %s to %s of a different size", from, to)
	}
	return to, nil
}
