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

// Package vtx parses and assembles the Vertex assembly dialect.
package vtx

// OperandKind tags the operand forms the grammar recognises.
type OperandKind int

const (
	// OperandReg is a register name: a, b, c, h, l, bph, bpl, sph,
	// spl, or s (the status register, push/pop only).
	OperandReg OperandKind = iota
	// OperandImm is an 8-bit constant.
	OperandImm
	// OperandAddr is a 16-bit address written @N.
	OperandAddr
	// OperandM is the byte addressed by the register pair H:L.
	OperandM
	// OperandCond is a jump condition: zf, nzf, sf, nsf, cf, ncf.
	OperandCond
	// OperandCarry is the carry suffix on arithmetic and shifts.
	OperandCarry
	// OperandName is a label reference.
	OperandName
)

// Operand is one parsed instruction operand.
type Operand struct {
	Kind  OperandKind
	Reg   string // OperandReg
	Value int    // OperandImm, OperandAddr
	Cond  string // OperandCond
	Name  string // OperandName
}

// Line is one parsed source line: either a label definition or an
// instruction. Number is the 1-based source line for diagnostics.
type Line struct {
	Label    string
	Mnemonic string
	Operands []Operand
	Number   int
}

// IsLabel reports whether the line defines a label.
func (l Line) IsLabel() bool {
	return l.Label != ""
}
