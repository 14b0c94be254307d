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

package vtx

import (
	"strings"
	"testing"
)

func TestParseProgram(t *testing.T) {
	source := `
; compute something
START:
  ldr a 5      ; immediate load
  add cc b
  jmp zf START
  str @0x1234 a
  psh s
  hlt
`
	lines, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(lines) != 7 {
		t.Fatalf("Parse() produced %d lines, want 7", len(lines))
	}

	if !lines[0].IsLabel() || lines[0].Label != "START" {
		t.Errorf("line 0 = %+v, want label START", lines[0])
	}

	ldr := lines[1]
	if ldr.Mnemonic != "ldr" || len(ldr.Operands) != 2 {
		t.Fatalf("line 1 = %+v, want ldr with 2 operands", ldr)
	}
	if ldr.Operands[0].Kind != OperandReg || ldr.Operands[0].Reg != "a" {
		t.Errorf("ldr destination = %+v, want register a", ldr.Operands[0])
	}
	if ldr.Operands[1].Kind != OperandImm || ldr.Operands[1].Value != 5 {
		t.Errorf("ldr source = %+v, want constant 5", ldr.Operands[1])
	}

	add := lines[2]
	if add.Operands[0].Kind != OperandCarry {
		t.Errorf("add first operand = %+v, want carry suffix", add.Operands[0])
	}

	jmp := lines[3]
	if jmp.Operands[0].Kind != OperandCond || jmp.Operands[0].Cond != "zf" {
		t.Errorf("jmp condition = %+v, want zf", jmp.Operands[0])
	}
	if jmp.Operands[1].Kind != OperandName || jmp.Operands[1].Name != "START" {
		t.Errorf("jmp target = %+v, want label reference START", jmp.Operands[1])
	}

	str := lines[4]
	if str.Operands[0].Kind != OperandAddr || str.Operands[0].Value != 0x1234 {
		t.Errorf("str destination = %+v, want address 0x1234", str.Operands[0])
	}

	psh := lines[5]
	if psh.Operands[0].Kind != OperandReg || psh.Operands[0].Reg != "s" {
		t.Errorf("psh operand = %+v, want status register", psh.Operands[0])
	}
}

func TestParseMalformedAddress(t *testing.T) {
	_, err := Parse("ldr a @zzz")
	if err == nil || !strings.Contains(err.Error(), "malformed address") {
		t.Errorf("Parse() error = %v, want malformed address", err)
	}
}

func TestParseMalformedConstant(t *testing.T) {
	_, err := Parse("ldr a 999")
	if err == nil || !strings.Contains(err.Error(), "malformed constant") {
		t.Errorf("Parse() error = %v, want malformed constant", err)
	}
}
