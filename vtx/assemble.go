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
	"fmt"
	"strings"

	"github.com/CameronLCrawford/vertex/isa"
)

// MemorySize is the CPU's full address space. A program with no start
// address is placed so its last byte sits at the top of memory.
const MemorySize = 1 << 16

// Options configures one assembly run.
type Options struct {
	// StartAddress is the absolute address of the program's first
	// byte. Negative places the program at the end of memory.
	StartAddress int
	// Imports maps label names to absolute addresses. Locally defined
	// labels take precedence.
	Imports map[string]uint16
	// Exports lists label names whose resolved absolute addresses the
	// caller wants back.
	Exports []string
}

// Result is the output of one assembly run.
type Result struct {
	ROM     []byte
	Exports map[string]uint16
}

// A cell is one emitted program byte. While labels are unresolved, a
// cell may instead hold a label reference: the referencing cell
// resolves to the high address byte and the following low-marker cell
// to the low byte.
type cell struct {
	value byte
	label string
	low   bool
}

type assembler struct {
	program []cell
	labels  map[string]int
}

func addressBytes(address uint16) (byte, byte) {
	return byte(address >> 8), byte(address)
}

// Assemble translates parsed lines into program bytes, resolving
// labels and imports and honouring the configured start address.
func Assemble(lines []Line, opts Options) (*Result, error) {
	a := &assembler{labels: make(map[string]int)}

	for _, line := range lines {
		if line.IsLabel() {
			if _, exists := a.labels[line.Label]; exists {
				logger.Log(fmt.Sprintf("Warning: label %s defined more than once", line.Label))
				continue
			}
			a.labels[line.Label] = len(a.program)
			continue
		}
		cells, err := encode(line)
		if err != nil {
			return nil, err
		}
		a.program = append(a.program, cells...)
	}

	if len(a.program) > MemorySize {
		return nil, fmt.Errorf("program is %d bytes, exceeding the %d byte address space", len(a.program), MemorySize)
	}

	base := opts.StartAddress
	if base < 0 {
		base = MemorySize - len(a.program)
	}
	if base+len(a.program) > MemorySize {
		return nil, fmt.Errorf("program of %d bytes does not fit at %#04x", len(a.program), base)
	}

	resolved := make(map[string]uint16, len(a.labels)+len(opts.Imports))
	for name, address := range opts.Imports {
		resolved[name] = address
	}
	for name, offset := range a.labels {
		resolved[name] = uint16(base + offset)
	}

	rom := make([]byte, len(a.program))
	for i := 0; i < len(a.program); i++ {
		c := a.program[i]
		if c.label == "" {
			rom[i] = c.value
			continue
		}
		address, ok := resolved[c.label]
		if !ok {
			return nil, fmt.Errorf("unresolved reference to %s", c.label)
		}
		hi, lo := addressBytes(address)
		rom[i] = hi
		rom[i+1] = lo
		i++
	}

	exports := make(map[string]uint16)
	for _, name := range opts.Exports {
		if address, ok := resolved[name]; ok {
			exports[name] = address
		}
	}

	return &Result{ROM: rom, Exports: exports}, nil
}

func opcodeCell(name string, line Line) (cell, error) {
	op, ok := isa.Opcode(name)
	if !ok {
		return cell{}, fmt.Errorf("line %d: no instruction %s for %q", line.Number, name, line.Mnemonic)
	}
	return cell{value: byte(op)}, nil
}

func addressCells(op cell, address uint16) []cell {
	hi, lo := addressBytes(address)
	return []cell{op, {value: hi}, {value: lo}}
}

func labelCells(op cell, name string) []cell {
	return []cell{op, {label: name}, {low: true}}
}

func operandError(line Line) error {
	return fmt.Errorf("line %d: bad operands for %q", line.Number, line.Mnemonic)
}

func encode(line Line) ([]cell, error) {
	switch line.Mnemonic {
	case "ldr":
		return encodeLoad(line)
	case "str":
		return encodeStore(line)
	case "psh":
		return encodePush(line)
	case "pop":
		if len(line.Operands) != 1 || line.Operands[0].Kind != OperandReg {
			return nil, operandError(line)
		}
		op, err := opcodeCell("POP"+strings.ToUpper(line.Operands[0].Reg), line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	case "add", "sub", "and", "or", "xor":
		return encodeBinaryALU(line)
	case "inc", "dec", "shl", "shr":
		return encodeUnaryALU(line)
	case "not":
		// The ALU select field has no spare code for NOT; xor with
		// all-ones has the identical register and flag effect.
		op, err := opcodeCell("XORI", line)
		if err != nil {
			return nil, err
		}
		return []cell{op, {value: 0xFF}}, nil
	case "jmp":
		return encodeJump(line)
	case "cal":
		return encodeCall(line)
	case "out", "hlt", "nop", "ien", "intret":
		if len(line.Operands) != 0 {
			return nil, operandError(line)
		}
		op, err := opcodeCell(strings.ToUpper(line.Mnemonic), line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	}
	return nil, fmt.Errorf("line %d: unknown instruction %q", line.Number, line.Mnemonic)
}

func encodeLoad(line Line) ([]cell, error) {
	if len(line.Operands) != 2 || line.Operands[0].Kind != OperandReg {
		return nil, operandError(line)
	}
	dst := strings.ToUpper(line.Operands[0].Reg)
	src := line.Operands[1]
	switch src.Kind {
	case OperandReg:
		op, err := opcodeCell("LDR"+dst+strings.ToUpper(src.Reg), line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	case OperandImm:
		op, err := opcodeCell("LDR"+dst+"I", line)
		if err != nil {
			return nil, err
		}
		return []cell{op, {value: byte(src.Value)}}, nil
	case OperandAddr:
		op, err := opcodeCell("LDR"+dst+"@", line)
		if err != nil {
			return nil, err
		}
		return addressCells(op, uint16(src.Value)), nil
	case OperandM:
		op, err := opcodeCell("LDR"+dst+"M", line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	}
	return nil, operandError(line)
}

func encodeStore(line Line) ([]cell, error) {
	if len(line.Operands) != 2 || line.Operands[1].Kind != OperandReg {
		return nil, operandError(line)
	}
	src := strings.ToUpper(line.Operands[1].Reg)
	switch line.Operands[0].Kind {
	case OperandM:
		op, err := opcodeCell("STRM"+src, line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	case OperandAddr:
		op, err := opcodeCell("STR@"+src, line)
		if err != nil {
			return nil, err
		}
		return addressCells(op, uint16(line.Operands[0].Value)), nil
	}
	return nil, operandError(line)
}

func encodePush(line Line) ([]cell, error) {
	if len(line.Operands) != 1 {
		return nil, operandError(line)
	}
	src := line.Operands[0]
	switch src.Kind {
	case OperandReg:
		op, err := opcodeCell("PSH"+strings.ToUpper(src.Reg), line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	case OperandImm:
		op, err := opcodeCell("PSHI", line)
		if err != nil {
			return nil, err
		}
		return []cell{op, {value: byte(src.Value)}}, nil
	case OperandAddr:
		op, err := opcodeCell("PSH@", line)
		if err != nil {
			return nil, err
		}
		return addressCells(op, uint16(src.Value)), nil
	}
	return nil, operandError(line)
}

func encodeBinaryALU(line Line) ([]cell, error) {
	name := strings.ToUpper(line.Mnemonic)
	operands := line.Operands
	if len(operands) > 0 && operands[0].Kind == OperandCarry {
		name += "C"
		operands = operands[1:]
	}
	if len(operands) != 1 {
		return nil, operandError(line)
	}
	src := operands[0]
	switch src.Kind {
	case OperandReg:
		op, err := opcodeCell(name+strings.ToUpper(src.Reg), line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	case OperandImm:
		op, err := opcodeCell(name+"I", line)
		if err != nil {
			return nil, err
		}
		return []cell{op, {value: byte(src.Value)}}, nil
	case OperandAddr:
		op, err := opcodeCell(name+"@", line)
		if err != nil {
			return nil, err
		}
		return addressCells(op, uint16(src.Value)), nil
	}
	return nil, operandError(line)
}

func encodeUnaryALU(line Line) ([]cell, error) {
	name := strings.ToUpper(line.Mnemonic)
	operands := line.Operands
	if len(operands) > 0 && operands[0].Kind == OperandCarry {
		name += "C"
		operands = operands[1:]
	}
	if len(operands) != 0 {
		return nil, operandError(line)
	}
	op, err := opcodeCell(name, line)
	if err != nil {
		return nil, err
	}
	return []cell{op}, nil
}

func encodeJump(line Line) ([]cell, error) {
	operands := line.Operands
	condition := ""
	if len(operands) > 0 && operands[0].Kind == OperandCond {
		condition = strings.ToUpper(operands[0].Cond)
		operands = operands[1:]
	}
	if len(operands) != 1 {
		return nil, operandError(line)
	}
	target := operands[0]
	switch target.Kind {
	case OperandM:
		if condition != "" {
			return nil, fmt.Errorf("line %d: conditional jump through m is not supported", line.Number)
		}
		op, err := opcodeCell("JM", line)
		if err != nil {
			return nil, err
		}
		return []cell{op}, nil
	case OperandName:
		op, err := opcodeCell("J"+condition+"I", line)
		if err != nil {
			return nil, err
		}
		return labelCells(op, target.Name), nil
	}
	return nil, operandError(line)
}

func encodeCall(line Line) ([]cell, error) {
	if len(line.Operands) != 1 {
		return nil, operandError(line)
	}
	op, err := opcodeCell("CAL", line)
	if err != nil {
		return nil, err
	}
	target := line.Operands[0]
	switch target.Kind {
	case OperandName:
		return labelCells(op, target.Name), nil
	case OperandAddr:
		return addressCells(op, uint16(target.Value)), nil
	}
	return nil, operandError(line)
}
