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
	"strconv"
	"strings"
	"unicode"
)

var registers = map[string]bool{
	"a": true, "b": true, "c": true, "h": true, "l": true,
	"bph": true, "bpl": true, "sph": true, "spl": true, "s": true,
}

var conditions = map[string]bool{
	"zf": true, "nzf": true, "sf": true, "nsf": true, "cf": true, "ncf": true,
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func classifyOperand(token string, lineNumber int) (Operand, error) {
	lower := strings.ToLower(token)
	switch {
	case lower == "m":
		return Operand{Kind: OperandM}, nil
	case lower == "cc":
		return Operand{Kind: OperandCarry}, nil
	case registers[lower]:
		return Operand{Kind: OperandReg, Reg: lower}, nil
	case conditions[lower]:
		return Operand{Kind: OperandCond, Cond: lower}, nil
	case strings.HasPrefix(token, "@"):
		value, err := strconv.ParseUint(token[1:], 0, 16)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: malformed address literal %q", lineNumber, token)
		}
		return Operand{Kind: OperandAddr, Value: int(value)}, nil
	case token[0] >= '0' && token[0] <= '9':
		value, err := strconv.ParseUint(token, 0, 8)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: malformed constant %q", lineNumber, token)
		}
		return Operand{Kind: OperandImm, Value: int(value)}, nil
	case validName(token):
		return Operand{Kind: OperandName, Name: token}, nil
	}
	return Operand{}, fmt.Errorf("line %d: unrecognised operand %q", lineNumber, token)
}

// Parse splits assembly source into labels and instructions. A label is
// a name followed by a colon on its own line; everything after a
// semicolon is a comment.
func Parse(source string) ([]Line, error) {
	var lines []Line
	for i, raw := range strings.Split(source, "\n") {
		number := i + 1
		text := raw
		if comment := strings.IndexByte(text, ';'); comment >= 0 {
			text = text[:comment]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasSuffix(text, ":") {
			name := strings.TrimSuffix(text, ":")
			if !validName(name) {
				return nil, fmt.Errorf("line %d: invalid label %q", number, text)
			}
			lines = append(lines, Line{Label: name, Number: number})
			continue
		}

		fields := strings.Fields(text)
		line := Line{Mnemonic: strings.ToLower(fields[0]), Number: number}
		for _, token := range fields[1:] {
			operand, err := classifyOperand(token, number)
			if err != nil {
				return nil, err
			}
			line.Operands = append(line.Operands, operand)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
