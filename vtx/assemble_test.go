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

	"github.com/CameronLCrawford/vertex/isa"
)

func mustOpcode(t *testing.T, name string) byte {
	t.Helper()
	op, ok := isa.Opcode(name)
	if !ok {
		t.Fatalf("no opcode for %s", name)
	}
	return byte(op)
}

func assemble(t *testing.T, source string, opts Options) *Result {
	t.Helper()
	lines, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	result, err := Assemble(lines, opts)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return result
}

func TestAssembleBytes(t *testing.T) {
	result := assemble(t, "ldr a 5\nout\nadd cc b\nnot\nhlt\n", Options{StartAddress: -1})
	want := []byte{
		mustOpcode(t, "LDRAI"), 5,
		mustOpcode(t, "OUT"),
		mustOpcode(t, "ADDCB"),
		mustOpcode(t, "XORI"), 0xFF,
		mustOpcode(t, "HLT"),
	}
	if len(result.ROM) != len(want) {
		t.Fatalf("ROM is %d bytes, want %d", len(result.ROM), len(want))
	}
	for i := range want {
		if result.ROM[i] != want[i] {
			t.Errorf("ROM[%d] = %#02x, want %#02x", i, result.ROM[i], want[i])
		}
	}
}

func TestAssembleLabelDefaultBase(t *testing.T) {
	// nop, then jmp back to the start. Program is 4 bytes and is
	// placed at the end of memory, so the label resolves to
	// 0x10000 - 4 = 0xFFFC.
	result := assemble(t, "top:\nnop\njmp top\n", Options{StartAddress: -1})
	want := []byte{mustOpcode(t, "NOP"), mustOpcode(t, "JI"), 0xFF, 0xFC}
	for i := range want {
		if result.ROM[i] != want[i] {
			t.Errorf("ROM[%d] = %#02x, want %#02x", i, result.ROM[i], want[i])
		}
	}
}

func TestAssembleExplicitBase(t *testing.T) {
	result := assemble(t, "nop\nhere:\njmp zf here\ncal here\n", Options{StartAddress: 0x8000})
	want := []byte{
		mustOpcode(t, "NOP"),
		mustOpcode(t, "JZFI"), 0x80, 0x01,
		mustOpcode(t, "CAL"), 0x80, 0x01,
	}
	for i := range want {
		if result.ROM[i] != want[i] {
			t.Errorf("ROM[%d] = %#02x, want %#02x", i, result.ROM[i], want[i])
		}
	}
}

func TestAssembleUnresolvedLabel(t *testing.T) {
	lines, err := Parse("jmp nowhere\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	_, err = Assemble(lines, Options{StartAddress: -1})
	if err == nil || !strings.Contains(err.Error(), "unresolved reference to nowhere") {
		t.Errorf("Assemble() error = %v, want unresolved reference", err)
	}
}

type captureLogger struct {
	messages []string
}

func (l *captureLogger) Log(msg string) {
	l.messages = append(l.messages, msg)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	capture := &captureLogger{}
	SetLogger(capture)
	defer SetLogger(nil)

	// The first definition wins: "dup" names offset 0, not 1.
	result := assemble(t, "dup:\nnop\ndup:\njmp dup\n", Options{StartAddress: 0x4000})
	if len(capture.messages) != 1 || !strings.Contains(capture.messages[0], "dup") {
		t.Errorf("duplicate label warning = %v", capture.messages)
	}
	if result.ROM[2] != 0x40 || result.ROM[3] != 0x00 {
		t.Errorf("dup resolved to %#02x%02x, want 0x4000", result.ROM[2], result.ROM[3])
	}
}

func TestAssembleImportsAndExports(t *testing.T) {
	opts := Options{
		StartAddress: 0x6000,
		Imports:      map[string]uint16{"REMOTE": 0x1234},
		Exports:      []string{"LOCAL", "MISSING"},
	}
	result := assemble(t, "LOCAL:\ncal REMOTE\nhlt\n", opts)
	want := []byte{mustOpcode(t, "CAL"), 0x12, 0x34, mustOpcode(t, "HLT")}
	for i := range want {
		if result.ROM[i] != want[i] {
			t.Errorf("ROM[%d] = %#02x, want %#02x", i, result.ROM[i], want[i])
		}
	}
	if got := result.Exports["LOCAL"]; got != 0x6000 {
		t.Errorf("export LOCAL = %#04x, want 0x6000", got)
	}
	if _, ok := result.Exports["MISSING"]; ok {
		t.Error("export MISSING should be absent")
	}
}

func TestAssembleLocalLabelBeatsImport(t *testing.T) {
	opts := Options{
		StartAddress: 0x2000,
		Imports:      map[string]uint16{"HERE": 0x9999},
	}
	result := assemble(t, "HERE:\njmp HERE\n", opts)
	if result.ROM[1] != 0x20 || result.ROM[2] != 0x00 {
		t.Errorf("HERE resolved to %#02x%02x, want 0x2000", result.ROM[1], result.ROM[2])
	}
}

func TestAssembleUnknownInstruction(t *testing.T) {
	lines, err := Parse("frobnicate\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, err = Assemble(lines, Options{StartAddress: -1}); err == nil {
		t.Error("Assemble() accepted an unknown instruction")
	}

	// ldr bph b is not a move the register file supports.
	lines, err = Parse("ldr bph b\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, err = Assemble(lines, Options{StartAddress: -1}); err == nil {
		t.Error("Assemble() accepted ldr bph b")
	}
}

func TestAssembleLengthInvariant(t *testing.T) {
	// opcode bytes plus operand bytes: 2 + 1 + 3 + 3 + 1 = 10.
	result := assemble(t, "start:\nldr b 1\npop a\nldr c @0x100\npsh @0x200\njmp m\n", Options{StartAddress: 0})
	if len(result.ROM) != 10 {
		t.Errorf("ROM is %d bytes, want 10", len(result.ROM))
	}
}
