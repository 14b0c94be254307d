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

package isa

import (
	"testing"
)

func TestInstructionTableBounds(t *testing.T) {
	if len(Instructions) > MaxInstructions {
		t.Fatalf("instruction table has %d entries, max is %d", len(Instructions), MaxInstructions)
	}
	for i, instruction := range Instructions {
		if len(instruction.Micro) > MaxMicrosteps {
			t.Errorf("%s (opcode %d) has %d microsteps, max is %d",
				instruction.Name, i, len(instruction.Micro), MaxMicrosteps)
		}
	}
}

func TestInstructionNamesUnique(t *testing.T) {
	seen := make(map[string]int)
	for i, instruction := range Instructions {
		if prev, ok := seen[instruction.Name]; ok {
			t.Errorf("%s defined at opcodes %d and %d", instruction.Name, prev, i)
		}
		seen[instruction.Name] = i
	}
}

func TestFetchPrefix(t *testing.T) {
	for _, instruction := range Instructions {
		if instruction.Name == "INTCAL" {
			continue
		}
		if len(instruction.Micro) < 2 {
			t.Errorf("%s microprogram shorter than the fetch prefix", instruction.Name)
			continue
		}
		if instruction.Micro[0] != MAC || instruction.Micro[1] != RO|II {
			t.Errorf("%s does not start with the fetch prefix", instruction.Name)
		}
	}
}

func TestOpcodeLookup(t *testing.T) {
	for _, name := range []string{
		"NOP", "INTRET", "ADDB", "ADDCC", "SUBI", "XOR@", "SHRC",
		"LDRAI", "LDRA@", "LDRAM", "LDRAB", "LDRBPHSPH", "LDRSPLA",
		"STR@A", "STRMC", "JZFI", "JM", "PSHI", "PSH@", "PSHS", "POPBPL",
		"CAL", "IEN", "OUT", "HLT",
	} {
		op, ok := Opcode(name)
		if !ok {
			t.Errorf("Opcode(%q) not found", name)
			continue
		}
		if Instructions[op].Name != name {
			t.Errorf("Opcode(%q) = %d which names %s", name, op, Instructions[op].Name)
		}
	}
	if _, ok := Opcode("LDRBPHB"); ok {
		t.Error("Opcode(\"LDRBPHB\") should not exist")
	}
}

func TestJumpScopes(t *testing.T) {
	cases := []struct {
		name  string
		scope Scope
	}{
		{"JZFI", Scope{1, 0, 0}},
		{"JNZFI", Scope{-1, 0, 0}},
		{"JSFI", Scope{0, 1, 0}},
		{"JNSFI", Scope{0, -1, 0}},
		{"JCFI", Scope{0, 0, 1}},
		{"JNCFI", Scope{0, 0, -1}},
		{"JI", Scope{0, 0, 0}},
	}
	for _, c := range cases {
		op, ok := Opcode(c.name)
		if !ok {
			t.Fatalf("Opcode(%q) not found", c.name)
		}
		if Instructions[op].Scope != c.scope {
			t.Errorf("%s scope = %v, want %v", c.name, Instructions[op].Scope, c.scope)
		}
	}
}

func TestScopeAdmits(t *testing.T) {
	unconditional := Scope{}
	for flags := uint8(0); flags < 8; flags++ {
		if !unconditional.Admits(flags) {
			t.Errorf("unconditional scope rejects flag state %d", flags)
		}
	}
	zeroSet := Scope{1, 0, 0}
	for flags := uint8(0); flags < 8; flags++ {
		want := flags&1 == 1
		if zeroSet.Admits(flags) != want {
			t.Errorf("scope %v flag state %d: admits = %v, want %v", zeroSet, flags, !want, want)
		}
	}
	carryClear := Scope{0, 0, -1}
	for flags := uint8(0); flags < 8; flags++ {
		want := flags>>2&1 == 0
		if carryClear.Admits(flags) != want {
			t.Errorf("scope %v flag state %d: admits = %v, want %v", carryClear, flags, !want, want)
		}
	}
}
