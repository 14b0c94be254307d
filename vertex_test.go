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

package vertex

import (
	"strings"
	"testing"

	"github.com/CameronLCrawford/vertex/isa"
	"github.com/CameronLCrawford/vertex/link"
	"github.com/CameronLCrawford/vertex/storn"
)

func mustCompile(t *testing.T, source string, startAddress int) ([]byte, string, *link.Map) {
	t.Helper()
	rom, assembly, exports, err := Compile(source, startAddress, nil)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return rom, assembly, exports
}

func TestCompileEmptyEntry(t *testing.T) {
	rom, assembly, exports := mustCompile(t, "entry() [0] { return. }", -1)

	op, _ := isa.Opcode("JI")
	if rom[0] != byte(op) {
		t.Errorf("rom[0] = %#02x, want the unconditional jump opcode %#02x", rom[0], op)
	}

	// 3 bytes of entry jump, 12 bytes of prologue, 1 byte of hlt. The
	// program sits at the end of memory, so ENTRY lands at
	// 0x10000 - 16 + 3 = 0xFFF3.
	if len(rom) != 16 {
		t.Fatalf("rom is %d bytes, want 16", len(rom))
	}
	if rom[1] != 0xFF || rom[2] != 0xF3 {
		t.Errorf("entry jump target = %#02x%02x, want 0xFFF3", rom[1], rom[2])
	}

	if !strings.Contains(assembly, "hlt") {
		t.Errorf("assembly does not halt:\n%s", assembly)
	}
	if exports.Routines["entry"].Address != 0xFFF3 {
		t.Errorf("exported entry address = %#04x, want 0xFFF3", exports.Routines["entry"].Address)
	}
}

func TestCompileOutputScenario(t *testing.T) {
	rom, assembly, _ := mustCompile(t, "entry() [0] { output 42:8. return. }", 0x8000)
	if len(rom) == 0 {
		t.Fatal("empty rom")
	}
	if !strings.Contains(assembly, "psh 42") {
		t.Errorf("assembly does not push 42:\n%s", assembly)
	}
	if !strings.Contains(assembly, "out") {
		t.Errorf("assembly does not out:\n%s", assembly)
	}
}

func TestCompileCallScenario(t *testing.T) {
	source := `
add(x: [8], y: [8]) [8] {
    return x + y.
}

entry() [0] {
    output add(3:8, 4:8).
    return.
}
`
	rom, assembly, exports := mustCompile(t, source, 0x4000)
	if len(rom) == 0 {
		t.Fatal("empty rom")
	}
	if !strings.Contains(assembly, "cal ADD") {
		t.Errorf("assembly does not call ADD:\n%s", assembly)
	}

	if _, ok := exports.Routines["add"]; !ok {
		t.Error("add is not exported")
	}
	if _, ok := exports.Routines["entry"]; !ok {
		t.Error("entry is not exported")
	}
	// The entry jump occupies the first three bytes, so ADD starts at
	// base + 3.
	if exports.Routines["add"].Address != 0x4003 {
		t.Errorf("exported add address = %#04x, want 0x4003", exports.Routines["add"].Address)
	}
}

func TestCompileDataScenario(t *testing.T) {
	source := `
data pair {
    a: [8],
    b: [8]
}

p: pair.

entry() [0] {
    set p / b = 9:8.
    output p / b.
    return.
}
`
	rom, assembly, _ := mustCompile(t, source, -1)
	if len(rom) == 0 {
		t.Fatal("empty rom")
	}
	if !strings.Contains(assembly, "psh 9") {
		t.Errorf("assembly does not push 9:\n%s", assembly)
	}
}

func TestCompileArrayScenario(t *testing.T) {
	source := `
xs: [8] ^ 3.

entry() [0] {
    set xs @ 2:8 = 77:8.
    output xs @ 2:8.
    return.
}
`
	rom, assembly, _ := mustCompile(t, source, -1)
	if len(rom) == 0 {
		t.Fatal("empty rom")
	}
	if !strings.Contains(assembly, "psh 77") {
		t.Errorf("assembly does not push 77:\n%s", assembly)
	}
}

func TestCompileLoopScenario(t *testing.T) {
	source := `
entry() [0] { i: [8] } {
    set i = 0:8.
    loop {
        if i = 3:8 {
            break.
        }.
        output i.
        set i = i + 1:8.
    }.
    return.
}
`
	rom, assembly, _ := mustCompile(t, source, -1)
	if len(rom) == 0 {
		t.Fatal("empty rom")
	}
	if !strings.Contains(assembly, "hlt") {
		t.Errorf("assembly does not halt:\n%s", assembly)
	}
}

func TestCompileFailsWithoutPartialROM(t *testing.T) {
	rom, _, _, err := Compile("entry() [0] { set ghost = 1:8. return. }", -1, nil)
	if err == nil {
		t.Fatal("Compile() accepted a reference to an unknown variable")
	}
	if rom != nil {
		t.Error("Compile() returned a partial ROM alongside the error")
	}
	if _, ok := err.(*storn.CompileError); !ok {
		t.Errorf("Compile() error is %T, want *storn.CompileError", err)
	}
}

func TestAssembleSource(t *testing.T) {
	rom, err := Assemble("start:\nldr a 1\nout\njmp start\n", 0x7000)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	op, _ := isa.Opcode("LDRAI")
	want := []byte{byte(op)}
	if rom[0] != want[0] {
		t.Errorf("rom[0] = %#02x, want %#02x", rom[0], want[0])
	}
	// jmp start resolves back to the base address.
	if rom[4] != 0x70 || rom[5] != 0x00 {
		t.Errorf("jump target = %#02x%02x, want 0x7000", rom[4], rom[5])
	}
}

func TestModuleLinking(t *testing.T) {
	// A library module exports its routine addresses; a second module
	// then compiles with that export map as its imports.
	library := `
double(x: [8]) [8] {
    return x + x.
}
`
	_, _, exports, err := Compile(library, 0x9000, nil)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if exports.Routines["double"].Address != 0x9000 {
		t.Fatalf("exported double address = %#04x, want 0x9000", exports.Routines["double"].Address)
	}

	rom, _, _, err := Compile("entry() [0] { return. }", 0x8000, exports)
	if err != nil {
		t.Fatalf("Compile() with imports error: %v", err)
	}
	if len(rom) == 0 {
		t.Fatal("empty rom")
	}
}
