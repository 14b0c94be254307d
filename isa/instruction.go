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

// Scope filters the flag states an instruction's microprogram is live
// for. One entry per flag, ordered [zero, sign, carry]:
//   - -1: present only when the flag is low
//   -  0: present irrespective of the flag
//   - +1: present only when the flag is high
type Scope [3]int8

// Admits reports whether the packed flag state Z|S<<1|C<<2 satisfies
// the scope.
func (s Scope) Admits(flags uint8) bool {
	for k := 0; k < 3; k++ {
		bit := flags >> uint(k) & 1
		if s[k] == 1 && bit == 0 {
			return false
		}
		if s[k] == -1 && bit == 1 {
			return false
		}
	}
	return true
}

// Instruction is one entry of the instruction table. Its index in the
// table is its opcode byte.
type Instruction struct {
	Name  string
	Micro []uint32
	Scope Scope
}

const (
	// MaxInstructions is fixed by the 8 opcode bits of the control
	// memory address.
	MaxInstructions = 256

	// MaxMicrosteps is fixed by the 4 microstep bits of the control
	// memory address.
	MaxMicrosteps = 16
)

// Every instruction starts by fetching itself: copy the program counter
// into the memory address register, then read memory into the
// instruction register. INTCAL carries its own custom prefix because it
// is entered by the interrupt logic, not by a fetch.
var fetchPrefix = []uint32{MAC, RO | II}

// InvalidConditionalJump replaces the microprogram of a conditional
// jump in the flag states its scope excludes. It fetches, then steps
// the program counter past the two-byte immediate without taking it.
var InvalidConditionalJump = []uint32{MAC, RO | II, CNI, CNI, RST | CNI}

var (
	jumpImmediate = []uint32{CNI | ADI | RO | ATI, CNI | ADI | RO | CNLI, ATO | CNHI, RST}
	jumpM         = []uint32{LO | CNLI, HO | CNHI, RST}
)

var regInCodes = map[string]uint32{
	"A": AI, "B": BI, "C": CI, "H": HI, "L": LI,
	"BPH": BPHI, "BPL": BPLI, "SPH": SPHI, "SPL": SPLI,
	"S": SI,
}

var regOutCodes = map[string]uint32{
	"A": AO, "B": BO, "C": CO, "H": HO, "L": LO,
	"BPH": BPHO, "BPL": BPLO, "SPH": SPHO, "SPL": SPLO,
	"S": SO,
}

var aluCodes = map[string]uint32{
	"ADD": ADD, "ADDC": ADDC, "SUB": SUB, "SUBC": SUBC,
	"AND": AND, "OR": OR, "XOR": XOR,
	"INC": INC, "INCC": INCC, "DEC": DEC, "DECC": DECC,
	"SHL": SHL, "SHR": SHR, "SHLC": SHLC, "SHRC": SHRC,
}

func ins(name string, micro []uint32, scope ...Scope) Instruction {
	s := Scope{}
	if len(scope) > 0 {
		s = scope[0]
	}
	if name != "INTCAL" {
		micro = append(append([]uint32{}, fetchPrefix...), micro...)
	}
	if len(micro) > MaxMicrosteps {
		panic("microprogram longer than 16 steps: " + name)
	}
	return Instruction{Name: name, Micro: micro, Scope: s}
}

func newInstructionSet() []Instruction {
	set := []Instruction{
		ins("NOP", []uint32{}),

		// Interrupt entry. Defined this early so the address is known
		// by the CPU and unlikely to change. Not exposed in assembly.
		ins("INTCAL", []uint32{STD | MAS, CNHO | RI, STD | MAS, CNLO | RI, MCI, MAC, RO | II | RST}),
		ins("INTRET", []uint32{IEN | MAS, STI | CNLI | RO, MAS, STI | CNHI | RO, RST}),
	}

	// ALU, register source
	for _, src := range []string{"B", "C", "H", "L"} {
		for _, op := range []string{"ADD", "ADDC", "SUB", "SUBC", "AND", "OR", "XOR"} {
			set = append(set, ins(op+src,
				[]uint32{regOutCodes[src] | ATI, aluCodes[op] | AI, RST | CNI}))
		}
	}

	// ALU, immediate source
	for _, op := range []string{"ADD", "ADDC", "SUB", "SUBC", "AND", "OR", "XOR"} {
		set = append(set, ins(op+"I",
			[]uint32{CNI | ADI | RO | ATI, aluCodes[op] | AI, RST | CNI}))
	}

	// ALU, address source
	for _, op := range []string{"ADD", "SUB", "AND", "OR", "XOR"} {
		set = append(set, ins(op+"@",
			[]uint32{CNI | ADI | RO | ATI, CNI | ADI | RO | ALI, ATO | AHI, RO | ATI, aluCodes[op] | AI}))
	}

	// ALU, unary
	for _, op := range []string{"INC", "INCC", "DEC", "DECC", "SHL", "SHR", "SHLC", "SHRC"} {
		set = append(set, ins(op, []uint32{aluCodes[op] | AI, RST | CNI}))
	}

	// Immediate moves
	for _, dst := range []string{"A", "B", "C", "H", "L"} {
		set = append(set, ins("LDR"+dst+"I",
			[]uint32{CNI | ADI | RO | regInCodes[dst], RST | CNI}))
	}

	// Memory moves
	for _, dst := range []string{"A", "B", "C", "H", "L"} {
		set = append(set, ins("LDR"+dst+"@",
			[]uint32{CNI | ADI | RO | ATI, CNI | ADI | RO | ALI, ATO | AHI, RO | regInCodes[dst], RST | CNI}))
	}

	// M moves
	for _, dst := range []string{"A", "B", "C", "H", "L"} {
		set = append(set, ins("LDR"+dst+"M",
			[]uint32{HO | AHI, LO | ALI, RO | regInCodes[dst], RST | CNI}))
	}

	// Register-register moves
	moves := []struct {
		dst     string
		sources []string
	}{
		{"A", []string{"B", "C", "H", "L", "BPL", "BPH", "SPL", "SPH"}},
		{"B", []string{"A", "C", "H", "L"}},
		{"C", []string{"A", "B", "H", "L"}},
		{"L", []string{"A", "B", "C", "H"}},
		{"H", []string{"A", "B", "C", "L"}},
		{"BPL", []string{"A", "SPL"}},
		{"BPH", []string{"A", "SPH"}},
		{"SPL", []string{"A", "BPL"}},
		{"SPH", []string{"A", "BPH"}},
	}
	for _, m := range moves {
		for _, src := range m.sources {
			set = append(set, ins("LDR"+m.dst+src,
				[]uint32{regOutCodes[src] | regInCodes[m.dst], RST | CNI}))
		}
	}

	// Store in address
	for _, src := range []string{"A", "B", "C", "H", "L"} {
		set = append(set, ins("STR@"+src,
			[]uint32{CNI | ADI | RO | ATI, CNI | ADI | RO | ALI, ATO | AHI, regOutCodes[src] | RI, RST | CNI}))
	}

	// Store in M
	for _, src := range []string{"A", "B", "C", "H", "L"} {
		set = append(set, ins("STRM"+src,
			[]uint32{HO | AHI, LO | ALI, regOutCodes[src] | RI, RST | CNI}))
	}

	// Jumps
	set = append(set,
		ins("JZFI", jumpImmediate, Scope{1, 0, 0}),
		ins("JNZFI", jumpImmediate, Scope{-1, 0, 0}),
		ins("JSFI", jumpImmediate, Scope{0, 1, 0}),
		ins("JNSFI", jumpImmediate, Scope{0, -1, 0}),
		ins("JCFI", jumpImmediate, Scope{0, 0, 1}),
		ins("JNCFI", jumpImmediate, Scope{0, 0, -1}),
		ins("JI", jumpImmediate),
		ins("JM", jumpM),
	)

	// Stack
	set = append(set, ins("PSHI",
		[]uint32{CNI | ADI | RO | ATI, STD | MAS, ATO | RI, RST | CNI}))
	for _, src := range []string{"A", "B", "C", "H", "L", "BPH", "BPL", "S"} {
		set = append(set, ins("PSH"+src,
			[]uint32{STD | MAS, regOutCodes[src] | RI, RST | CNI}))
	}
	set = append(set, ins("PSH@",
		[]uint32{CNI | ADI | RO | ATI, CNI | ADI | RO | ALI, ATO | ALI, STD | RO | ATI | MAS, ATO | RI, RST | CNI}))
	for _, dst := range []string{"A", "B", "C", "H", "L", "BPH", "BPL", "S"} {
		set = append(set, ins("POP"+dst,
			[]uint32{MAS, STI | regInCodes[dst] | RO, RST | CNI}))
	}

	// Call
	set = append(set, ins("CAL",
		[]uint32{CNI | ADI | RO | ATI, CNI | ADI | RO | AI, CNI | STD | MAS, CNHO | RI, STD | MAS, CNLO | RI, ATO | CNHI, AO | CNLI, RST}))

	// Misc
	set = append(set,
		ins("IEN", []uint32{IEN, RST | CNI}),
		ins("OUT", []uint32{AO | OUT, RST | CNI}),
		ins("HLT", []uint32{HLT}),
	)

	if len(set) > MaxInstructions {
		panic("more than 256 instructions")
	}
	return set
}

// Instructions is the authoritative instruction table. The index of an
// entry is its opcode byte.
var Instructions = newInstructionSet()

var opcodeByName = func() map[string]int {
	m := make(map[string]int, len(Instructions))
	for i, instruction := range Instructions {
		m[instruction.Name] = i
	}
	return m
}()

// Opcode returns the opcode byte for a mnemonic in the table.
func Opcode(name string) (int, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}
