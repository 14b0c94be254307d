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

// Control bits. Each microinstruction is the disjunction of the control
// bits that are asserted during that microtick. The bit positions are
// shared with the CPU and must not be reordered.
const (
	// Register input select
	I0 uint32 = 1 << iota
	I1
	I2
	I3
	// Register output select
	O0
	O1
	O2
	O3
	// ALU operation select
	A0
	A1
	A2
	A3
	// Counter signals
	CNI // program counter increment
	ADI // program counter address enable
	STI // stack pointer increment
	STD // stack pointer decrement
	// Direct moves
	MAC // memory address := program counter
	MAS // memory address := stack pointer
	MAH // memory address := HL
	MCI // program counter := interrupt handler address
	// Flags
	F1
	F0
	FI
	// Memory
	RI // memory in (write)
	RO // memory out (read)
	// Control and output
	RST // reset microstep counter
	IEN // interrupt enable
	OUT // output port latch
	HLT // halt clock
)

// Register in codes
const (
	AI   = I0
	ATI  = I1
	BI   = I1 | I0
	CI   = I2
	HI   = I2 | I0
	LI   = I2 | I1
	CNHI = I2 | I1 | I0
	CNLI = I3
	AHI  = I3 | I0
	ALI  = I3 | I1
	BPHI = I3 | I1 | I0
	BPLI = I3 | I2
	SPHI = I3 | I2 | I0
	SPLI = I3 | I2 | I1
	II   = I3 | I2 | I1 | I0
)

// Register out codes
const (
	AO   = O0
	ATO  = O1
	BO   = O1 | O0
	CO   = O2
	HO   = O2 | O0
	LO   = O2 | O1
	CNHO = O2 | O1 | O0
	CNLO = O3
	AHO  = O3 | O0
	ALO  = O3 | O1
	BPHO = O3 | O1 | O0
	BPLO = O3 | O2
	SPHO = O3 | O2 | O0
	SPLO = O3 | O2 | O1
	IO   = O3 | O2 | O1 | O0
)

// ALU codes
const (
	ADD  = A0
	SUB  = A1
	AND  = A1 | A0
	OR   = A2
	XOR  = A2 | A0
	INC  = A2 | A1
	DEC  = A2 | A1 | A0
	SHR  = A3
	SHL  = A3 | A0
	ADDC = A3 | A1
	SUBC = A3 | A1 | A0
	INCC = A3 | A2
	DECC = A3 | A2 | A0
	SHRC = A3 | A2 | A1
	SHLC = A3 | A2 | A1 | A0
)

// Status codes
const (
	SI = FI
	SO = F1 | F0
)

// controlBitNames maps each control bit to its mnemonic, in bit order.
// Used to render a control word back into readable form.
var controlBitNames = []struct {
	mask uint32
	name string
}{
	{I0, "I0"}, {I1, "I1"}, {I2, "I2"}, {I3, "I3"},
	{O0, "O0"}, {O1, "O1"}, {O2, "O2"}, {O3, "O3"},
	{A0, "A0"}, {A1, "A1"}, {A2, "A2"}, {A3, "A3"},
	{CNI, "CNI"}, {ADI, "ADI"}, {STI, "STI"}, {STD, "STD"},
	{MAC, "MAC"}, {MAS, "MAS"}, {MAH, "MAH"}, {MCI, "MCI"},
	{F1, "F1"}, {F0, "F0"}, {FI, "FI"},
	{RI, "RI"}, {RO, "RO"},
	{RST, "RST"}, {IEN, "IEN"}, {OUT, "OUT"}, {HLT, "HLT"},
}

// DescribeWord renders a control word as the disjunction of its asserted
// control bits, e.g. "MAC" or "I0|I1|I2|I3|RO" (for RO|II).
func DescribeWord(word uint32) string {
	if word == 0 {
		return "-"
	}
	out := ""
	for _, bit := range controlBitNames {
		if word&bit.mask == bit.mask {
			word &^= bit.mask
			if out != "" {
				out += "|"
			}
			out += bit.name
		}
	}
	return out
}
