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
	"encoding/binary"
	"io"
)

// ControlWords is the number of 32-bit entries in the control memory.
// The control ROM is addressed using the following composition of bits:
//
//	CF|SF|ZF|I7|I6|I5|I4|I3|I2|I1|I0|M3|M2|M1|M0
//	14 13 12 11 10 09 08 07 06 05 04 03 02 01 00
//
// The first 3 are flag bits (carry, sign, zero). The next 8 are the
// current instruction index. The final 4 are the microinstruction index.
const ControlWords = 1 << 16

// ControlROM rasterises the instruction table into the control memory.
// Most instructions aren't influenced by the current flag states and
// are duplicated 2^3 times across the ROM. Instructions that depend on
// specific flag states are only present where those conditions are met;
// everywhere else their slot holds the invalid-conditional-jump filler.
func ControlROM() []uint32 {
	rom := make([]uint32, ControlWords)
	for flagState := 0; flagState < 8; flagState++ {
		for i, instruction := range Instructions {
			micro := instruction.Micro
			if !instruction.Scope.Admits(uint8(flagState)) {
				micro = InvalidConditionalJump
			}
			for j, word := range micro {
				address := flagState<<12 | i<<4 | j
				rom[address] = word
			}
		}
	}
	return rom
}

// WriteControlROM writes the control memory as 65536 little-endian
// 32-bit words, 256 KiB in total.
func WriteControlROM(w io.Writer) error {
	rom := ControlROM()
	buf := make([]byte, 4*len(rom))
	for i, word := range rom {
		binary.LittleEndian.PutUint32(buf[i*4:], word)
	}
	_, err := w.Write(buf)
	return err
}
