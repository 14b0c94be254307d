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

// Package vertex sequences the toolchain for the Vertex computer:
// Storn source compiles to Vtx assembly, which assembles to a flat ROM
// image placed at a configurable base address.
package vertex

import (
	"strings"

	"github.com/CameronLCrawford/vertex/link"
	"github.com/CameronLCrawford/vertex/storn"
	"github.com/CameronLCrawford/vertex/vtx"
)

// Compile translates Storn source to a ROM image. It returns the
// program bytes, the intermediate assembly text and the export map
// holding the absolute address of every routine the module declares.
// A negative startAddress places the program at the end of memory.
// imports may be nil.
func Compile(source string, startAddress int, imports *link.Map) ([]byte, string, *link.Map, error) {
	program, err := storn.Parse(source)
	if err != nil {
		return nil, "", nil, err
	}
	module, err := storn.Generate(program)
	if err != nil {
		return nil, "", nil, err
	}

	lines, err := vtx.Parse(module.Assembly)
	if err != nil {
		return nil, "", nil, err
	}

	options := vtx.Options{StartAddress: startAddress}
	if imports != nil {
		options.Imports = make(map[string]uint16)
		for name, address := range imports.RoutineAddresses() {
			options.Imports[strings.ToUpper(name)] = address
		}
	}
	for _, name := range module.Routines {
		options.Exports = append(options.Exports, strings.ToUpper(name))
	}

	result, err := vtx.Assemble(lines, options)
	if err != nil {
		return nil, "", nil, err
	}

	exports := link.NewMap()
	for _, name := range module.Routines {
		if address, ok := result.Exports[strings.ToUpper(name)]; ok {
			exports.Routines[name] = link.Symbol{Address: address}
		}
	}
	return result.ROM, module.Assembly, exports, nil
}

// Assemble translates Vtx assembly source to a ROM image. A negative
// startAddress places the program at the end of memory.
func Assemble(source string, startAddress int) ([]byte, error) {
	lines, err := vtx.Parse(source)
	if err != nil {
		return nil, err
	}
	result, err := vtx.Assemble(lines, vtx.Options{StartAddress: startAddress})
	if err != nil {
		return nil, err
	}
	return result.ROM, nil
}
