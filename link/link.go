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

// Package link reads and writes the YAML import/export maps used to
// link routine addresses across separately compiled modules.
package link

import (
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// Symbol is one linked name. For routines, Address is the absolute
// address of the routine's first instruction.
type Symbol struct {
	Address uint16 `yaml:"address"`
}

// Map is the module interchange format: three name-to-symbol sections.
type Map struct {
	Globals  map[string]Symbol `yaml:"globals"`
	Data     map[string]Symbol `yaml:"data"`
	Routines map[string]Symbol `yaml:"routines"`
}

// NewMap returns an empty map with all three sections allocated.
func NewMap() *Map {
	return &Map{
		Globals:  make(map[string]Symbol),
		Data:     make(map[string]Symbol),
		Routines: make(map[string]Symbol),
	}
}

// Read decodes a map from YAML. Missing sections come back empty, not
// nil.
func Read(r io.Reader) (*Map, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m := &Map{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, err
	}
	if m.Globals == nil {
		m.Globals = make(map[string]Symbol)
	}
	if m.Data == nil {
		m.Data = make(map[string]Symbol)
	}
	if m.Routines == nil {
		m.Routines = make(map[string]Symbol)
	}
	return m, nil
}

// Write encodes the map as YAML.
func (m *Map) Write(w io.Writer) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// LoadFile reads a map from a YAML file.
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// SaveFile writes the map to a YAML file.
func (m *Map) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Write(f)
}

// RoutineAddresses flattens the routine section to a name-to-address
// lookup.
func (m *Map) RoutineAddresses() map[string]uint16 {
	addresses := make(map[string]uint16, len(m.Routines))
	for name, symbol := range m.Routines {
		addresses[name] = symbol.Address
	}
	return addresses
}
