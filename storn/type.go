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

package storn

import (
	"fmt"
	"strings"
)

// Type is the closed sum over the five Storn type variants: Base,
// Unresolved, Data, Reference and Array. A type carries its byte size
// and, when it sits inside a record or a call frame, its offset from
// the enclosing scope's base.
type Type interface {
	Size() int
	Offset() int
	setOffset(int)
	String() string
}

// Base is a scalar of width 0, 8 or 16 bits. Width 0 means no value.
type Base struct {
	Width int
	off   int
}

func (t *Base) Size() int       { return t.Width / 8 }
func (t *Base) Offset() int     { return t.off }
func (t *Base) setOffset(o int) { t.off = o }
func (t *Base) String() string  { return fmt.Sprintf("[%d]", t.Width) }

// Unresolved is a placeholder for a named data type; size and field
// layout come from the data table.
type Unresolved struct {
	Name string
	size int
	off  int
}

func (t *Unresolved) Size() int       { return t.size }
func (t *Unresolved) Offset() int     { return t.off }
func (t *Unresolved) setOffset(o int) { t.off = o }
func (t *Unresolved) String() string  { return t.Name }

// Data is a record. Field order is declaration order and fixes the
// field offsets.
type Data struct {
	Name       string
	FieldNames []string
	Fields     map[string]Type
	size       int
	off        int
}

func (t *Data) Size() int       { return t.size }
func (t *Data) Offset() int     { return t.off }
func (t *Data) setOffset(o int) { t.off = o }

func (t *Data) String() string {
	fields := make([]string, len(t.FieldNames))
	for i, name := range t.FieldNames {
		fields[i] = fmt.Sprintf("%s: %s", name, t.Fields[name])
	}
	return fmt.Sprintf("data %s { %s }", t.Name, strings.Join(fields, ", "))
}

// Reference is a two-byte little-endian address of an inner type.
type Reference struct {
	Inner Type
	off   int
}

func (t *Reference) Size() int       { return 2 }
func (t *Reference) Offset() int     { return t.off }
func (t *Reference) setOffset(o int) { t.off = o }
func (t *Reference) String() string  { return fmt.Sprintf("<%s>", t.Inner) }

// Array is Length contiguous elements.
type Array struct {
	Elem   Type
	Length int
	size   int
	off    int
}

func (t *Array) Size() int       { return t.size }
func (t *Array) Offset() int     { return t.off }
func (t *Array) setOffset(o int) { t.off = o }
func (t *Array) String() string  { return fmt.Sprintf("%s ^ %d", t.Elem, t.Length) }

// newData rejects a field whose type is directly the record itself;
// indirect cycles must go through a Reference.
func newData(pos Pos, name string, fieldNames []string, fields map[string]Type) (*Data, error) {
	for _, fieldName := range fieldNames {
		if u, ok := fields[fieldName].(*Unresolved); ok && u.Name == name {
			return nil, compileErrorf(pos, "data %s cannot declare field %s of its own type", name, fieldName)
		}
	}
	return &Data{Name: name, FieldNames: fieldNames, Fields: fields}, nil
}

// computeSize fills in the byte size of t, consulting the data table
// for named types. Reference is the base case that keeps recursive
// records finite.
func computeSize(t Type, table map[string]*Data, pos Pos) error {
	switch v := t.(type) {
	case *Base, *Reference:
		return nil
	case *Unresolved:
		data, ok := table[v.Name]
		if !ok {
			return compileErrorf(pos, "unknown data type %s", v.Name)
		}
		v.size = data.size
		return nil
	case *Data:
		v.size = 0
		for _, name := range v.FieldNames {
			field := v.Fields[name]
			if err := computeSize(field, table, pos); err != nil {
				return err
			}
			v.size += field.Size()
		}
		return nil
	case *Array:
		if err := computeSize(v.Elem, table, pos); err != nil {
			return err
		}
		v.size = v.Length * v.Elem.Size()
		return nil
	}
	return compileErrorf(pos, "cannot size type %s", t)
}

// computeOffset assigns t's offset from its enclosing scope, and for a
// record lays the fields out contiguously from zero in declaration
// order.
func computeOffset(t Type, offset int) {
	t.setOffset(offset)
	if data, ok := t.(*Data); ok {
		size := 0
		for _, name := range data.FieldNames {
			computeOffset(data.Fields[name], size)
			size += data.Fields[name].Size()
		}
	}
}

// resolve swaps an Unresolved placeholder for the registered record.
// Types with no table entry come back unchanged.
func resolve(t Type, table map[string]*Data) Type {
	if u, ok := t.(*Unresolved); ok {
		if data, ok := table[u.Name]; ok {
			return data
		}
	}
	return t
}

// typesEqual is the structural assignment-compatibility test: Base by
// width, Reference by inner equality, Array by element equality and
// equal total size, Data by name and field map.
func typesEqual(a, b Type, table map[string]*Data) bool {
	a = resolve(a, table)
	b = resolve(b, table)
	switch av := a.(type) {
	case *Base:
		bv, ok := b.(*Base)
		return ok && av.Width == bv.Width
	case *Reference:
		bv, ok := b.(*Reference)
		return ok && typesEqual(av.Inner, bv.Inner, table)
	case *Array:
		bv, ok := b.(*Array)
		return ok && typesEqual(av.Elem, bv.Elem, table) && av.size == bv.size
	case *Data:
		bv, ok := b.(*Data)
		if !ok || av.Name != bv.Name || len(av.FieldNames) != len(bv.FieldNames) {
			return false
		}
		for i, name := range av.FieldNames {
			if bv.FieldNames[i] != name || !typesEqual(av.Fields[name], bv.Fields[name], table) {
				return false
			}
		}
		return true
	case *Unresolved:
		bv, ok := b.(*Unresolved)
		return ok && av.Name == bv.Name
	}
	return false
}

// isBase reports whether t is a scalar of the given width.
func isBase(t Type, width int) bool {
	base, ok := t.(*Base)
	return ok && base.Width == width
}
