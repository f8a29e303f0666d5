// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package protoreg

// EnumDef {{{

// EnumDef is a Def of kind Enum: bidirectional name<->number maps plus a
// default numeric value (§3).
type EnumDef struct {
	defHeader

	names   []string
	byName  map[string]int64
	byValue map[int64]string

	defaultValue int64
	closed       bool
}

var _ Def = (*EnumDef)(nil)

// NewEnum returns a fresh, mutable, unnamed EnumDef.
func NewEnum() *EnumDef {
	return &EnumDef{
		defHeader: defHeader{kind: KindEnum},
		byName:    make(map[string]int64),
		byValue:   make(map[int64]string),
	}
}

// AddValue is unique on both sides (§4.1): it fails if either the name or
// the number already exists.
func (e *EnumDef) AddValue(name string, number int64) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	if _, taken := e.byName[name]; taken {
		return errEnumNameTaken(e.fqName, name)
	}
	if _, taken := e.byValue[number]; taken {
		return errEnumNumberTaken(e.fqName, uint64(number))
	}
	e.names = append(e.names, name)
	e.byName[name] = number
	e.byValue[number] = name
	return nil
}

func (e *EnumDef) SetDefaultValue(v int64) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	e.defaultValue = v
	return nil
}

// SetClosed marks the enum as a "closed" (proto2-style) enum, whose
// fields cannot be represented in the fast-decode table (§4.6 step 5).
func (e *EnumDef) SetClosed(closed bool) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	e.closed = closed
	return nil
}

func (e *EnumDef) IsClosed() bool { return e.closed }

func (e *EnumDef) DefaultValue() int64 { return e.defaultValue }

func (e *EnumDef) Names() []string { return e.names }

func (e *EnumDef) NumberOf(name string) (int64, bool) {
	v, ok := e.byName[name]
	return v, ok
}

func (e *EnumDef) NameOf(number int64) (string, bool) {
	n, ok := e.byValue[number]
	return n, ok
}

// Dup returns a deep, fresh, mutable copy of e. Enums carry no cross-def
// links, so unlike MessageDef.Dup there are no sub-links to demote.
func (e *EnumDef) Dup() *EnumDef {
	cp := NewEnum()
	cp.defaultValue = e.defaultValue
	cp.closed = e.closed
	cp.names = append([]string(nil), e.names...)
	for name, value := range e.byName {
		cp.byName[name] = value
	}
	for value, name := range e.byValue {
		cp.byValue[value] = name
	}
	return cp
}

// }}}
