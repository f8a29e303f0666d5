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

import "go.protoreg.dev/protoreg/internal/inttab"

// MessageDef {{{

// MessageDef is a Def of kind Message. It holds two indices over its
// fields, by tag number and by name, whose keys are unique within each
// and which always describe the same field set (§3, §8).
type MessageDef struct {
	defHeader

	fields []*FieldDef
	byTag  *inttab.Table[*FieldDef]
	byName map[string]*FieldDef
	oneofs []string

	size                 uint32
	size32               uint32
	hasbitBytes          uint32
	extensionStart       int32
	extensionEnd         int32
	messageSetWireFormat bool
	mapEntry             bool

	fastTableMask uint16
}

var _ Def = (*MessageDef)(nil)

// NewMessage returns a fresh, mutable, unnamed MessageDef.
func NewMessage() *MessageDef {
	return &MessageDef{
		defHeader: defHeader{kind: KindMessage},
		byTag:     inttab.New[*FieldDef](),
		byName:    make(map[string]*FieldDef),
	}
}

func (m *MessageDef) Fields() []*FieldDef {
	return m.fields
}

func (m *MessageDef) FieldByNumber(number int32) (*FieldDef, bool) {
	return m.byTag.Get(uint32(number))
}

func (m *MessageDef) FieldByName(name string) (*FieldDef, bool) {
	f, ok := m.byName[name]
	return f, ok
}

func (m *MessageDef) NumFields() int {
	return len(m.fields)
}

func (m *MessageDef) Size() uint32               { return m.size }
func (m *MessageDef) Size32() uint32              { return m.size32 }
func (m *MessageDef) HasbitBytes() uint32         { return m.hasbitBytes }
func (m *MessageDef) ExtensionStart() int32       { return m.extensionStart }
func (m *MessageDef) ExtensionEnd() int32         { return m.extensionEnd }
func (m *MessageDef) MessageSetWireFormat() bool  { return m.messageSetWireFormat }

// ExtensionMode summarizes the extension range and message-set flag into
// the three-way mode the mini-table builder emits (§4.5).
func (m *MessageDef) ExtensionMode() ExtensionMode {
	if m.messageSetWireFormat {
		return IsMessageSet
	}
	if m.extensionEnd > m.extensionStart {
		return Extendable
	}
	return NonExtendable
}

func (m *MessageDef) Oneofs() []string {
	return m.oneofs
}

// AddOneof registers a new oneof and returns its index, for use as
// FieldDef.SetOneofIndex's argument. Permitted until installed.
func (m *MessageDef) AddOneof(name string) (int32, error) {
	if err := m.checkMutable(); err != nil {
		return 0, err
	}
	m.oneofs = append(m.oneofs, name)
	return int32(len(m.oneofs) - 1), nil
}

// AddField is atomic (§4.1): it fails if f has no name or number, or if
// the name or number already exists in the message, and in that case
// leaves the message's field set untouched.
func (m *MessageDef) AddField(f *FieldDef) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if f.number == 0 {
		return errFieldUnset("number")
	}
	if f.name == "" {
		return errFieldUnset("name")
	}
	if m.byTag.Has(uint32(f.number)) {
		return errFieldNumberTaken(m.fqName, uint32(f.number))
	}
	if _, taken := m.byName[f.name]; taken {
		return errFieldNameTaken(m.fqName, f.name)
	}

	f.added = true
	f.owner = m
	m.byTag.Put(uint32(f.number), f)
	m.byName[f.name] = f
	m.fields = append(m.fields, f)
	return nil
}

func (m *MessageDef) SetSize(size uint32) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.size = size
	return nil
}

func (m *MessageDef) SetHasbitBytes(n uint32) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.hasbitBytes = n
	return nil
}

func (m *MessageDef) SetExtensionStart(start int32) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.extensionStart = start
	return nil
}

func (m *MessageDef) SetExtensionEnd(end int32) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.extensionEnd = end
	return nil
}

func (m *MessageDef) SetMessageSetWireFormat(v bool) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.messageSetWireFormat = v
	return nil
}

// SetMapEntry marks m as the synthetic key/value message descriptor.proto
// generates for a `map<K, V>` field (its options.map_entry flag, §5). The
// mini-table builder uses this to give the containing field mode.kind =
// Map instead of Array.
func (m *MessageDef) SetMapEntry(v bool) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.mapEntry = v
	return nil
}

func (m *MessageDef) IsMapEntry() bool { return m.mapEntry }

func (m *MessageDef) setFastTableMask(mask uint16) {
	m.fastTableMask = mask
}

func (m *MessageDef) FastTableMask() uint16 {
	return m.fastTableMask
}

// Dup returns a deep copy of m whose field sub-links have been demoted to
// unresolved-name stubs carrying the original targets' fully-qualified
// names (§4.1). The copy is fresh and mutable, relocatable into any
// transaction.
func (m *MessageDef) Dup() *MessageDef {
	cp := NewMessage()
	cp.size = m.size
	cp.size32 = m.size32
	cp.hasbitBytes = m.hasbitBytes
	cp.extensionStart = m.extensionStart
	cp.extensionEnd = m.extensionEnd
	cp.messageSetWireFormat = m.messageSetWireFormat
	cp.mapEntry = m.mapEntry
	cp.oneofs = append([]string(nil), m.oneofs...)
	for _, f := range m.fields {
		clone := f.clone()
		clone.added = true
		clone.owner = cp
		cp.byTag.Put(uint32(clone.number), clone)
		cp.byName[clone.name] = clone
		cp.fields = append(cp.fields, clone)
	}
	return cp
}

// }}}
