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

// ExtensionDef {{{

// ExtensionDef is a Def of kind Extension: a field descriptor keyed by its
// own fully-qualified name rather than owned by a MessageDef's field
// indices (§3's "owned by exactly one MessageDef once added" invariant
// binds ordinary fields; an extension is never added to its extendee).
// Resolution links two names independently: the extendee (which message
// this extends) and, for message/group/enum extensions, the extension
// field's own sub-message/enum target.
type ExtensionDef struct {
	defHeader

	field *FieldDef

	extendeeName string
	extendee     *MessageDef
}

var _ Def = (*ExtensionDef)(nil)

// NewExtension returns a fresh, mutable, unnamed ExtensionDef wrapping an
// already-configured field (number, type, label, etc. set the same way an
// ordinary FieldDef would be, via the FieldDef setters). f must not have
// been added to any MessageDef.
func NewExtension(f *FieldDef) *ExtensionDef {
	x := &ExtensionDef{
		defHeader: defHeader{kind: KindExtension},
		field:     f,
	}
	f.setExtensionOwner(x)
	return x
}

// Field returns the extension's own field descriptor: number, type, label,
// and (once resolved) sub-message/enum target all read the same as an
// ordinary field's.
func (x *ExtensionDef) Field() *FieldDef { return x.field }

// SetExtendeeName records the fully-qualified name of the message this
// extension extends; Table.Commit resolves it the same way it resolves a
// field's sub-message/enum target.
func (x *ExtensionDef) SetExtendeeName(name string) error {
	if err := x.checkMutable(); err != nil {
		return err
	}
	x.extendeeName = name
	x.extendee = nil
	return nil
}

func (x *ExtensionDef) ExtendeeName() string { return x.extendeeName }

// Extendee returns the resolved extendee MessageDef. Nil until commit.
func (x *ExtensionDef) Extendee() *MessageDef { return x.extendee }

func (x *ExtensionDef) resolveExtendee(m *MessageDef) {
	x.extendee = m
	x.extendeeName = ""
}

// }}}
