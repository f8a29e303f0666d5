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

// FieldDef {{{

// FieldDef is not a standalone Def; it is owned by exactly one MessageDef
// once added (§3). Before that, it is a free-standing builder owned
// solely by whichever goroutine is constructing it.
type FieldDef struct {
	number   int32
	name     string
	added    bool
	owner    *MessageDef
	extOwner *ExtensionDef

	type_      Type
	label      Label
	oneofIndex int32
	isPacked   bool
	jsonName   string

	defaultValue []byte
	fval         any
	accessor     any

	// Exactly one of target/targetName is meaningful at a time: before
	// Table.Commit resolves it, targetName names a sub-message/enum by
	// (possibly relative) name; after commit, target is the resolved Def.
	target     Def
	targetName string

	// Set by Layout (§4.2).
	hasbitIndex int32
	offset32    uint32
	offset64    uint32
	sizeClass32 SizeClass
	sizeClass64 SizeClass

	// caseOffset{32,64} locate the shared discriminator slot for this
	// field's oneof group; meaningful only when IsOneofMember().
	caseOffset32 uint32
	caseOffset64 uint32
}

// NewField returns a fresh, fully mutable field with no number or name.
func NewField() *FieldDef {
	return &FieldDef{
		oneofIndex:  -1,
		hasbitIndex: -1,
	}
}

func (f *FieldDef) Number() int32        { return f.number }
func (f *FieldDef) Name() string         { return f.name }
func (f *FieldDef) Type() Type           { return f.type_ }
func (f *FieldDef) Label() Label         { return f.label }
func (f *FieldDef) IsPacked() bool       { return f.isPacked }
func (f *FieldDef) JSONName() string     { return f.jsonName }
func (f *FieldDef) DefaultValue() []byte { return f.defaultValue }
func (f *FieldDef) FVal() any            { return f.fval }
func (f *FieldDef) Accessor() any        { return f.accessor }
func (f *FieldDef) OneofIndex() int32    { return f.oneofIndex }
func (f *FieldDef) IsOneofMember() bool  { return f.label == LabelOneofMember }

// Target returns the resolved sub-message/enum def. It is nil until the
// owning message's transaction has been committed.
func (f *FieldDef) Target() Def { return f.target }

// TargetName returns the unresolved type name, meaningful only before
// commit.
func (f *FieldDef) TargetName() string { return f.targetName }

// HasbitIndex returns the has-bit index assigned by Layout, or -1 if the
// field has no has-bit.
func (f *FieldDef) HasbitIndex() int32 { return f.hasbitIndex }

func (f *FieldDef) Offset(ptrSize uint8) uint32 {
	if ptrSize == 4 {
		return f.offset32
	}
	return f.offset64
}

func (f *FieldDef) SizeClass(ptrSize uint8) SizeClass {
	if ptrSize == 4 {
		return f.sizeClass32
	}
	return f.sizeClass64
}

// CaseOffset returns the offset of f's oneof discriminator slot. Only
// meaningful when f.IsOneofMember().
func (f *FieldDef) CaseOffset(ptrSize uint8) uint32 {
	if ptrSize == 4 {
		return f.caseOffset32
	}
	return f.caseOffset64
}

// checkMutable enforces "permitted until the containing def is installed"
// (§4.1): once the field has an owner, mutability tracks the owner's
// installed state; an extension field not owned by any MessageDef (§5,
// "a wholly separate case of Def") instead tracks its ExtensionDef's
// installed state. Until either is set, the field is always mutable.
func (f *FieldDef) checkMutable() error {
	if f.owner != nil {
		return f.owner.checkMutable()
	}
	if f.extOwner != nil {
		return f.extOwner.checkMutable()
	}
	return nil
}

// setExtensionOwner records that f is x's own field descriptor, so f's
// mutability tracks x's installed state even though f is never added to a
// MessageDef. Called once by NewExtension.
func (f *FieldDef) setExtensionOwner(x *ExtensionDef) {
	f.extOwner = x
}

// checkNotAdded enforces "permitted only before the field is added to a
// MessageDef" for SetNumber/SetName (§4.1).
func (f *FieldDef) checkNotAdded() error {
	if f.added {
		return errFieldAfterAdd()
	}
	return nil
}

func (f *FieldDef) SetNumber(number int32) error {
	if err := f.checkNotAdded(); err != nil {
		return err
	}
	if number <= 0 {
		return errFieldNumberInvalid(number)
	}
	f.number = number
	return nil
}

func (f *FieldDef) SetName(name string) error {
	if err := f.checkNotAdded(); err != nil {
		return err
	}
	f.name = name
	return nil
}

func (f *FieldDef) SetType(t Type) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.type_ = t
	return nil
}

func (f *FieldDef) SetLabel(l Label) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.label = l
	return nil
}

func (f *FieldDef) SetOneofIndex(idx int32) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.oneofIndex = idx
	return nil
}

func (f *FieldDef) SetPacked(packed bool) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.isPacked = packed
	return nil
}

func (f *FieldDef) SetDefault(value []byte) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.defaultValue = value
	return nil
}

func (f *FieldDef) SetFVal(v any) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.fval = v
	return nil
}

func (f *FieldDef) SetAccessor(v any) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.accessor = v
	return nil
}

func (f *FieldDef) SetTypeName(name string) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.targetName = name
	f.target = nil
	return nil
}

func (f *FieldDef) SetJSONName(name string) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.jsonName = name
	return nil
}

// resolveTarget is called only by Table.Commit.
func (f *FieldDef) resolveTarget(def Def) {
	f.target = def
	f.targetName = ""
}

// clone returns a field detached from any owner, with its sub-link
// demoted to an unresolved-name stub (§4.1 dup()). Used by
// MessageDef.Dup.
func (f *FieldDef) clone() *FieldDef {
	cp := *f
	cp.added = false
	cp.owner = nil
	if cp.target != nil {
		cp.targetName = cp.target.FullName()
		cp.target = nil
	}
	cp.defaultValue = append([]byte(nil), f.defaultValue...)
	return &cp
}

// }}}
