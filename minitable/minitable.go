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

// Package minitable builds the compact per-message and per-enum runtime
// descriptors consumed by a wire-format decoder: a canonical-order field
// array, a sub-reference array, and the footprint/extension-mode/
// dense-below/required-count summary carried alongside them.
package minitable

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"go.protoreg.dev/protoreg"
)

// noSub is the sentinel sub-reference index meaning "this field has no
// sub-message/enum target" (§4.5).
const noSub = -1

// SubRef identifies one entry of a message's sub-reference array.
type SubRef struct {
	Target protoreg.Def
}

// FieldDescriptor is one field's row in the mini-table's field array. Both
// the 32-bit and 64-bit variants are carried side by side: a 32-bit target
// lays out offsets (and sometimes chooses a narrower Repr) independently of
// the 64-bit one, and a generated source emits both through the
// UPB_SIZE(val32, val64) idiom (§4.2 step 4, §4.5).
type FieldDescriptor struct {
	Number   int32
	Offset32 uint32
	Offset64 uint32
	Presence int32
	SubIndex int32
	WireType protowire.Type
	Mode32   Mode
	Mode64   Mode
}

// Table is the mini-table record for one MessageDef (§4.5).
type Table struct {
	Name          string
	Fields        []FieldDescriptor
	SubRefs       []SubRef
	Size32        uint32
	Size64        uint32
	FieldCount    int
	ExtensionMode protoreg.ExtensionMode
	DenseBelow    int
	RequiredCount int

	// FastTableMask is set to 0xff ("no fast table") by Build; a caller
	// that also builds a fastdecode.Table for this message copies that
	// table's Mask in.
	FastTableMask uint16
}

// EnumTable is the mini-table record for one EnumDef: just enough to
// answer "is this number valid" for a closed enum.
type EnumTable struct {
	Name    string
	Values  []int64
	Closed  bool
	Default int64
}

// Build computes the mini-table for an installed, laid-out MessageDef.
func Build(m *protoreg.MessageDef) (*Table, error) {
	fields := append([]*protoreg.FieldDef(nil), m.Fields()...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Number() < fields[j].Number() })

	t := &Table{
		Name:          m.FullName(),
		Size32:        m.Size32(),
		Size64:        m.Size(),
		FieldCount:    len(fields),
		ExtensionMode: m.ExtensionMode(),
		FastTableMask: 0xff,
	}

	for _, f := range fields {
		subIndex := int32(noSub)
		if f.Type() == protoreg.TypeMessage || f.Type() == protoreg.TypeGroup || f.Type() == protoreg.TypeEnum {
			if target := f.Target(); target != nil {
				subIndex = int32(len(t.SubRefs))
				t.SubRefs = append(t.SubRefs, SubRef{Target: target})
			}
		}

		fd := FieldDescriptor{
			Number:   f.Number(),
			Offset32: f.Offset(4),
			Offset64: f.Offset(8),
			Presence: presenceOf(f),
			SubIndex: subIndex,
			WireType: wireTypeOf(f),
			Mode32:   modeOf(f, 4),
			Mode64:   modeOf(f, 8),
		}
		t.Fields = append(t.Fields, fd)

		if f.Label() == protoreg.LabelRequired {
			t.RequiredCount++
		}
	}

	t.DenseBelow = denseBelow(t.Fields)
	return t, nil
}

// ExtensionTable is the mini-table record for one ExtensionDef: its own
// field descriptor plus the extendee it targets (§4.7).
type ExtensionTable struct {
	Name     string
	Extendee string
	Field    FieldDescriptor
	SubRef   *SubRef
}

// BuildExtension computes the mini-table for an installed ExtensionDef.
// Unlike a message field, an extension's sub-reference (if any) is carried
// directly on the record instead of indexed into a per-message array,
// since an extension has no owning message array to index into. Presence
// is always the zero encoding: an extension's presence is "does the
// extendee's extension registry have an entry for this name", not a
// has-bit or oneof case offset in the extendee's own layout.
func BuildExtension(x *protoreg.ExtensionDef) *ExtensionTable {
	f := x.Field()

	t := &ExtensionTable{
		Name:     x.FullName(),
		Extendee: x.Extendee().FullName(),
		Field: FieldDescriptor{
			Number:   f.Number(),
			Offset32: f.Offset(4),
			Offset64: f.Offset(8),
			Presence: presenceOf(f),
			SubIndex: noSub,
			WireType: wireTypeOf(f),
			Mode32:   modeOf(f, 4),
			Mode64:   modeOf(f, 8),
		},
	}
	if f.Type() == protoreg.TypeMessage || f.Type() == protoreg.TypeGroup || f.Type() == protoreg.TypeEnum {
		if target := f.Target(); target != nil {
			t.Field.SubIndex = 0
			t.SubRef = &SubRef{Target: target}
		}
	}
	return t
}

// BuildEnum computes the mini-table for an installed EnumDef.
func BuildEnum(e *protoreg.EnumDef) *EnumTable {
	names := e.Names()
	values := make([]int64, 0, len(names))
	for _, name := range names {
		v, _ := e.NumberOf(name)
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return &EnumTable{
		Name:    e.FullName(),
		Values:  values,
		Closed:  e.IsClosed(),
		Default: e.DefaultValue(),
	}
}

// presenceOf implements §4.5's three-way presence encoding.
func presenceOf(f *protoreg.FieldDef) int32 {
	switch {
	case f.IsOneofMember():
		return ^int32(f.CaseOffset(8))
	case f.HasbitIndex() >= 0:
		return f.HasbitIndex()
	default:
		return 0
	}
}

// wireTypeOf maps a field's scalar/message type to the wire type its
// individual elements are encoded with. Packed repeated fields still
// report their element wire type here; Mode's Packed flag is what tells
// the emitter/fast-table builder the field is actually framed as one
// length-delimited run.
func wireTypeOf(f *protoreg.FieldDef) protowire.Type {
	switch f.Type() {
	case protoreg.TypeBool, protoreg.TypeU8, protoreg.TypeI8, protoreg.TypeU16, protoreg.TypeI16,
		protoreg.TypeU32, protoreg.TypeI32, protoreg.TypeSI32, protoreg.TypeU64, protoreg.TypeI64,
		protoreg.TypeSI64, protoreg.TypeEnum:
		return protowire.VarintType
	case protoreg.TypeFixed32, protoreg.TypeSFixed32, protoreg.TypeF32:
		return protowire.Fixed32Type
	case protoreg.TypeFixed64, protoreg.TypeSFixed64, protoreg.TypeF64:
		return protowire.Fixed64Type
	case protoreg.TypeString, protoreg.TypeBytes, protoreg.TypeMessage:
		return protowire.BytesType
	case protoreg.TypeGroup:
		return protowire.StartGroupType
	default:
		return protowire.VarintType
	}
}

// modeOf packs f's Mode byte for the given target pointer width (4 or 8).
// Kind and Flag don't vary by width, but Repr does: a pointer-sized field on
// a 32-bit target can pick a narrower representation than the same field on
// a 64-bit target (§4.5 step 4).
func modeOf(f *protoreg.FieldDef, ptrSize uint8) Mode {
	kind := KindScalar
	if f.Label() == protoreg.LabelRepeated {
		kind = KindArray
		if target, ok := f.Target().(*protoreg.MessageDef); ok && target.IsMapEntry() {
			kind = KindMap
		}
	}

	var flags Flag
	if f.IsPacked() {
		flags |= FlagPacked
	}

	var repr Repr
	switch f.SizeClass(ptrSize) {
	case protoreg.SizeClass1:
		repr = Repr1Byte
	case protoreg.SizeClass2, protoreg.SizeClass4:
		repr = Repr4Byte
	case protoreg.SizeClass8:
		repr = Repr8Byte
	case protoreg.SizeClassPointer:
		repr = ReprStringView
		if f.Label() == protoreg.LabelRepeated || f.Type() == protoreg.TypeMessage || f.Type() == protoreg.TypeGroup {
			repr = Repr8Byte
			if ptrSize == 4 {
				repr = Repr4Byte
			}
		}
	}

	return PackMode(kind, flags, repr)
}

// denseBelow returns the length of the longest prefix of fields (already
// sorted by number) whose numbers are exactly 1..N.
func denseBelow(fields []FieldDescriptor) int {
	n := 0
	for _, f := range fields {
		if int(f.Number) != n+1 {
			break
		}
		n++
	}
	return n
}
