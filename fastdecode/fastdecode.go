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

// Package fastdecode builds the sparse, tag-indexed dispatch table used by
// a wire-format decoder's fast path: one slot per hot field, keyed by the
// high bits of its wire tag, each slot carrying a dispatch key string and
// a packed 64-bit data word.
package fastdecode

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"go.protoreg.dev/protoreg"
)

// Entry is one occupied slot of the dispatch table.
type Entry struct {
	Slot        int
	Field       *protoreg.FieldDef
	DispatchKey string
	Data        uint64
}

// Table is the fast-decode dispatch table for one message.
type Table struct {
	Mask    uint16
	Size    int
	Entries []Entry
}

// Build assigns fast-table slots to m's fields in hotness order (required
// first, then ascending number), skipping any field the packed word or
// dispatch key can't represent (§4.6 step 5). subIndexOf must return the
// sub-reference index the mini-table builder assigned to a field, or -1.
func Build(m *protoreg.MessageDef, subIndexOf func(*protoreg.FieldDef) int32) *Table {
	fields := hotnessOrder(m)

	occupied := map[int]bool{}
	var entries []Entry
	maxSlot := -1

	for _, f := range fields {
		tag, tagLen, wt, ok := encodedTag(f)
		if !ok {
			continue
		}
		slot := int((tag & 0xf8) >> 3)
		if occupied[slot] {
			continue
		}

		data, ok := packWord(f, tag, subIndexOf(f))
		if !ok {
			continue
		}
		key, ok := dispatchKey(f, tagLen, wt)
		if !ok {
			continue
		}

		occupied[slot] = true
		entries = append(entries, Entry{Slot: slot, Field: f, DispatchKey: key, Data: data})
		if slot > maxSlot {
			maxSlot = slot
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Slot < entries[j].Slot })

	if maxSlot < 0 {
		return &Table{Mask: 0xff, Size: 1}
	}
	size := nextPowerOfTwo(maxSlot + 1)
	return &Table{
		Mask:    uint16((size - 1) << 3),
		Size:    size,
		Entries: entries,
	}
}

// hotnessOrder returns m's fields sorted required-first, then by
// ascending field number (§4.6 "Slot assignment").
func hotnessOrder(m *protoreg.MessageDef) []*protoreg.FieldDef {
	fields := append([]*protoreg.FieldDef(nil), m.Fields()...)
	sort.SliceStable(fields, func(i, j int) bool {
		a, b := fields[i], fields[j]
		ar := a.Label() == protoreg.LabelRequired
		br := b.Label() == protoreg.LabelRequired
		if ar != br {
			return ar
		}
		return a.Number() < b.Number()
	})
	return fields
}

// encodedTag computes f's tag the way the fast-decode table actually uses
// it: not the raw `number<<3 | wiretype` integer, but that integer's
// varint encoding, read back as a little-endian word (§4.6 step 1;
// upb's GetEncodedTag). A field whose varint exceeds two bytes can't be
// dispatched at all and is reported as unrepresentable.
func encodedTag(f *protoreg.FieldDef) (tag uint64, tagLen int, wt protowire.Type, ok bool) {
	if f.Number() <= 0 {
		return 0, 0, 0, false
	}
	wt = elementWireType(f)
	if f.IsPacked() {
		wt = protowire.BytesType
	}
	raw := protowire.EncodeTag(protowire.Number(f.Number()), wt)
	buf := protowire.AppendVarint(nil, raw)
	if len(buf) > 2 {
		return 0, 0, 0, false
	}
	tag = uint64(buf[0])
	if len(buf) == 2 {
		tag |= uint64(buf[1]) << 8
	}
	return tag, len(buf), wt, true
}

func elementWireType(f *protoreg.FieldDef) protowire.Type {
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

// packWord lays out the 64-bit dispatch word per §4.6 step 4, applying
// step 5's unrepresentable-field skip rules. tag is the already-computed
// encoded (varint) tag, not the raw `number<<3|wiretype` integer.
func packWord(f *protoreg.FieldDef, tag uint64, subIndex int32) (uint64, bool) {
	if f.Type() == protoreg.TypeEnum {
		if target, ok := f.Target().(*protoreg.EnumDef); ok && target.IsClosed() {
			return 0, false
		}
	}
	if target, ok := f.Target().(*protoreg.MessageDef); ok && target.IsMapEntry() {
		return 0, false
	}

	var word uint64
	word |= tag & 0xffff

	if f.Type() == protoreg.TypeMessage || f.Type() == protoreg.TypeGroup {
		if subIndex < 0 || subIndex > 0xff {
			return 0, false
		}
		word |= uint64(subIndex&0xff) << 16
	}

	if f.IsOneofMember() {
		if f.Number() >= 256 {
			return 0, false
		}
		word |= uint64(f.Number()&0xff) << 24
	} else if f.HasbitIndex() >= 0 {
		if f.HasbitIndex() >= 32 {
			return 0, false
		}
		word |= uint64(f.HasbitIndex()&0xff) << 24
	}

	if f.IsOneofMember() {
		caseOffset := f.CaseOffset(8)
		if caseOffset > 0xffff {
			return 0, false
		}
		word |= uint64(caseOffset&0xffff) << 32
	}

	word |= uint64(f.Offset(8)&0xffff) << 48
	return word, true
}

// dispatchKey builds the upb_p{cardinality}{type}_{1|2}bt[_max{N}b]
// symbol name for f (§4.6 step 3). tagLen is the encoded tag's varint
// length in bytes (1 or 2), as computed by encodedTag.
func dispatchKey(f *protoreg.FieldDef, tagLen int, wt protowire.Type) (string, bool) {
	cardinality := "s"
	switch {
	case f.IsOneofMember():
		cardinality = "o"
	case f.IsPacked():
		cardinality = "p"
	case f.Label() == protoreg.LabelRepeated:
		cardinality = "r"
	}

	typ, ok := typeLetter(f)
	if !ok {
		return "", false
	}

	suffix := ""
	if f.Type() == protoreg.TypeMessage || f.Type() == protoreg.TypeGroup {
		suffix = "_max" + submsgBucket(f) + "b"
	}

	return fmt.Sprintf("upb_p%s%s_%dbt%s", cardinality, typ, tagLen, suffix), true
}

func typeLetter(f *protoreg.FieldDef) (string, bool) {
	switch f.Type() {
	case protoreg.TypeBool:
		return "b1", true
	case protoreg.TypeU8, protoreg.TypeI8, protoreg.TypeU16, protoreg.TypeI16,
		protoreg.TypeU32, protoreg.TypeI32, protoreg.TypeEnum:
		return "v4", true
	case protoreg.TypeU64, protoreg.TypeI64:
		return "v8", true
	case protoreg.TypeSI32:
		return "z4", true
	case protoreg.TypeSI64:
		return "z8", true
	case protoreg.TypeFixed32, protoreg.TypeSFixed32, protoreg.TypeF32:
		return "f4", true
	case protoreg.TypeFixed64, protoreg.TypeSFixed64, protoreg.TypeF64:
		return "f8", true
	case protoreg.TypeString:
		return "s", true
	case protoreg.TypeBytes:
		return "b", true
	case protoreg.TypeMessage, protoreg.TypeGroup:
		return "m", true
	default:
		return "", false
	}
}

// submsgBucket picks the ceiling size bucket for a sub-message field's
// dispatch key, collapsing anything too large (or not a plain MessageDef,
// e.g. an as-yet-unresolved cross-file reference) to "max".
func submsgBucket(f *protoreg.FieldDef) string {
	target, ok := f.Target().(*protoreg.MessageDef)
	if !ok {
		return "max"
	}
	size := target.Size()
	for _, bucket := range []uint32{64, 128, 192, 256} {
		if size <= bucket {
			return fmt.Sprintf("%d", bucket)
		}
	}
	return "max"
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
