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

import "sort"

// Layout {{{

// maxHasbitIndex bounds the has-bit count the planner will accept. It is
// generous relative to the fast-decode table's own, tighter limit (has-bit
// index < 32, §4.6 step 5) because the planner serves every field, not
// just the ones that end up in the fast path.
const maxHasbitIndex = 1 << 16

// Layout packs m's finalized field set into has-bit indices and storage
// offsets (§4.2). It is idempotent: calling it again after adding more
// fields recomputes everything from scratch. Layout fails (and leaves m
// untouched) if m is already installed, if its extension range is set with
// an end that is not after its start, or if the has-bit count would
// overflow.
func Layout(m *MessageDef) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if m.extensionEnd != 0 || m.extensionStart != 0 {
		if m.extensionEnd <= m.extensionStart {
			return errExtensionRangeInvalid(m.fqName)
		}
	}

	var required, optional, none []*FieldDef
	for _, f := range m.fields {
		switch {
		case hasHasbit(f):
			if f.label == LabelRequired {
				required = append(required, f)
			} else {
				optional = append(optional, f)
			}
		default:
			none = append(none, f)
		}
	}
	sortByNumber(required)
	sortByNumber(optional)
	if len(required)+len(optional) > maxHasbitIndex {
		return errHasbitOverflow(m.fqName)
	}

	hasbitIdx := int32(0)
	for _, f := range required {
		f.hasbitIndex = hasbitIdx
		hasbitIdx++
	}
	for _, f := range optional {
		f.hasbitIndex = hasbitIdx
		hasbitIdx++
	}
	for _, f := range none {
		f.hasbitIndex = -1
	}
	hasbitBytes := uint32((hasbitIdx + 7) / 8)

	size32 := planLayout(m, 4, hasbitBytes)
	size64 := planLayout(m, 8, hasbitBytes)

	m.hasbitBytes = hasbitBytes
	m.size = size64
	m.size32 = size32
	return nil
}

// hasHasbit implements step 1's partition: required/optional singular
// fields whose presence cannot be read out of their storage directly get
// a has-bit. Repeated fields, oneof members, and singular sub-messages
// (which use a null pointer as their own presence bit) do not.
func hasHasbit(f *FieldDef) bool {
	if f.label != LabelRequired && f.label != LabelOptional {
		return false
	}
	switch f.type_ {
	case TypeMessage, TypeGroup:
		return false
	default:
		return true
	}
}

func sortByNumber(fields []*FieldDef) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].number < fields[j].number
	})
}

// layoutItem is either a field's own storage slot or a oneof group's
// shared discriminator slot; both compete for space in the same
// decreasing-size-class pass.
type layoutItem struct {
	number int32
	assign func(offset uint32)
}

// planLayout assigns storage offsets to every field in m, plus one
// discriminator slot per oneof group, for the given pointer width, in
// decreasing size-class order, respecting natural alignment (step 3), and
// returns the total message footprint.
func planLayout(m *MessageDef, ptrSize uint8, headerSize uint32) uint32 {
	buckets := map[SizeClass][]layoutItem{}
	for _, f := range m.fields {
		sc := storageSizeClass(f)
		f := f
		buckets[sc] = append(buckets[sc], layoutItem{
			number: f.number,
			assign: func(offset uint32) {
				if ptrSize == 4 {
					f.offset32, f.sizeClass32 = offset, sc
				} else {
					f.offset64, f.sizeClass64 = offset, sc
				}
			},
		})
	}
	for oneofIdx, firstNumber := range oneofDiscriminators(m) {
		oneofIdx := oneofIdx
		buckets[SizeClass4] = append(buckets[SizeClass4], layoutItem{
			number: firstNumber,
			assign: func(offset uint32) {
				for _, f := range m.fields {
					if f.oneofIndex != int32(oneofIdx) {
						continue
					}
					if ptrSize == 4 {
						f.caseOffset32 = offset
					} else {
						f.caseOffset64 = offset
					}
				}
			},
		})
	}

	// Pointer-sized fields (SizeClassPointer) fall in with whichever of
	// the fixed classes shares their byte size on this target, so the
	// visitation order below never increases in byte size
	// even though SizeClassPointer is listed once regardless of target.
	order := []SizeClass{SizeClass8, SizeClassPointer, SizeClass4, SizeClass2, SizeClass1}
	cursor := headerSize
	for _, sc := range order {
		group := buckets[sc]
		sort.SliceStable(group, func(i, j int) bool { return group[i].number < group[j].number })
		byteSize := sc.ByteSize(ptrSize)
		if byteSize == 0 {
			continue
		}
		for _, item := range group {
			if cursor%byteSize != 0 {
				cursor += byteSize - (cursor % byteSize)
			}
			item.assign(cursor)
			cursor += byteSize
		}
	}
	return alignUp(cursor, 8)
}

// oneofDiscriminators returns, for every oneof index that has at least
// one member, the lowest field number among its members — used only as a
// deterministic tie-break key for the discriminator slot's placement.
func oneofDiscriminators(m *MessageDef) map[int]int32 {
	out := map[int]int32{}
	for _, f := range m.fields {
		if !f.IsOneofMember() || f.oneofIndex < 0 {
			continue
		}
		idx := int(f.oneofIndex)
		if cur, ok := out[idx]; !ok || f.number < cur {
			out[idx] = f.number
		}
	}
	return out
}

// storageSizeClass returns the natural size class of f's own storage slot.
// Repeated and map fields are always a container pointer (§4.2: "string-
// views and sub-message pointers take their natural machine sizes");
// everything else is sized by scalar type.
func storageSizeClass(f *FieldDef) SizeClass {
	if f.label == LabelRepeated {
		return SizeClassPointer
	}
	switch f.type_ {
	case TypeBool, TypeU8, TypeI8:
		return SizeClass1
	case TypeU16, TypeI16:
		return SizeClass2
	case TypeU32, TypeI32, TypeSI32, TypeFixed32, TypeSFixed32, TypeF32, TypeEnum:
		return SizeClass4
	case TypeU64, TypeI64, TypeSI64, TypeFixed64, TypeSFixed64, TypeF64:
		return SizeClass8
	case TypeString, TypeBytes, TypeMessage, TypeGroup:
		return SizeClassPointer
	default:
		return SizeClass4
	}
}

func alignUp(v, align uint32) uint32 {
	if v%align == 0 {
		return v
	}
	return v + (align - v%align)
}

// }}}
