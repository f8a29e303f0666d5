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

// Package emitter serializes a linked file's def graph and pre-built
// mini-tables/fast-decode tables into the two text streams a caller
// writes to opaque sinks: a C-callable accessor header and its matching
// source file (§4.7). The emitter carries no runtime state beyond what
// it's handed; it never re-derives layout or mini-table content.
package emitter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"go.protoreg.dev/protoreg"
	"go.protoreg.dev/protoreg/fastdecode"
	"go.protoreg.dev/protoreg/minitable"
)

// MessageUnit bundles one message's def with the mini-table and optional
// fast-decode table already built for it.
type MessageUnit struct {
	Def       *protoreg.MessageDef
	MiniTable *minitable.Table
	FastTable *fastdecode.Table
}

// EnumUnit bundles one enum's def with its mini-table.
type EnumUnit struct {
	Def       *protoreg.EnumDef
	MiniTable *minitable.EnumTable
}

// ExtensionUnit bundles one extension's def with its mini-table.
type ExtensionUnit struct {
	Def       *protoreg.ExtensionDef
	MiniTable *minitable.ExtensionTable
}

// Emit writes header and source text for messages, enums, and extensions
// to header and source respectively. Ordering is deterministic regardless
// of input order: messages and enums sorted by fully-qualified name,
// fields by number (already guaranteed by minitable.Build), extensions by
// fully-qualified name (§4.7).
func Emit(header, source io.Writer, messages []MessageUnit, enums []EnumUnit, extensions []ExtensionUnit) error {
	messages = append([]MessageUnit(nil), messages...)
	enums = append([]EnumUnit(nil), enums...)
	extensions = append([]ExtensionUnit(nil), extensions...)
	sort.Slice(messages, func(i, j int) bool { return messages[i].Def.FullName() < messages[j].Def.FullName() })
	sort.Slice(enums, func(i, j int) bool { return enums[i].Def.FullName() < enums[j].Def.FullName() })
	sort.Slice(extensions, func(i, j int) bool { return extensions[i].Def.FullName() < extensions[j].Def.FullName() })

	var hdr, src strings.Builder
	writeHeader(&hdr, messages, enums, extensions)
	writeSource(&src, messages, enums, extensions)

	if _, err := io.WriteString(header, hdr.String()); err != nil {
		return fmt.Errorf("emitter: writing header: %w", err)
	}
	if _, err := io.WriteString(source, src.String()); err != nil {
		return fmt.Errorf("emitter: writing source: %w", err)
	}
	return nil
}

// Header text {{{

func writeHeader(w *strings.Builder, messages []MessageUnit, enums []EnumUnit, extensions []ExtensionUnit) {
	fmt.Fprintln(w, "/* Code generated by protoc-gen-minitable. DO NOT EDIT. */")
	fmt.Fprintln(w, "#ifndef PROTOC_GEN_MINITABLE_H_")
	fmt.Fprintln(w, "#define PROTOC_GEN_MINITABLE_H_")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "/* Forward declarations. */")
	for _, m := range messages {
		fmt.Fprintf(w, "extern const upb_MiniTable %s;\n", miniTableSymbol(m.Def.FullName()))
	}
	for _, e := range enums {
		fmt.Fprintf(w, "extern const upb_MiniTableEnum %s;\n", enumTableSymbol(e.Def.FullName()))
	}
	for _, x := range extensions {
		fmt.Fprintf(w, "extern const upb_MiniTableExtension %s;\n", extensionTableSymbol(x.Def.FullName()))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "/* Type aliases. */")
	for _, m := range messages {
		name := cIdent(m.Def.FullName())
		fmt.Fprintf(w, "typedef struct %s %s;\n", name, name)
	}
	fmt.Fprintln(w)

	for _, e := range enums {
		writeEnumBody(w, e)
	}

	for _, m := range messages {
		writeMessageAccessors(w, m)
	}

	for _, x := range extensions {
		writeExtensionAccessors(w, x)
	}

	fmt.Fprintln(w, "#endif /* PROTOC_GEN_MINITABLE_H_ */")
}

// writeEnumBody emits the enum's values sorted by numeric value, as
// required by §4.7 ("enum bodies sorted by value").
func writeEnumBody(w *strings.Builder, e EnumUnit) {
	name := cIdent(e.Def.FullName())
	fmt.Fprintf(w, "typedef enum {\n")
	names := append([]string(nil), e.Def.Names()...)
	sort.Slice(names, func(i, j int) bool {
		vi, _ := e.Def.NumberOf(names[i])
		vj, _ := e.Def.NumberOf(names[j])
		return vi < vj
	})
	for _, valueName := range names {
		number, _ := e.Def.NumberOf(valueName)
		fmt.Fprintf(w, "  %s_%s = %d,\n", name, valueName, number)
	}
	fmt.Fprintf(w, "} %s;\n\n", name)
}

func writeMessageAccessors(w *strings.Builder, m MessageUnit) {
	name := cIdent(m.Def.FullName())

	for idx, oneof := range m.Def.Oneofs() {
		writeOneofCaseEnum(w, m.Def, name, int32(idx), oneof)
	}

	for _, fd := range m.MiniTable.Fields {
		f, ok := m.Def.FieldByNumber(fd.Number)
		if !ok {
			continue
		}
		writeFieldAccessors(w, name, f)
	}

	for _, f := range m.Def.Fields() {
		if f.Label() != protoreg.LabelRepeated {
			continue
		}
		writeRepeatedAccessors(w, name, f)
	}
	fmt.Fprintln(w)
}

func writeOneofCaseEnum(w *strings.Builder, m *protoreg.MessageDef, msgName string, oneofIndex int32, oneof string) {
	fmt.Fprintf(w, "typedef enum {\n  %s_%s_NOT_SET = 0,\n", msgName, strings.ToUpper(oneof))
	for _, f := range m.Fields() {
		if !f.IsOneofMember() || f.OneofIndex() != oneofIndex {
			continue
		}
		fmt.Fprintf(w, "  %s_%s = %d,\n", msgName, f.Name(), f.Number())
	}
	fmt.Fprintf(w, "} %s_%s_case;\n", msgName, strings.ToUpper(oneof))
	fmt.Fprintf(w, "UPB_INLINE %s_%s_case %s_%s_case(const %s *msg);\n\n", msgName, strings.ToUpper(oneof), msgName, oneof, msgName)
}

func writeFieldAccessors(w *strings.Builder, msgName string, f *protoreg.FieldDef) {
	ctype := cFieldType(f)
	fmt.Fprintf(w, "UPB_INLINE bool %s_has_%s(const %s *msg);\n", msgName, f.Name(), msgName)
	fmt.Fprintf(w, "UPB_INLINE void %s_clear_%s(%s *msg);\n", msgName, f.Name(), msgName)
	fmt.Fprintf(w, "UPB_INLINE %s %s_%s(const %s *msg);\n", ctype, msgName, f.Name(), msgName)
	fmt.Fprintf(w, "UPB_INLINE void %s_set_%s(%s *msg, %s value);\n", msgName, f.Name(), msgName, ctype)
	if f.Type() == protoreg.TypeMessage && f.Label() != protoreg.LabelRepeated {
		fmt.Fprintf(w, "UPB_INLINE %s *%s_mutable_%s(%s *msg, upb_Arena *arena);\n", ctype, msgName, f.Name(), msgName)
	}
}

func writeRepeatedAccessors(w *strings.Builder, msgName string, f *protoreg.FieldDef) {
	ctype := cFieldType(f)
	fmt.Fprintf(w, "UPB_INLINE %s const *%s_%s(const %s *msg, size_t *len);\n", ctype, msgName, f.Name(), msgName)
	fmt.Fprintf(w, "UPB_INLINE %s *%s_mutable_%s(%s *msg, size_t *len);\n", ctype, msgName, f.Name(), msgName)
	fmt.Fprintf(w, "UPB_INLINE %s *%s_resize_%s(%s *msg, size_t len, upb_Arena *arena);\n", ctype, msgName, f.Name(), msgName)
	fmt.Fprintf(w, "UPB_INLINE bool %s_add_%s(%s *msg, %s value, upb_Arena *arena);\n", msgName, f.Name(), msgName, ctype)
}

// writeExtensionAccessors emits the get/set/has/clear inlines threaded
// through the extension registry (§4.7); an extension's "message" is
// whatever upb_Message pointer its extendee's accessors hand back, so the
// forward decls take that pointer type rather than a concrete struct.
func writeExtensionAccessors(w *strings.Builder, x ExtensionUnit) {
	name := cIdent(x.Def.FullName())
	ctype := cFieldType(x.Def.Field())
	fmt.Fprintf(w, "UPB_INLINE bool %s_has(const upb_Message *msg);\n", name)
	fmt.Fprintf(w, "UPB_INLINE void %s_clear(upb_Message *msg);\n", name)
	fmt.Fprintf(w, "UPB_INLINE %s %s_get(const upb_Message *msg);\n", ctype, name)
	fmt.Fprintf(w, "UPB_INLINE void %s_set(upb_Message *msg, %s value, upb_Arena *arena);\n\n", name, ctype)
}

// }}}

// Source text {{{

func writeSource(w *strings.Builder, messages []MessageUnit, enums []EnumUnit, extensions []ExtensionUnit) {
	fmt.Fprintln(w, "/* Code generated by protoc-gen-minitable. DO NOT EDIT. */")
	fmt.Fprintln(w, `#include "protoc-gen-minitable.h"`)
	fmt.Fprintln(w)

	for _, m := range messages {
		writeMessageSource(w, m)
	}
	for _, e := range enums {
		writeEnumSource(w, e)
	}
	for _, x := range extensions {
		writeExtensionSource(w, x)
	}
	writeFileAggregate(w, messages, enums, extensions)
}

func writeMessageSource(w *strings.Builder, m MessageUnit) {
	name := cIdent(m.Def.FullName())

	if len(m.MiniTable.SubRefs) > 0 {
		fmt.Fprintf(w, "static const upb_MiniTableSub %s_submsgs[%d] = {\n", name, len(m.MiniTable.SubRefs))
		for _, sub := range m.MiniTable.SubRefs {
			fmt.Fprintf(w, "  {.submsg = &%s},\n", miniTableSymbol(sub.Target.FullName()))
		}
		fmt.Fprintln(w, "};")
	}

	fmt.Fprintf(w, "static const upb_MiniTableField %s_fields[%d] = {\n", name, len(m.MiniTable.Fields))
	for _, fd := range m.MiniTable.Fields {
		fmt.Fprintf(w, "  {%d, %s, %d, %d, %d, %s},\n",
			fd.Number, upbSizeU32(fd.Offset32, fd.Offset64), fd.Presence, fd.SubIndex, fd.WireType,
			upbSizeMode(fd.Mode32, fd.Mode64))
	}
	fmt.Fprintln(w, "};")

	fmt.Fprintf(w, "const upb_MiniTable %s = {\n", miniTableSymbol(m.Def.FullName()))
	if len(m.MiniTable.SubRefs) > 0 {
		fmt.Fprintf(w, "  .subs = %s_submsgs,\n", name)
	}
	fmt.Fprintf(w, "  .fields = %s_fields,\n", name)
	fmt.Fprintf(w, "  .size = %s,\n", upbSizeU32(m.MiniTable.Size32, m.MiniTable.Size64))
	fmt.Fprintf(w, "  .field_count = %d,\n", m.MiniTable.FieldCount)
	fmt.Fprintf(w, "  .ext = %d,\n", m.MiniTable.ExtensionMode)
	fmt.Fprintf(w, "  .dense_below = %d,\n", m.MiniTable.DenseBelow)
	fmt.Fprintf(w, "  .table_mask = %#x,\n", m.MiniTable.FastTableMask)
	fmt.Fprintf(w, "  .required_count = %d,\n", m.MiniTable.RequiredCount)
	fmt.Fprintln(w, "};")

	if m.FastTable != nil && len(m.FastTable.Entries) > 0 {
		fmt.Fprintf(w, "static const _upb_FastTable_Entry %s_fasttable[%d] = {\n", name, m.FastTable.Size)
		entryBySlot := map[int]fastdecode.Entry{}
		for _, e := range m.FastTable.Entries {
			entryBySlot[e.Slot] = e
		}
		for slot := 0; slot < m.FastTable.Size; slot++ {
			e, ok := entryBySlot[slot]
			if !ok {
				fmt.Fprintln(w, "  {&_upb_FastDecoder_DecodeGeneric, 0},")
				continue
			}
			fmt.Fprintf(w, "  {&%s, 0x%016xULL}, /* field %d */\n", e.DispatchKey, e.Data, e.Field.Number())
		}
		fmt.Fprintln(w, "};")
	}
	fmt.Fprintln(w)
}

func writeEnumSource(w *strings.Builder, e EnumUnit) {
	fmt.Fprintf(w, "const upb_MiniTableEnum %s = {\n", enumTableSymbol(e.Def.FullName()))
	fmt.Fprintf(w, "  .closed = %v,\n", e.MiniTable.Closed)
	fmt.Fprintf(w, "  .default_value = %d,\n", e.MiniTable.Default)
	fmt.Fprintf(w, "  .value_count = %d,\n", len(e.MiniTable.Values))
	fmt.Fprintln(w, "};")
	fmt.Fprintln(w)
}

// writeExtensionSource emits a record combining the extension's own field
// descriptor with its extendee and sub-reference (§4.7), the one-off
// counterpart to a message's _fields array plus submsg table.
func writeExtensionSource(w *strings.Builder, x ExtensionUnit) {
	name := cIdent(x.Def.FullName())
	fd := x.MiniTable.Field

	if x.MiniTable.SubRef != nil {
		fmt.Fprintf(w, "static const upb_MiniTableSub %s_sub = {.submsg = &%s};\n", name, miniTableSymbol(x.MiniTable.SubRef.Target.FullName()))
	}

	fmt.Fprintf(w, "const upb_MiniTableExtension %s = {\n", extensionTableSymbol(x.Def.FullName()))
	fmt.Fprintf(w, "  .field = {%d, %s, %d, %d, %d, %s},\n",
		fd.Number, upbSizeU32(fd.Offset32, fd.Offset64), fd.Presence, fd.SubIndex, fd.WireType,
		upbSizeMode(fd.Mode32, fd.Mode64))
	fmt.Fprintf(w, "  .extendee = &%s,\n", miniTableSymbol(x.MiniTable.Extendee))
	if x.MiniTable.SubRef != nil {
		fmt.Fprintf(w, "  .sub = &%s_sub,\n", name)
	}
	fmt.Fprintln(w, "};")
	fmt.Fprintln(w)
}

func writeFileAggregate(w *strings.Builder, messages []MessageUnit, enums []EnumUnit, extensions []ExtensionUnit) {
	fmt.Fprintln(w, "static const upb_MiniTable *const file_messages[] = {")
	for _, m := range messages {
		fmt.Fprintf(w, "  &%s,\n", miniTableSymbol(m.Def.FullName()))
	}
	fmt.Fprintln(w, "};")
	fmt.Fprintln(w, "static const upb_MiniTableEnum *const file_enums[] = {")
	for _, e := range enums {
		fmt.Fprintf(w, "  &%s,\n", enumTableSymbol(e.Def.FullName()))
	}
	fmt.Fprintln(w, "};")
	fmt.Fprintln(w, "static const upb_MiniTableExtension *const file_extensions[] = {")
	for _, x := range extensions {
		fmt.Fprintf(w, "  &%s,\n", extensionTableSymbol(x.Def.FullName()))
	}
	fmt.Fprintln(w, "};")
}

// }}}

// Naming helpers {{{

// upbSizeU32 formats a 32-bit/64-bit value pair through the UPB_SIZE(...)
// macro idiom (protoc-gen-upb.cc's GetSizeInit): the generated C picks
// whichever side matches the target's pointer width at compile time, so
// both variants have to survive into the literal even though Go already
// knows which one a given build wants.
func upbSizeU32(v32, v64 uint32) string {
	if v32 == v64 {
		return fmt.Sprintf("%d", v64)
	}
	return fmt.Sprintf("UPB_SIZE(%d, %d)", v32, v64)
}

// upbSizeMode is upbSizeU32's counterpart for a field's packed Mode byte.
func upbSizeMode(m32, m64 minitable.Mode) string {
	if m32 == m64 {
		return fmt.Sprintf("%#x", uint8(m64))
	}
	return fmt.Sprintf("UPB_SIZE(%#x, %#x)", uint8(m32), uint8(m64))
}

func cIdent(fqName string) string {
	return strings.ReplaceAll(fqName, ".", "_")
}

func miniTableSymbol(fqName string) string {
	return cIdent(fqName) + "_msg_init"
}

func enumTableSymbol(fqName string) string {
	return cIdent(fqName) + "_enum_init"
}

func extensionTableSymbol(fqName string) string {
	return cIdent(fqName) + "_ext_init"
}

func cFieldType(f *protoreg.FieldDef) string {
	switch f.Type() {
	case protoreg.TypeBool:
		return "bool"
	case protoreg.TypeU8, protoreg.TypeU16, protoreg.TypeU32, protoreg.TypeFixed32:
		return "uint32_t"
	case protoreg.TypeI8, protoreg.TypeI16, protoreg.TypeI32, protoreg.TypeSI32, protoreg.TypeSFixed32, protoreg.TypeEnum:
		return "int32_t"
	case protoreg.TypeU64, protoreg.TypeFixed64:
		return "uint64_t"
	case protoreg.TypeI64, protoreg.TypeSI64, protoreg.TypeSFixed64:
		return "int64_t"
	case protoreg.TypeF32:
		return "float"
	case protoreg.TypeF64:
		return "double"
	case protoreg.TypeString:
		return "upb_StringView"
	case protoreg.TypeBytes:
		return "upb_StringView"
	case protoreg.TypeMessage, protoreg.TypeGroup:
		if target := f.Target(); target != nil {
			return cIdent(target.FullName())
		}
		return "void"
	default:
		return "void"
	}
}

// }}}
