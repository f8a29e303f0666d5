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

// Package fromdescriptor is the peripheral driver glue that turns an
// already-parsed *descriptorpb.FileDescriptorProto into a Transaction of
// mutable defs ready for protoreg.Table.Commit. It performs no name
// resolution itself — every sub-message/enum type name is staged as an
// unresolved stub for Commit to link.
package fromdescriptor

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"go.protoreg.dev/protoreg"
)

// Build converts fd into a transaction containing one def per top-level
// and nested message, enum, and service declared in the file.
func Build(fd *descriptorpb.FileDescriptorProto) (*protoreg.Transaction, error) {
	tx := protoreg.NewTransaction()
	pkg := fd.GetPackage()

	for _, msg := range fd.GetMessageType() {
		if err := buildMessage(tx, pkg, msg); err != nil {
			return nil, err
		}
	}
	for _, enum := range fd.GetEnumType() {
		if err := buildEnum(tx, pkg, enum, fd.GetSyntax()); err != nil {
			return nil, err
		}
	}
	for _, svc := range fd.GetService() {
		if err := buildService(tx, pkg, svc); err != nil {
			return nil, err
		}
	}
	for _, ext := range fd.GetExtension() {
		if err := buildExtension(tx, pkg, ext); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func scopedName(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func buildMessage(tx *protoreg.Transaction, scope string, proto *descriptorpb.DescriptorProto) error {
	fqName := scopedName(scope, proto.GetName())

	m := protoreg.NewMessage()
	if err := m.SetFullName(fqName); err != nil {
		return fmt.Errorf("fromdescriptor: message %s: %w", fqName, err)
	}
	if proto.GetOptions().GetMapEntry() {
		if err := m.SetMapEntry(true); err != nil {
			return err
		}
	}
	if proto.GetOptions().GetMessageSetWireFormat() {
		if err := m.SetMessageSetWireFormat(true); err != nil {
			return err
		}
	}
	if ranges := proto.GetExtensionRange(); len(ranges) > 0 {
		start, end := ranges[0].GetStart(), ranges[0].GetEnd()
		for _, r := range ranges[1:] {
			if r.GetStart() < start {
				start = r.GetStart()
			}
			if r.GetEnd() > end {
				end = r.GetEnd()
			}
		}
		if err := m.SetExtensionStart(start); err != nil {
			return err
		}
		if err := m.SetExtensionEnd(end); err != nil {
			return err
		}
	}

	for _, oneof := range proto.GetOneofDecl() {
		if _, err := m.AddOneof(oneof.GetName()); err != nil {
			return fmt.Errorf("fromdescriptor: message %s: oneof %s: %w", fqName, oneof.GetName(), err)
		}
	}

	for _, fieldProto := range proto.GetField() {
		f, err := buildField(fieldProto)
		if err != nil {
			return fmt.Errorf("fromdescriptor: message %s: field %s: %w", fqName, fieldProto.GetName(), err)
		}
		if err := m.AddField(f); err != nil {
			return fmt.Errorf("fromdescriptor: message %s: field %s: %w", fqName, fieldProto.GetName(), err)
		}
	}

	if err := protoreg.Layout(m); err != nil {
		return fmt.Errorf("fromdescriptor: message %s: %w", fqName, err)
	}
	if err := tx.Add(m); err != nil {
		return err
	}

	// Map-entry messages (protoc's synthesized key/value wrapper for
	// map<K, V> fields) are registered the same as any nested message,
	// so resolution finds them; minitable.Build detects them via
	// MessageDef.IsMapEntry() on the target, not by skipping them here.
	for _, nested := range proto.GetNestedType() {
		if err := buildMessage(tx, fqName, nested); err != nil {
			return err
		}
	}
	for _, nestedEnum := range proto.GetEnumType() {
		if err := buildEnum(tx, fqName, nestedEnum, ""); err != nil {
			return err
		}
	}
	for _, ext := range proto.GetExtension() {
		if err := buildExtension(tx, fqName, ext); err != nil {
			return err
		}
	}
	return nil
}

func buildField(proto *descriptorpb.FieldDescriptorProto) (*protoreg.FieldDef, error) {
	f := protoreg.NewField()
	if err := f.SetNumber(proto.GetNumber()); err != nil {
		return nil, err
	}
	if err := f.SetName(proto.GetName()); err != nil {
		return nil, err
	}
	if err := f.SetType(mapType(proto.GetType())); err != nil {
		return nil, err
	}
	if err := f.SetJSONName(proto.GetJsonName()); err != nil {
		return nil, err
	}

	label := mapLabel(proto.GetLabel())
	if proto.OneofIndex != nil {
		label = protoreg.LabelOneofMember
		if err := f.SetOneofIndex(proto.GetOneofIndex()); err != nil {
			return nil, err
		}
	}
	if err := f.SetLabel(label); err != nil {
		return nil, err
	}

	if proto.GetTypeName() != "" {
		if err := f.SetTypeName(proto.GetTypeName()); err != nil {
			return nil, err
		}
	}
	if proto.GetOptions().GetPacked() {
		if err := f.SetPacked(true); err != nil {
			return nil, err
		}
	}
	if proto.DefaultValue != nil {
		if err := f.SetDefault([]byte(proto.GetDefaultValue())); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func buildEnum(tx *protoreg.Transaction, scope string, proto *descriptorpb.EnumDescriptorProto, syntax string) error {
	fqName := scopedName(scope, proto.GetName())

	e := protoreg.NewEnum()
	if err := e.SetFullName(fqName); err != nil {
		return fmt.Errorf("fromdescriptor: enum %s: %w", fqName, err)
	}
	if err := e.SetClosed(syntax != "proto3"); err != nil {
		return err
	}

	for i, value := range proto.GetValue() {
		if err := e.AddValue(value.GetName(), int64(value.GetNumber())); err != nil {
			return fmt.Errorf("fromdescriptor: enum %s: value %s: %w", fqName, value.GetName(), err)
		}
		if i == 0 {
			if err := e.SetDefaultValue(int64(value.GetNumber())); err != nil {
				return err
			}
		}
	}
	return tx.Add(e)
}

// buildExtension converts one `extend` field declaration into an
// ExtensionDef, keyed by its own fully-qualified name rather than added to
// the extendee's MessageDef (§5 "extension registry"). Resolution of the
// extendee name and, for message/enum extensions, the field's own target
// both happen later in Table.Commit.
func buildExtension(tx *protoreg.Transaction, scope string, proto *descriptorpb.FieldDescriptorProto) error {
	fqName := scopedName(scope, proto.GetName())

	f, err := buildField(proto)
	if err != nil {
		return fmt.Errorf("fromdescriptor: extension %s: %w", fqName, err)
	}

	x := protoreg.NewExtension(f)
	if err := x.SetFullName(fqName); err != nil {
		return fmt.Errorf("fromdescriptor: extension %s: %w", fqName, err)
	}
	if err := x.SetExtendeeName(proto.GetExtendee()); err != nil {
		return err
	}
	return tx.Add(x)
}

func buildService(tx *protoreg.Transaction, scope string, proto *descriptorpb.ServiceDescriptorProto) error {
	fqName := scopedName(scope, proto.GetName())

	s := protoreg.NewService()
	if err := s.SetFullName(fqName); err != nil {
		return fmt.Errorf("fromdescriptor: service %s: %w", fqName, err)
	}
	for _, method := range proto.GetMethod() {
		if err := s.AddMethodName(method.GetName()); err != nil {
			return err
		}
	}
	return tx.Add(s)
}

func mapType(t descriptorpb.FieldDescriptorProto_Type) protoreg.Type {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return protoreg.TypeBool
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32:
		return protoreg.TypeU32
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		return protoreg.TypeI32
	case descriptorpb.FieldDescriptorProto_TYPE_SINT32:
		return protoreg.TypeSI32
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return protoreg.TypeFixed32
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return protoreg.TypeSFixed32
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64:
		return protoreg.TypeU64
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return protoreg.TypeI64
	case descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		return protoreg.TypeSI64
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return protoreg.TypeFixed64
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return protoreg.TypeSFixed64
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return protoreg.TypeF32
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return protoreg.TypeF64
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return protoreg.TypeString
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return protoreg.TypeBytes
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return protoreg.TypeMessage
	case descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return protoreg.TypeGroup
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return protoreg.TypeEnum
	default:
		return protoreg.TypeUnknown
	}
}

func mapLabel(l descriptorpb.FieldDescriptorProto_Label) protoreg.Label {
	switch l {
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		return protoreg.LabelRequired
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		return protoreg.LabelRepeated
	default:
		return protoreg.LabelOptional
	}
}
