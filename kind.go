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

// Package protoreg implements a typed, reference-counted, relocatable
// graph of protobuf message, field, and enum definitions, plus the symbol
// table that resolves cross-def names and installs them transactionally.
package protoreg

// Kind tags the variant a Def carries. It mirrors descriptor.proto's own
// split between messages, enums, and services, plus a kind for extensions
// and one for defs that exist only as an unresolved forward reference.
type Kind uint8

const (
	KindUnresolved Kind = iota
	KindMessage
	KindEnum
	KindService
	KindExtension
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEnum:
		return "enum"
	case KindService:
		return "service"
	case KindExtension:
		return "extension"
	default:
		return "unresolved"
	}
}

// Type is the numeric type code carried by a FieldDef, matching
// descriptor.proto's FieldDescriptorProto.Type space closely enough to be
// driven directly from it.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeBool
	TypeU8
	TypeI8
	TypeU16
	TypeI16
	TypeU32
	TypeI32
	TypeSI32
	TypeFixed32
	TypeSFixed32
	TypeU64
	TypeI64
	TypeSI64
	TypeFixed64
	TypeSFixed64
	TypeF32
	TypeF64
	TypeString
	TypeBytes
	TypeMessage
	TypeEnum
	TypeGroup
)

func (t Type) IsScalar() bool {
	switch t {
	case TypeMessage, TypeEnum, TypeGroup:
		return false
	default:
		return t != TypeUnknown
	}
}

// SizeClass buckets a field's storage footprint for layout planning
// (§4.2) and mini-table Mode encoding (§4.5): the four native machine
// sizes a field's storage can occupy, plus the two variable-length
// representations that always take a machine word (string view,
// sub-message pointer).
type SizeClass uint8

const (
	SizeClass1 SizeClass = iota
	SizeClass2
	SizeClass4
	SizeClass8
	SizeClassPointer
)

// ByteSize returns the storage footprint of the size class on a target
// with the given pointer width (4 or 8).
func (c SizeClass) ByteSize(ptrSize uint8) uint32 {
	switch c {
	case SizeClass1:
		return 1
	case SizeClass2:
		return 2
	case SizeClass4:
		return 4
	case SizeClass8:
		return 8
	case SizeClassPointer:
		return uint32(ptrSize)
	default:
		return 0
	}
}

// Label is a field's cardinality, including the oneof-member cardinality
// that descriptor.proto represents out-of-band via OneofIndex.
type Label uint8

const (
	LabelOptional Label = iota
	LabelRequired
	LabelRepeated
	LabelOneofMember
)

// ExtensionMode is the mini-table's summary of a message's extension
// behavior (§4.5).
type ExtensionMode uint8

const (
	NonExtendable ExtensionMode = iota
	Extendable
	IsMessageSet
)

// RepKind buckets how a field's storage is shaped: a single scalar/
// pointer slot, a repeated array, or a map. Used by the mini-table Mode
// byte (§4.5).
type RepKind uint8

const (
	RepScalar RepKind = iota
	RepArray
	RepMap
)
